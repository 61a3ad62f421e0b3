// Package envelope turns the vendor's {success, result, msg, code} response
// wrapper into typed results, absorbing the differences between API versions.
package envelope

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/EternisAI/lockfleet/internal/failure"
)

const defaultFailureMessage = "upstream request failed"

// Version is the vendor API version a request was addressed to.
type Version string

const (
	V1_0    Version = "v1.0"
	V1_1    Version = "v1.1"
	V2_0    Version = "v2.0"
	Unknown Version = ""
)

// VersionOf reads the version segment from a vendor path such as
// "/v1.1/devices/x/door-lock/open-logs".
func VersionOf(path string) Version {
	seg := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(seg, '/'); i >= 0 {
		seg = seg[:i]
	}
	switch Version(seg) {
	case V1_0, V1_1, V2_0:
		return Version(seg)
	default:
		return Unknown
	}
}

type Envelope struct {
	Version Version
	Success bool
	Result  json.RawMessage
	Msg     string
	Code    string
	// T is the vendor timestamp in milliseconds, zero when absent.
	T int64
	// Tid is the vendor trace id, empty when absent.
	Tid string
}

// Parse validates the envelope shape. A missing or non-boolean success flag is
// a protocol failure; success=false is an upstream failure carrying msg.
func Parse(raw []byte, version Version) (*Envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, failure.Wrap(failure.KindProtocol, err, "malformed upstream envelope")
	}

	successRaw, ok := fields["success"]
	if !ok {
		return nil, failure.Protocol("upstream envelope has no success flag")
	}
	var success bool
	if err := json.Unmarshal(successRaw, &success); err != nil || isNull(successRaw) {
		return nil, failure.Protocol("upstream envelope success flag is not a boolean")
	}

	env := &Envelope{
		Version: version,
		Success: success,
		Result:  fields["result"],
		Msg:     scalarString(fields["msg"]),
		Code:    scalarString(fields["code"]),
		Tid:     scalarString(fields["tid"]),
	}
	if t, err := strconv.ParseInt(scalarString(fields["t"]), 10, 64); err == nil {
		env.T = t
	}

	if !success {
		msg := env.Msg
		if msg == "" {
			msg = defaultFailureMessage
		}
		return env, failure.Upstream(msg, env.Code)
	}
	return env, nil
}

// HasResult reports whether the vendor sent a non-null result.
func (e *Envelope) HasResult() bool {
	return len(e.Result) > 0 && !isNull(e.Result)
}

// Into unmarshals the result into v. A null or absent result leaves v untouched.
func (e *Envelope) Into(v any) error {
	if !e.HasResult() {
		return nil
	}
	if err := json.Unmarshal(e.Result, v); err != nil {
		return failure.Wrap(failure.KindProtocol, err, "unexpected upstream result shape")
	}
	return nil
}

// Decode parses raw and unmarshals its result into a T.
func Decode[T any](raw []byte, version Version) (T, error) {
	var out T
	env, err := Parse(raw, version)
	if err != nil {
		return out, err
	}
	if err := env.Into(&out); err != nil {
		return out, err
	}
	return out, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// scalarString renders a JSON string or number as text; anything else is "".
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
