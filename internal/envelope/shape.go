package envelope

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// List decodes a JSON array, a single object, or null into a slice. Vendor
// versions disagree on whether some results (alarm status, for one) are a list
// or a lone object; callers always see a list.
type List[T any] []T

func (l *List[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || isNull(data) {
		*l = List[T]{}
		return nil
	}
	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		if items == nil {
			items = []T{}
		}
		*l = items
		return nil
	}
	var one T
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = List[T]{one}
	return nil
}

// Fields is a loosely decoded vendor object used where key names drift between
// API versions. Lookups take an explicit, ordered fallback list of keys.
type Fields map[string]json.RawMessage

func (f Fields) raw(keys []string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := f[k]; ok && len(v) > 0 && !isNull(v) {
			return v, true
		}
	}
	return nil, false
}

// Has reports whether any of keys is present with a non-null value.
func (f Fields) Has(keys ...string) bool {
	_, ok := f.raw(keys)
	return ok
}

// String returns the first present key rendered as text, or "".
func (f Fields) String(keys ...string) string {
	v, ok := f.raw(keys)
	if !ok {
		return ""
	}
	return scalarString(v)
}

// Bool returns the first present key that holds a boolean. Vendors send
// true/false, 0/1 and "true"/"false" depending on version; a key whose value
// does not parse is skipped in favour of the next one.
func (f Fields) Bool(keys ...string) (bool, bool) {
	for _, k := range keys {
		v, ok := f.raw([]string{k})
		if !ok {
			continue
		}
		var b bool
		if err := json.Unmarshal(v, &b); err == nil {
			return b, true
		}
		if parsed, err := strconv.ParseBool(scalarString(v)); err == nil {
			return parsed, true
		}
	}
	return false, false
}

// Int returns the first present key that holds a number, skipping keys whose
// value does not parse.
func (f Fields) Int(keys ...string) (int64, bool) {
	for _, k := range keys {
		v, ok := f.raw([]string{k})
		if !ok {
			continue
		}
		s := scalarString(v)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if fl, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(fl), true
		}
	}
	return 0, false
}

// ResultID extracts an identifier from a result that is either a bare scalar
// or an object carrying one of keys.
func (e *Envelope) ResultID(keys ...string) string {
	if !e.HasResult() {
		return ""
	}
	if s := scalarString(e.Result); s != "" {
		return s
	}
	var f Fields
	if err := json.Unmarshal(e.Result, &f); err != nil {
		return ""
	}
	return f.String(keys...)
}

// Into unmarshals the first present key into v.
func (f Fields) Into(v any, keys ...string) (bool, error) {
	raw, ok := f.raw(keys)
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}
