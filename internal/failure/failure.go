// Package failure defines the typed errors returned by every lockfleet
// component. A failure carries a Kind that callers branch on with errors.Is
// and that the HTTP layer maps to a status code.
package failure

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindProtocol
	KindUpstream
	KindCrypto
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindProtocol:
		return "protocol_error"
	case KindUpstream:
		return "upstream_error"
	case KindCrypto:
		return "crypto_error"
	case KindNetwork:
		return "network_error"
	default:
		return "internal_error"
	}
}

// HTTPStatus is the status the API layer answers with for this kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindProtocol, KindUpstream, KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is matching on kind.
var (
	ErrInternal   = &Error{Kind: KindInternal}
	ErrValidation = &Error{Kind: KindValidation}
	ErrProtocol   = &Error{Kind: KindProtocol}
	ErrUpstream   = &Error{Kind: KindUpstream}
	ErrCrypto     = &Error{Kind: KindCrypto}
	ErrNetwork    = &Error{Kind: KindNetwork}
)

type Error struct {
	Kind    Kind
	Message string
	// Code is the vendor error code, set only for upstream failures.
	Code string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the package sentinels work with
// errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Protocol(format string, args ...any) error {
	return &Error{Kind: KindProtocol, Message: fmt.Sprintf(format, args...)}
}

func Crypto(format string, args ...any) error {
	return &Error{Kind: KindCrypto, Message: fmt.Sprintf(format, args...)}
}

// Upstream reports a vendor response with success=false. The message is passed
// through verbatim.
func Upstream(message, code string) error {
	return &Error{Kind: KindUpstream, Message: message, Code: code}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind Kind, err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindInternal
}

// Message returns the caller-facing message for err. Internal errors are not
// described to callers.
func Message(err error) string {
	var fe *Error
	if !errors.As(err, &fe) {
		return "internal error"
	}
	if fe.Kind == KindInternal {
		return "internal error"
	}
	if fe.Message != "" {
		return fe.Message
	}
	return fe.Error()
}
