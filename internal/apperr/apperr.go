// internal/apperr/apperr.go
//
// Error taxonomy shared by the credential service, the auth middleware and
// the resource handlers. Every failure surfaced to a client is one of four
// kinds, and each kind maps to exactly one HTTP status.

package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is a classified error. Msg is safe to show to clients; Err (if any)
// carries the underlying cause for logs.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }

func Auth(msg string) error { return &Error{Kind: KindAuth, Msg: msg} }

func NotFound(msg string) error { return &Error{Kind: KindNotFound, Msg: msg} }

// Internal wraps cause; msg is logged, never sent to the client.
func Internal(msg string, cause error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: cause}
}

// KindOf returns the kind of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Status maps err to its HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing message for err. Internal errors never
// leak their detail.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Msg
	}
	return "internal server error"
}
