package response

import (
	"errors"
)

// Error is a client-facing error. Err carries the message shown to the
// client; Cause, when set, is only logged.
type Error struct {
	Code  int
	Err   error
	Cause error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func (e *Error) Is(target error) bool {
	var t *Error
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Err.Error() == t.Err.Error()
}

// WithCause returns a copy of e that also wraps cause.
func (e *Error) WithCause(cause error) error {
	return &Error{Code: e.Code, Err: e.Err, Cause: cause}
}

func NewError(code int, err string) error {
	return &Error{Code: code, Err: errors.New(err)}
}

// Wrap attaches cause to a sentinel created by NewError. Other errors are
// returned unchanged.
func Wrap(sentinel error, cause error) error {
	var e *Error
	if !errors.As(sentinel, &e) {
		return sentinel
	}
	return e.WithCause(cause)
}
