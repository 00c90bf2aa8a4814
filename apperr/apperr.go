package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so handlers can map it to an HTTP status and
// callers can decide whether a retry makes sense.
type Kind int

const (
	// KindNotFound: an order, driver or vendor reference did not resolve.
	KindNotFound Kind = iota
	// KindUnauthorized: wrong driver or wrong OTP. A client error, never a system fault.
	KindUnauthorized
	// KindInvalidInput: rejected before any state mutation.
	KindInvalidInput
	// KindConflict: a conditional update lost a race; the caller may retry the whole operation.
	KindConflict
	// KindTransient: a dependency (notifier, broker) failed; isolated, not propagated per candidate.
	KindTransient
)

// Error carries a kind, a stable machine code and a human message.
type Error struct {
	Kind Kind
	Code string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

func Wrap(kind Kind, code, msg string, err error) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg, Err: err}
}

func NotFound(code, msg string) *Error     { return New(KindNotFound, code, msg) }
func Unauthorized(code, msg string) *Error { return New(KindUnauthorized, code, msg) }
func InvalidInput(code, msg string) *Error { return New(KindInvalidInput, code, msg) }
func Conflict(code, msg string) *Error     { return New(KindConflict, code, msg) }

// KindOf reports the kind of err, or ok=false when err is not an *Error.
func KindOf(err error) (Kind, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return 0, false
}

// CodeOf returns the machine code of err, or "" when err is not an *Error.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
