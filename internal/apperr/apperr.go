// Package apperr defines the error taxonomy shared across handlers and the
// claim workflow. Every caller-visible failure carries a kind so the HTTP
// layer can map it without string matching.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind int

// Possible values for Kind
const (
	KindUnknown Kind = iota
	// KindValidation covers malformed or policy-violating input: bad amount,
	// missing bill, ineligible claim, cap exceeded.
	KindValidation
	// KindNotFound covers absent records and records not owned by the caller.
	KindNotFound
	// KindStateConflict covers operations illegal for the claim's current status.
	KindStateConflict
	// KindUpstream covers repository, notifier, and file-store failures.
	KindUpstream
)

// Error is an application error with a caller-visible message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a KindValidation error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFound builds a KindNotFound error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// StateConflict builds a KindStateConflict error.
func StateConflict(format string, args ...any) *Error {
	return &Error{Kind: KindStateConflict, Msg: fmt.Sprintf(format, args...)}
}

// Upstream wraps a collaborator failure. The message is what the caller
// sees; the wrapped error is for logs only.
func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Msg: msg, Err: err}
}

// KindOf extracts the kind from err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// Message returns the caller-visible message for err. Foreign errors get a
// generic message so internal details never leak to clients.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Msg
	}
	return "server error"
}
