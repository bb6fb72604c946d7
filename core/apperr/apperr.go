// Package apperr defines the failure taxonomy surfaced to API callers.
// Every kind maps to exactly one HTTP status; none are retried internally.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// KindNotFound: a referenced entity id does not resolve.
	KindNotFound Kind = iota + 1
	// KindUnauthorized: the caller lacks the role or ownership for the operation.
	KindUnauthorized
	// KindMalformedInput: a required field is missing or invalid.
	KindMalformedInput
	// KindConflict: a unique field collides on create.
	KindConflict
	// KindUnavailable: the underlying store call failed. The only kind a
	// caller may legitimately retry.
	KindUnavailable
)

// Error carries a failure kind plus a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports an unresolvable entity reference.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized reports a missing role or ownership.
func Unauthorized(format string, args ...interface{}) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Malformed reports invalid input.
func Malformed(format string, args ...interface{}) *Error {
	return &Error{Kind: KindMalformedInput, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a duplicate unique field.
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Unavailable wraps a failed store call.
func Unavailable(err error) *Error {
	return &Error{Kind: KindUnavailable, Message: "storage unavailable", Err: err}
}

// KindOf extracts the kind from err, or KindUnavailable for untyped errors:
// anything unexpected coming out of the store layer is treated as a store
// failure rather than leaked to the client verbatim.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnavailable
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
