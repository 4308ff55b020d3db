// Package apperr provides the error taxonomy shared by the battle services
// and its mapping onto HTTP statuses.
package apperr

import (
	"errors"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown Code = "UNKNOWN"

	// Malformed or resource-insufficient requests. No state change.
	CodeValidation Code = "VALIDATION"
	// Wrong player or stale turn. No state change.
	CodeTurnOwnership Code = "TURN_OWNERSHIP"
	// Unknown or expired match id; the client should return to matchmaking.
	CodeSessionNotFound Code = "SESSION_NOT_FOUND"
	// Persistence unavailable; retry with backoff.
	CodeTransientStore Code = "TRANSIENT_STORE"
	// Operation conflicts with the caller's current state (already queued,
	// already in a battle, battle no longer accepting the operation).
	CodeConflict Code = "CONFLICT"

	CodeUnauthenticated Code = "UNAUTHENTICATED"
)

// HTTPStatus maps codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation:
		return http.StatusUnprocessableEntity
	case CodeTurnOwnership, CodeConflict:
		return http.StatusConflict
	case CodeSessionNotFound:
		return http.StatusNotFound
	case CodeTransientStore:
		return http.StatusServiceUnavailable
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is the domain error type.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the same error. Two *Error values match when
// both code and message agree, so sentinels sharing a code stay distinct.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Transient wraps a storage failure.
func Transient(op string, cause error) *Error {
	return Wrap(CodeTransientStore, op, cause)
}

// CodeOf returns the code of the first *Error in err's chain, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
