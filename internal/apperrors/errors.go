// Package apperrors defines the error kinds returned by the service layer and
// their mapping to HTTP status codes.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error. Kinds are stable and safe to expose to clients.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindAuth       Kind = "auth"
	KindUpload     Kind = "upload"
	KindInternal   Kind = "internal"
)

// Error is a typed business error with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error // underlying cause, never shown to clients
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation reports malformed or missing input.
func Validation(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

// Conflict reports a uniqueness violation.
func Conflict(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

// NotFound reports a missing entity.
func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

// Auth reports a bad credential or an invalid or stale token.
func Auth(format string, args ...interface{}) *Error {
	return newError(KindAuth, format, args...)
}

// Upload reports a failed asset upload.
func Upload(err error, format string, args ...interface{}) *Error {
	e := newError(KindUpload, format, args...)
	e.Err = err
	return e
}

// Internal wraps a store or configuration failure.
func Internal(err error, format string, args ...interface{}) *Error {
	e := newError(KindInternal, format, args...)
	e.Err = err
	return e
}

// KindOf returns the kind of err, or KindInternal for errors that are not *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// HTTPStatus maps err to an HTTP status code. Only the handler layer should use it.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch KindOf(err) {
	case KindValidation, KindUpload:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to show to a client.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}
