// Package errs defines the coded errors shared by the store, services and
// HTTP handlers.
package errs

import (
	"errors"
	"net/http"
)

// Code is an application error code.
type Code string

const (
	Validation    Code = "validation"
	Unauthorized  Code = "unauthorized"
	Forbidden     Code = "forbidden"
	QuotaExceeded Code = "quota_exceeded"
	NotFound      Code = "not_found"
	Conflict      Code = "conflict"
	RateLimited   Code = "rate_limited"
	Internal      Code = "internal"
)

// InternalMessage is the only message clients see for internal faults.
const InternalMessage = "Internal server error"

// Error is a coded application error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" && e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a coded error with message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a coded error with message and cause.
func Wrap(code Code, message string, cause error) error {
	return &Error{Code: code, Message: message, Err: cause}
}

// CodeOf returns the error code, defaulting to internal.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) && coded.Code != "" {
		return coded.Code
	}
	return Internal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// MessageOf returns a user-facing error message. Internal and untyped errors
// never expose their text.
func MessageOf(err error) string {
	var coded *Error
	if !errors.As(err, &coded) || coded.Code == Internal || coded.Code == "" {
		return InternalMessage
	}
	if coded.Message != "" {
		return coded.Message
	}
	return string(coded.Code)
}

// HTTPStatus maps an error to its HTTP status code.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case Validation:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden, QuotaExceeded:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case RateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
