// Package apierr defines the error taxonomy shared by the store, worker,
// query engine, and HTTP surface.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error into one of the taxonomy buckets used to pick
// an HTTP status and to decide whether a failure is fatal to a subsystem.
type Code string

const (
	// BadRequest means a malformed path or query parameter.
	BadRequest Code = "bad_request"
	// Unavailable means transient resource pressure: pool exhaustion or
	// the clock cell not yet set.
	Unavailable Code = "unavailable"
	// Forbidden means an unknown route.
	Forbidden Code = "forbidden"
	// Internal means a decoding or invariant violation.
	Internal Code = "internal"
	// StoreInit means a fatal failure at boot (bad URL, unknown migration set).
	StoreInit Code = "store_init"
	// Corrupt means a row read back from storage fails its type/shape check.
	Corrupt Code = "corrupt"
)

// httpStatus maps each Code to the HTTP status the surface responds with.
var httpStatus = map[Code]int{
	BadRequest:  http.StatusBadRequest,
	Unavailable: http.StatusServiceUnavailable,
	Forbidden:   http.StatusForbidden,
	Internal:    http.StatusInternalServerError,
	StoreInit:   http.StatusInternalServerError,
	Corrupt:     http.StatusInternalServerError,
}

// Error is a taxonomy-classified error carrying a human-readable message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// HTTPStatus returns the status code this error maps to at the HTTP boundary.
// Corrupt is surfaced as Internal, per the taxonomy's boundary rule.
func (e *Error) HTTPStatus() int {
	if e.Code == Corrupt {
		return httpStatus[Internal]
	}
	if status, ok := httpStatus[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// New builds a classified error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap builds a classified error that preserves an underlying cause for
// %w-style unwrapping, while keeping the taxonomy message at the boundary.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// As extracts an *Error from err, the way callers check for a specific
// taxonomy code before deciding how to respond.
func As(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// CodeOf returns the taxonomy code for err, defaulting to Internal when err
// does not carry one.
func CodeOf(err error) Code {
	if apiErr, ok := As(err); ok {
		return apiErr.Code
	}
	return Internal
}
