// Package apperror provides the structured error type shared by services,
// repositories and the HTTP layer. Business failures are always *Error so
// handlers can map them to consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error codes.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeDuplicateDate      = "DUPLICATE_DATE"
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidID          = "INVALID_IDENTIFIER"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// Error is the standard error type for the application.
type Error struct {
	// Code is a machine-readable error identifier.
	Code string `json:"code"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// Details carries additional context, e.g. field-level validation messages.
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code.
	HTTPStatus int `json:"-"`

	// Err is the underlying cause, not exposed in JSON.
	Err error `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to the error details.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// NewValidation creates a validation error (400). Field-level messages go into
// the details map under "fields".
func NewValidation(message string) *Error {
	return &Error{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewFieldValidation creates a validation error carrying per-field messages.
func NewFieldValidation(fields map[string]string) *Error {
	return &Error{
		Code:       CodeValidation,
		Message:    "invalid report payload",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"fields": fields},
	}
}

// NewDuplicateDate creates a conflict error for the one-report-per-date rule (409).
func NewDuplicateDate(date string) *Error {
	return &Error{
		Code:       CodeDuplicateDate,
		Message:    "a report already exists for this date",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"date": date},
	}
}

// NewNotFound creates a not found error (404).
func NewNotFound(entity string, id any) *Error {
	return &Error{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInvalidID creates an error for malformed storage identifiers (400).
func NewInvalidID(id string) *Error {
	return &Error{
		Code:       CodeInvalidID,
		Message:    "invalid report ID",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"id": id},
	}
}

// NewUnauthorized creates an authentication error (401).
func NewUnauthorized(message string) *Error {
	return &Error{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewStorageUnavailable signals that the backing store cannot be reached (503).
// Distinct from NotFound so callers can tell an outage from empty state.
func NewStorageUnavailable(err error) *Error {
	return &Error{
		Code:       CodeStorageUnavailable,
		Message:    "storage backend unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewInternal creates an internal server error, hiding details from the client.
func NewInternal(err error) *Error {
	return &Error{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// As extracts an *Error from an error chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns the appropriate HTTP status for any error.
func GetHTTPStatus(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

func hasCode(err error, code string) bool {
	if appErr, ok := As(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return hasCode(err, CodeValidation) }

// IsDuplicateDate reports whether err is a duplicate-date conflict.
func IsDuplicateDate(err error) bool { return hasCode(err, CodeDuplicateDate) }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return hasCode(err, CodeNotFound) }

// IsInvalidID reports whether err is a malformed-identifier error.
func IsInvalidID(err error) bool { return hasCode(err, CodeInvalidID) }

// IsUnauthorized reports whether err is an authentication error.
func IsUnauthorized(err error) bool { return hasCode(err, CodeUnauthorized) }

// IsStorageUnavailable reports whether err signals a storage outage.
func IsStorageUnavailable(err error) bool { return hasCode(err, CodeStorageUnavailable) }
