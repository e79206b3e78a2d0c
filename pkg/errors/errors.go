package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInternal     = errors.New("internal error")

	// Token verification outcomes. Expiry is kept distinguishable from any
	// other verification failure so callers can produce different
	// user-facing messages (the client refreshes on expiry instead of
	// forcing a re-login).
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// FieldError describes a validation failure for a single input field.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// AppError represents a structured application error with HTTP status mapping.
// Message is stable and safe to return to clients; Err carries the sentinel
// used for errors.Is matching.
type AppError struct {
	Message string       `json:"message"`
	Status  int          `json:"-"`
	Fields  []FieldError `json:"-"`
	Err     error        `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// BadRequest creates a 400 error with optional field-level details.
func BadRequest(message string, fields ...FieldError) *AppError {
	return &AppError{
		Message: message,
		Status:  http.StatusBadRequest,
		Fields:  fields,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return &AppError{
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// NotFound creates a 404 error.
func NotFound(message string) *AppError {
	return &AppError{
		Message: message,
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// Conflict creates a 409 error.
func Conflict(message string) *AppError {
	return &AppError{
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// Internal creates a 500 error wrapping the underlying cause. The client
// never sees the cause; it is logged at the response boundary.
func Internal(err error) *AppError {
	return &AppError{
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrTokenExpired), errors.Is(err, ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
