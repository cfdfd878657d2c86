// Package apperror defines the error categories shared by every layer.
//
// Lower layers return *AppError values; the HTTP layer maps the category
// sentinel (ErrNotFound, ErrValidation, ...) to a status code with errors.Is,
// so nothing above the domain ever inspects message text.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrUnavailable  = errors.New("unavailable")

	ErrMethodNotAllowed = errors.New("method not allowed")
)

type AppError struct {
	Err     error          // category sentinel, e.g. ErrNotFound
	Cause   error          // optional: the domain error behind it
	Message string         // Human-readable error message
	Field   string         // Optional: field causing the error
	Details map[string]any // Optional: structured context for clients
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the category and the cause, so
// errors.Is(err, ErrNotFound) and errors.Is(err, content.ErrUnknownTag)
// can both hold for the same value.
func (e *AppError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// WithCause attaches the domain error behind this AppError and returns it.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails attaches structured details and returns the AppError.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Unauthorized returns an AppError for a missing or invalid credential.
// HTTP handlers map this to 401 Unauthorized.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unavailable returns an AppError for a dependency that cannot serve yet.
// HTTP handlers map this to 503 Service Unavailable.
func Unavailable(message string) *AppError {
	return &AppError{
		Err:     ErrUnavailable,
		Message: message,
	}
}

// MethodNotAllowed returns an AppError for a known path requested with an
// unsupported method. HTTP handlers map this to 405 Method Not Allowed.
func MethodNotAllowed(method, path string) *AppError {
	return &AppError{
		Err:     ErrMethodNotAllowed,
		Message: fmt.Sprintf("method %s not allowed on %s", method, path),
		Details: map[string]any{"method": method},
	}
}
