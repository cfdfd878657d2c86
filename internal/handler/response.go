package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or WriteError so the API has one
// success shape per endpoint and one error shape overall:
//
//	{"error": "not_found", "message": "No truths available for category 'spicy'",
//	 "details": {"requested": "spicy", "available": ["deep", "funny"]}, "status_code": 404}

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/truthdare/truthdare-api/internal/apperror"
)

// ErrorResponse is the error body returned by every endpoint.
type ErrorResponse struct {
	Error      string         `json:"error"`   // machine-readable category, e.g. "not_found"
	Message    string         `json:"message"` // human-readable description
	Details    map[string]any `json:"details"`
	StatusCode int            `json:"status_code"`
}

// writeJSON sends data as JSON with the given status code.
// Headers must be set before WriteHeader; anything set later is ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// statusFor maps an AppError category to its HTTP status and error string.
//
//	ErrValidation       -> 422 validation_error
//	ErrNotFound         -> 404 not_found
//	ErrUnauthorized     -> 401 unauthorized
//	ErrForbidden        -> 403 forbidden
//	ErrUnavailable      -> 503 unavailable
//	ErrMethodNotAllowed -> 405 method_not_allowed
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusUnprocessableEntity, "validation_error"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, apperror.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method_not_allowed"
	}
	return http.StatusInternalServerError, "internal_error"
}

// WriteError maps a domain error to a status code and sends it.
//
// Only *apperror.AppError values reach the client verbatim. Anything else,
// a content.LoadError included, becomes a generic 500 so file paths, URLs
// and SQL never leak; the caller is expected to have logged it.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status, kind := statusFor(appErr)
		details := appErr.Details
		if details == nil {
			details = map[string]any{}
		}
		writeJSON(w, status, ErrorResponse{
			Error:      kind,
			Message:    appErr.Message,
			Details:    details,
			StatusCode: status,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:      "internal_error",
		Message:    "An internal error occurred",
		Details:    map[string]any{},
		StatusCode: http.StatusInternalServerError,
	})
}

// NotFound answers requests that match no route.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, apperror.NotFound("route", r.URL.Path))
}

// MethodNotAllowed answers a known path requested with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, apperror.MethodNotAllowed(r.Method, r.URL.Path))
}
