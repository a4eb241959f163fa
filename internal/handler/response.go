// Package handler contains the HTTP layer: request parsing, response
// writing and the translation of domain errors into status codes.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sadman/hostelreview/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API
// endpoints. Every error body has the same shape regardless of status
// code, so clients always know what fields to expect.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable type, e.g. "not_found"
	Message string `json:"message"` // human-readable description
}

// writeJSON sends a JSON response with the given status code. Headers
// must be set before WriteHeader, and WriteHeader before the body.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent at this point; logging is all
			// that's left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the appropriate HTTP status code.
//
// The service layer returns apperror values; this is the single place
// they become status codes. errors.Is walks the wrap chain, so a service
// error wrapped in context still maps correctly.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	// Unknown error: generic 500. The raw message might contain paths or
	// query text and never reaches the client.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
