package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/bodaform/internal/api/apierr"
	internalmw "github.com/mcoot/bodaform/internal/middleware"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// writeLoggedError writes the error response and logs it when it is a server fault
func writeLoggedError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if apierr.Status(err) >= http.StatusInternalServerError {
		logger.LogAttrs(r.Context(), slog.LevelError, "request failed",
			slog.String("path", r.URL.Path),
			slog.String("request_id", internalmw.GetRequestID(r.Context())),
			slog.String("error", err.Error()),
		)
	}
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewNotOwnerError creates a forbidden error for someone else's draft
func NewNotOwnerError() error {
	return apierr.NewNotOwnerError()
}

// NewServerError creates a server error with a client-facing message
func NewServerError(message string) error {
	return apierr.NewServerError(message)
}
