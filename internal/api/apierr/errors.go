package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/bodaform/internal/model"
	"github.com/mcoot/bodaform/internal/services/auth"
	"github.com/mcoot/bodaform/internal/services/wizard"
)

// APIError represents an API error
type APIError struct {
	Code    string
	Message string
	// Fields lists offending field keys, when there are any
	Fields []string
}

// ErrorResponse is the JSON body of every error response
type ErrorResponse struct {
	Error  string   `json:"error"`
	Code   string   `json:"code"`
	Fields []string `json:"fields,omitempty"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidIdentity    = "INVALID_IDENTITY"
	CodeInvalidDraft       = "INVALID_DRAFT"
	CodeInvalidRole        = "INVALID_ROLE"
	CodeMissingRequired    = "MISSING_REQUIRED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUserExists         = "USER_EXISTS"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeCannotGoBack       = "CANNOT_GO_BACK"
	CodeAdminWizard        = "ADMIN_WIZARD"
	CodeNoWizardSession    = "NO_WIZARD_SESSION"
	CodeSaveFailed         = "SAVE_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:  he.apiError.Message,
		Code:   he.apiError.Code,
		Fields: he.apiError.Fields,
	})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var missing *wizard.MissingFieldsError
	if errors.As(err, &missing) {
		return &httpError{http.StatusBadRequest, APIError{CodeMissingRequired, "Required fields missing", missing.Fields}}
	}

	switch {
	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeInvalidCredentials, Message: "Invalid credentials"}}
	case errors.Is(err, auth.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Invalid or expired session"}}
	case errors.Is(err, auth.ErrMissingFields):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: "Missing fields"}}

	// Map model errors
	case errors.Is(err, model.ErrUserExists):
		return &httpError{http.StatusConflict, APIError{Code: CodeUserExists, Message: "User already exists"}}
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeUserNotFound, Message: "User not found"}}
	case errors.Is(err, model.ErrInvalidIdentity):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidIdentity, Message: "Invalid username"}}
	case errors.Is(err, model.ErrInvalidRole):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRole, Message: "Role must be admin or user"}}
	case errors.Is(err, model.ErrInvalidDraft):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidDraft, Message: invalidDraftMessage(err)}}

	// Map wizard errors
	case errors.Is(err, wizard.ErrMissingRequired):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeMissingRequired, Message: "Required fields missing"}}
	case errors.Is(err, wizard.ErrAdminWizard):
		return &httpError{http.StatusForbidden, APIError{Code: CodeAdminWizard, Message: "Admins do not fill the questionnaire"}}
	case errors.Is(err, wizard.ErrInvalidTransition):
		return &httpError{http.StatusConflict, APIError{Code: CodeInvalidTransition, Message: "Action not allowed at this point of the questionnaire"}}
	case errors.Is(err, wizard.ErrCannotGoBack):
		return &httpError{http.StatusConflict, APIError{Code: CodeCannotGoBack, Message: "Cannot go back from here"}}
	case errors.Is(err, wizard.ErrNoSession):
		return &httpError{http.StatusNotFound, APIError{Code: CodeNoWizardSession, Message: "No active questionnaire session"}}
	case errors.Is(err, wizard.ErrSaveFailed):
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeSaveFailed, Message: "Error saving progress"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Server error"}}
	}
}

// invalidDraftMessage keeps the offending key visible to the client
func invalidDraftMessage(err error) string {
	if errors.Is(err, model.ErrUnknownField) || errors.Is(err, wizard.ErrFieldNotInStep) {
		return err.Error()
	}
	return "Invalid data"
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Authentication required"}}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError() error {
	return &httpError{http.StatusForbidden, APIError{Code: CodeForbidden, Message: "Admin access required"}}
}

// NewNotOwnerError creates a forbidden error for a couple acting on another
// couple's draft
func NewNotOwnerError() error {
	return &httpError{http.StatusForbidden, APIError{Code: CodeForbidden, Message: "Draft belongs to another user"}}
}

// NewNotFoundError creates a not found error
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{Code: CodeNotFound, Message: "Not found"}}
}

// NewServerError creates a 500 error with a specific message for the client
func NewServerError(message string) error {
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Server error"}}
}
