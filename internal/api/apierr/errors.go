package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lmerrick/dashguard/internal/auth"
	"github.com/lmerrick/dashguard/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes. Rejection verdicts reuse their model.Verdict codes.
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeSessionNotFound = "SESSION_NOT_FOUND"
	CodeInternalError   = "INTERNAL_ERROR"
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
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Session not found"}}
	case errors.Is(err, auth.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired token"}}

	// Infrastructure failures are deliberately opaque to the caller;
	// full detail is logged server-side
	case errors.Is(err, model.ErrIdentityResolution),
		errors.Is(err, model.ErrStoreUnavailable):
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewVerdictError converts a rejection verdict into an HTTP error.
// Messages stay short and never reveal detection thresholds.
func NewVerdictError(verdict model.Verdict) error {
	status := http.StatusUnprocessableEntity
	message := "Submission failed validation"

	switch verdict {
	case model.VerdictRateLimitExceeded:
		status = http.StatusTooManyRequests
		message = "Too many submissions, retry later"
	case model.VerdictPatternSuspicion:
		message = "Submission rejected"
	}

	return &httpError{status, APIError{string(verdict), message}}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
