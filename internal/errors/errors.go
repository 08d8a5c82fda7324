package errors

import (
	"errors"
	"net/http"

	"github.com/yukikurage/devboard-api/internal/services"
)

// Envelope codes that have no service-level counterpart
const (
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeConflict        = 409
	CodeValidation      = 422
	CodeTooManyRequests = 429
	CodeInternalError   = 500
	CodeUnavailable     = 503
)

// APIError is an error with the HTTP status and envelope code it is reported with.
type APIError struct {
	Status  int         `json:"-"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"data,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(status, code int, message string) *APIError {
	return &APIError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

// NewAPIErrorWithDetails creates a new APIError with details
func NewAPIErrorWithDetails(status, code int, message string, details interface{}) *APIError {
	return &APIError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Predefined errors
var (
	ErrUnauthorized       = NewAPIError(http.StatusUnauthorized, CodeUnauthorized, "Authentication required")
	ErrForbidden          = NewAPIError(http.StatusForbidden, CodeForbidden, "Access denied")
	ErrNotFound           = NewAPIError(http.StatusNotFound, CodeNotFound, "Resource not found")
	ErrInvalidInput       = NewAPIError(http.StatusBadRequest, CodeBadRequest, "Invalid request body")
	ErrTooManyRequests    = NewAPIError(http.StatusTooManyRequests, CodeTooManyRequests, "Too many requests")
	ErrInternalError      = NewAPIError(http.StatusInternalServerError, CodeInternalError, "Internal server error")
	ErrServiceUnavailable = NewAPIError(http.StatusServiceUnavailable, CodeUnavailable, "Service temporarily unavailable")
)

// BadRequest reports a malformed request parameter
func BadRequest(message string) *APIError {
	return NewAPIError(http.StatusBadRequest, CodeBadRequest, message)
}

// Validation reports a well-formed request with invalid values
func Validation(message string, details interface{}) *APIError {
	return NewAPIErrorWithDetails(http.StatusBadRequest, CodeValidation, message, details)
}

// Resolve maps any error returned by a handler to the APIError sent to the
// client. The second result is false for unexpected errors, which callers log.
func Resolve(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	if errors.Is(err, services.ErrAIServiceUnavailable) {
		return NewAPIError(http.StatusServiceUnavailable, CodeUnavailable, err.Error()), true
	}

	status, code, ok := statusFor(err)
	if !ok {
		return ErrInternalError, false
	}

	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		code = svcErr.Code
	}
	return NewAPIError(status, code, err.Error()), true
}

func statusFor(err error) (int, int, bool) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, CodeNotFound, true
	case errors.Is(err, services.ErrAlreadyExists):
		return http.StatusConflict, CodeConflict, true
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, CodeUnauthorized, true
	case errors.Is(err, services.ErrAccessDenied):
		return http.StatusForbidden, CodeForbidden, true
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, CodeValidation, true
	default:
		return 0, 0, false
	}
}
