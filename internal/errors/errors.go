package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is returned when a session is missing, invalid, expired or lacks the required role.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidToken is returned when a session token fails signature, type or expiry checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidOrExpired is returned when a password reset token is malformed, expired or already used.
	ErrInvalidOrExpired = errors.New("invalid or expired reset token")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrNotFound is the parent of every missing-row error.
	ErrNotFound = errors.New("not found")
	// ErrConflict is the parent of every uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrInvalidInput is the parent of every payload validation error.
	ErrInvalidInput = errors.New("invalid input")

	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrCourseNotFound      = fmt.Errorf("course %w", ErrNotFound)
	ErrClassroomNotFound   = fmt.Errorf("classroom %w", ErrNotFound)
	ErrCertificateNotFound = fmt.Errorf("certificate %w", ErrNotFound)
	ErrSpecialtyNotFound   = fmt.Errorf("specialty %w", ErrNotFound)

	ErrEmailExists     = fmt.Errorf("email already registered: %w", ErrConflict)
	ErrSpecialtyExists = fmt.Errorf("specialty already exists: %w", ErrConflict)

	ErrInvalidDate     = fmt.Errorf("%w: malformed date", ErrInvalidInput)
	ErrInvalidRole     = fmt.Errorf("%w: unknown role", ErrInvalidInput)
	ErrWeakPassword    = fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	ErrTooManyLinks    = fmt.Errorf("%w: at most three assessment links", ErrInvalidInput)
	ErrNegativeCredits = fmt.Errorf("%w: ce credits must not be negative", ErrInvalidInput)
	ErrExpiryBeforePub = fmt.Errorf("%w: expiration date must be after published date", ErrInvalidInput)
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything it does not
// recognise becomes a generic 500 so store internals never reach the client.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthorized.Error(), "UNAUTHORIZED")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidOrExpired):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_OR_EXPIRED")
	case errors.Is(err, ErrInvalidDate):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_DATE")
	case errors.Is(err, ErrInvalidInput):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_INPUT")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, ErrConflict):
		return NewHTTPError(http.StatusConflict, err.Error(), "CONFLICT")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
