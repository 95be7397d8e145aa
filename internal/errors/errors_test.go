package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"invalid session token", ErrInvalidToken, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"bad credentials", ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"reset token", ErrInvalidOrExpired, http.StatusBadRequest, "INVALID_OR_EXPIRED"},
		{"bad date", ErrInvalidDate, http.StatusBadRequest, "INVALID_DATE"},
		{"bad role", ErrInvalidRole, http.StatusBadRequest, "INVALID_INPUT"},
		{"missing certificate", ErrCertificateNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"wrapped missing course", fmt.Errorf("load: %w", ErrCourseNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"duplicate email", ErrEmailExists, http.StatusConflict, "CONFLICT"},
		{"store failure", errors.New("dial tcp 10.0.0.3:3306: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.code, httpErr.Code)
		})
	}
}

func TestMapErrorToHTTP_HidesInternals(t *testing.T) {
	httpErr := MapErrorToHTTP(errors.New("Error 1146: Table 'ce.certificates' doesn't exist"))
	assert.Equal(t, "internal server error", httpErr.ToErrorResponse().Error)
}

func TestNotFoundFamily(t *testing.T) {
	for _, err := range []error{ErrUserNotFound, ErrCourseNotFound, ErrClassroomNotFound, ErrCertificateNotFound, ErrSpecialtyNotFound} {
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.ErrorIs(t, ErrEmailExists, ErrConflict)
	assert.ErrorIs(t, ErrInvalidDate, ErrInvalidInput)
}
