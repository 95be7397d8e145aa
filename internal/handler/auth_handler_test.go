package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "dentalce/internal/errors"
	"dentalce/internal/model"
)

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthHandler_Login(t *testing.T) {
	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	tests := []struct {
		name       string
		body       string
		setupMock  func(*MockAuthService)
		wantStatus int
		wantCookie bool
	}{
		{
			name: "success sets cookie",
			body: `{"email":"a@example.com","password":"password123"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Login", mock.Anything, "a@example.com", "password123").
					Return("signed.jwt.token", exp, &model.User{ID: 1, Email: "a@example.com", Role: model.RoleClient}, nil)
			},
			wantStatus: http.StatusOK,
			wantCookie: true,
		},
		{
			name: "bad credentials",
			body: `{"email":"a@example.com","password":"nope"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Login", mock.Anything, "a@example.com", "nope").
					Return("", time.Time{}, nil, apperrors.ErrInvalidCredentials)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid email",
			body:       `{"email":"not-an-email","password":"x"}`,
			setupMock:  func(m *MockAuthService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			body:       `{"email":`,
			setupMock:  func(m *MockAuthService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAuthService)
			tt.setupMock(svc)
			h := NewAuthHandler(svc, new(MockPasswordResetService), time.Hour, true)

			e := newEcho()
			e.POST("/api/auth/login", h.Login)
			rec := postJSON(e, "/api/auth/login", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			cookie := rec.Header().Get(echo.HeaderSetCookie)
			if tt.wantCookie {
				assert.True(t, strings.HasPrefix(cookie, "token=signed.jwt.token"))
				assert.Contains(t, cookie, "HttpOnly")
				assert.Contains(t, cookie, "Secure")

				var resp AuthResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, "signed.jwt.token", resp.Token)
				assert.True(t, exp.Equal(resp.ExpiresAt))
				assert.NotContains(t, rec.Body.String(), "password")
			} else {
				assert.Empty(t, cookie)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	h := NewAuthHandler(new(MockAuthService), new(MockPasswordResetService), time.Hour, false)
	e := newEcho()
	e.POST("/api/auth/logout", h.Logout)

	rec := postJSON(e, "/api/auth/logout", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderSetCookie), "Max-Age=0")
}

func TestAuthHandler_Signup(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Signup", mock.Anything, "Ana", "ana@example.com", "password123").
		Return(&model.User{ID: 1, Name: "Ana", Email: "ana@example.com", Role: model.RoleClient}, nil)
	svc.On("Signup", mock.Anything, "Bo", "taken@example.com", "password123").
		Return(nil, apperrors.ErrEmailExists)
	h := NewAuthHandler(svc, new(MockPasswordResetService), time.Hour, false)

	e := newEcho()
	e.POST("/api/auth/signup", h.Signup)

	rec := postJSON(e, "/api/auth/signup", `{"name":"Ana","email":"ana@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(e, "/api/auth/signup", `{"name":"Bo","email":"taken@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = postJSON(e, "/api/auth/signup", `{"name":"Cy","email":"cy@example.com","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.AssertExpectations(t)
}

func TestAuthHandler_PasswordResetRequestIsUniform(t *testing.T) {
	reset := new(MockPasswordResetService)
	reset.On("RequestReset", mock.Anything, mock.Anything).Return(nil)
	h := NewAuthHandler(new(MockAuthService), reset, time.Hour, false)

	e := newEcho()
	e.POST("/api/auth/password-reset/request", h.RequestPasswordReset)

	known := postJSON(e, "/api/auth/password-reset/request", `{"email":"known@example.com"}`)
	unknown := postJSON(e, "/api/auth/password-reset/request", `{"email":"ghost@example.com"}`)

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, known.Code, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
}

func TestAuthHandler_RedeemPasswordReset(t *testing.T) {
	reset := new(MockPasswordResetService)
	reset.On("Redeem", mock.Anything, "good", "new-password").Return(nil)
	reset.On("Redeem", mock.Anything, "used", "new-password").Return(apperrors.ErrInvalidOrExpired)
	h := NewAuthHandler(new(MockAuthService), reset, time.Hour, false)

	e := newEcho()
	e.POST("/api/auth/password-reset/redeem", h.RedeemPasswordReset)

	rec := postJSON(e, "/api/auth/password-reset/redeem", `{"token":"good","password":"new-password"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(e, "/api/auth/password-reset/redeem", `{"token":"used","password":"new-password"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_OR_EXPIRED")

	reset.AssertExpectations(t)
}
