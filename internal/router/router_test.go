package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dentalce/internal/auth"
	"dentalce/internal/config"
	"dentalce/internal/handler"
	"dentalce/internal/metrics"
	"dentalce/internal/middleware"
	"dentalce/internal/model"
)

func newTestServer(t *testing.T, ready func() error) (*echo.Echo, *auth.TokenService) {
	t.Helper()
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		SessionSecret: "router-session-secret",
		ResetSecret:   "router-reset-secret",
	})
	require.NoError(t, err)

	cfg := &config.Config{BaseURL: "http://localhost:8080", RateLimitCapacity: 10, RateLimitRefill: time.Second}
	e := echo.New()
	// Handlers are never reached in these tests: every request is either
	// answered by the router itself or rejected by the guard.
	Register(e, cfg, Deps{
		Guard:   middleware.NewGuard(tokens),
		Metrics: metrics.New(prometheus.NewRegistry()),
		Ready:   ready,
	}, Handlers{
		Auth:        handler.NewAuthHandler(nil, nil, time.Hour, false),
		Profile:     handler.NewProfileHandler(nil, nil),
		Course:      handler.NewCourseHandler(nil, nil),
		Specialty:   handler.NewSpecialtyHandler(nil),
		User:        handler.NewUserHandler(nil),
		Certificate: handler.NewCertificateHandler(nil),
		Seed:        handler.NewSeedHandler(nil),
	})
	return e, tokens
}

func TestRegister_GuardsAdminAndUserRoutes(t *testing.T) {
	e, tokens := newTestServer(t, nil)
	clientToken, _, err := tokens.IssueSessionToken(auth.SessionClaim{ID: 2, Email: "c@example.com", Role: model.RoleClient})
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
	}{
		{"list users anonymous", http.MethodGet, "/api/admin/users", ""},
		{"list users as client", http.MethodGet, "/api/admin/users", clientToken},
		{"approve as client", http.MethodPost, "/api/admin/certificates/1/approve", clientToken},
		{"delete certificate anonymous", http.MethodDelete, "/api/admin/certificates/1", ""},
		{"seed as client", http.MethodPost, "/api/admin/seed/specialties", clientToken},
		{"profile anonymous", http.MethodGet, "/api/me", ""},
		{"own certificate anonymous", http.MethodGet, "/api/me/courses/1/certificate", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set(echo.HeaderAuthorization, "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRegister_Healthz(t *testing.T) {
	e, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	e, _ = newTestServer(t, func() error { return errors.New("db down") })
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRegister_MetricsEndpoint(t *testing.T) {
	e, _ := newTestServer(t, nil)
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "\nhttp_requests_total{")
	assert.NotContains(t, rec.Body.String(), "dentalce_")
}

func TestCustomValidator(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
	}
	v := &CustomValidator{validator: newValidator()}
	assert.NoError(t, v.Validate(&payload{Email: "a@example.com"}))
	assert.Error(t, v.Validate(&payload{Email: "nope"}))
}
