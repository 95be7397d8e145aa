package middleware

import (
	"net/http"
	"strings"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"dentalce/internal/auth"
	apperrors "dentalce/internal/errors"
)

const (
	// SessionCookie is the cookie that carries the session token.
	SessionCookie = "token"

	claimContextKey = "session"
	bearerPrefix    = "Bearer "
)

// Guard resolves the caller's identity from a request and enforces role
// access on top of it.
type Guard struct {
	tokens *auth.TokenService
}

// NewGuard creates a guard backed by the given token service.
func NewGuard(tokens *auth.TokenService) *Guard {
	return &Guard{tokens: tokens}
}

// Identify returns the verified session claim of the caller, if any. The
// cookie is consulted first, then the Authorization bearer header. It never
// fails: a missing, malformed or expired token reads as "no identity".
func (g *Guard) Identify(c echo.Context) (*auth.SessionClaim, bool) {
	if claim, ok := ClaimFrom(c); ok {
		return claim, true
	}
	for _, token := range tokensFromRequest(c) {
		claim, err := g.tokens.VerifySessionToken(token)
		if err != nil {
			continue
		}
		SetClaim(c, claim)
		return claim, true
	}
	return nil, false
}

// RequireUser returns the caller's claim or ErrUnauthorized.
func (g *Guard) RequireUser(c echo.Context) (*auth.SessionClaim, error) {
	claim, ok := g.Identify(c)
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	return claim, nil
}

// RequireAdmin returns the caller's claim when it carries the admin role and
// ErrUnauthorized otherwise.
func (g *Guard) RequireAdmin(c echo.Context) (*auth.SessionClaim, error) {
	claim, err := g.RequireUser(c)
	if err != nil {
		return nil, err
	}
	if !claim.IsAdmin() {
		return nil, apperrors.ErrUnauthorized
	}
	return claim, nil
}

// Authenticate verifies the session token with echo-jwt and stores the claim
// in the context. Requests without a valid token continue anonymously; the
// role checks decide what they may reach.
func (g *Guard) Authenticate() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimContextKey,
		TokenLookup: "cookie:" + SessionCookie + ",header:" + echo.HeaderAuthorization + ":" + bearerPrefix,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return g.tokens.VerifySessionToken(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
		ContinueOnIgnoredError: true,
	})
}

// UserOnly rejects requests that carry no valid session.
func (g *Guard) UserOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := g.RequireUser(c); err != nil {
				return unauthorized(err)
			}
			return next(c)
		}
	}
}

// AdminOnly rejects requests whose session is absent or not an admin.
func (g *Guard) AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := g.RequireAdmin(c); err != nil {
				return unauthorized(err)
			}
			return next(c)
		}
	}
}

// ClaimFrom returns the session claim stored by Authenticate or Identify.
func ClaimFrom(c echo.Context) (*auth.SessionClaim, bool) {
	claim, ok := c.Get(claimContextKey).(*auth.SessionClaim)
	return claim, ok && claim != nil
}

// SetClaim stores claim as the caller's identity for the rest of the request.
func SetClaim(c echo.Context, claim *auth.SessionClaim) {
	c.Set(claimContextKey, claim)
}

// SetSessionCookie writes the session cookie for token.
func SetSessionCookie(c echo.Context, token string, ttl time.Duration, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func tokensFromRequest(c echo.Context) []string {
	var tokens []string
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		tokens = append(tokens, cookie.Value)
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(header) > len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		if token := strings.TrimSpace(header[len(bearerPrefix):]); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func unauthorized(err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
