package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// Policy is the access rule a path falls under.
type Policy int

const (
	// PolicyHandler leaves the decision to the handler.
	PolicyHandler Policy = iota
	// PolicyPublic bypasses the guard entirely.
	PolicyPublic
	// PolicyUser requires any valid session.
	PolicyUser
	// PolicyAdmin requires an admin session.
	PolicyAdmin
)

func (p Policy) String() string {
	switch p {
	case PolicyPublic:
		return "public"
	case PolicyUser:
		return "user"
	case PolicyAdmin:
		return "admin"
	default:
		return "handler"
	}
}

var publicPaths = map[string]struct{}{
	"/":                       {},
	"/faq":                    {},
	"/client/login":           {},
	"/client/signup":          {},
	"/client/forgot-password": {},
	"/client/reset-password":  {},
	"/healthz":                {},
	"/metrics":                {},
}

var publicPrefixes = []string{
	"/swagger/",
	"/api/auth/",
	"/api/catalog/",
}

var adminPrefixes = []string{"/api/admin/", "/admin/"}

var userPrefixes = []string{"/api/me/", "/client/"}

// Classify maps a request path to its access policy. The public allow-list
// is checked first, so "/client/login" stays open while the rest of
// "/client/" requires a session.
func Classify(path string) Policy {
	if path == "" {
		path = "/"
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	if _, ok := publicPaths[path]; ok {
		return PolicyPublic
	}
	if matchPrefix(path, publicPrefixes) {
		return PolicyPublic
	}
	if matchPrefix(path, adminPrefixes) {
		return PolicyAdmin
	}
	if matchPrefix(path, userPrefixes) {
		return PolicyUser
	}
	return PolicyHandler
}

// matchPrefix treats "/api/me" as matching the "/api/me/" prefix.
func matchPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) || path == strings.TrimSuffix(p, "/") {
			return true
		}
	}
	return false
}

// RoutePolicy enforces Classify for every request.
func (g *Guard) RoutePolicy() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch Classify(c.Request().URL.Path) {
			case PolicyPublic:
				return next(c)
			case PolicyAdmin:
				if _, err := g.RequireAdmin(c); err != nil {
					return unauthorized(err)
				}
			case PolicyUser:
				if _, err := g.RequireUser(c); err != nil {
					return unauthorized(err)
				}
			case PolicyHandler:
				g.Identify(c)
			}
			return next(c)
		}
	}
}
