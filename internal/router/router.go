package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"dentalce/internal/config"
	"dentalce/internal/handler"
	"dentalce/internal/metrics"
	"dentalce/internal/middleware"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth        *handler.AuthHandler
	Profile     *handler.ProfileHandler
	Course      *handler.CourseHandler
	Specialty   *handler.SpecialtyHandler
	User        *handler.UserHandler
	Certificate *handler.CertificateHandler
	Seed        *handler.SeedHandler
}

// Deps are the cross-cutting collaborators of the router.
type Deps struct {
	Guard   *middleware.Guard
	Metrics *metrics.Metrics
	Logger  *zap.Logger
	// Redis backs the rate limiter; nil disables it.
	Redis *redis.Client
	// Ready reports whether the backing stores answer.
	Ready func() error
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, deps Deps, h Handlers) {
	e.Validator = &CustomValidator{validator: newValidator()}

	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.BaseURL},
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.Metrics(deps.Metrics))
	e.Use(deps.Guard.Authenticate())
	e.Use(deps.Guard.RoutePolicy())

	e.GET("/healthz", func(c echo.Context) error {
		if deps.Ready != nil {
			if err := deps.Ready(); err != nil {
				return c.String(http.StatusServiceUnavailable, "unavailable")
			}
		}
		return c.String(http.StatusOK, "ok")
	})
	if deps.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(deps.Metrics.Handler()))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	limit := middleware.RateLimit(middleware.RateLimitConfig{
		Prefix:         "ratelimit:auth",
		Capacity:       cfg.RateLimitCapacity,
		RefillInterval: cfg.RateLimitRefill,
	}, deps.Redis, deps.Logger)

	api := e.Group("/api")

	// Public routes
	authGroup := api.Group("/auth")
	authGroup.POST("/signup", h.Auth.Signup)
	authGroup.POST("/login", h.Auth.Login, limit)
	authGroup.POST("/logout", h.Auth.Logout)
	authGroup.POST("/password-reset/request", h.Auth.RequestPasswordReset, limit)
	authGroup.POST("/password-reset/redeem", h.Auth.RedeemPasswordReset, limit)

	catalog := api.Group("/catalog")
	catalog.GET("/courses", h.Course.ListCourses)
	catalog.GET("/courses/:id", h.Course.GetCourse)
	catalog.GET("/specialties", h.Specialty.ListSpecialties)

	// Signed-in user routes
	me := api.Group("/me", deps.Guard.UserOnly())
	me.GET("", h.Profile.Me)
	me.PUT("", h.Profile.UpdateMe)
	me.GET("/certificates", h.Profile.MyCertificates)
	me.GET("/courses/:id/certificate", h.Profile.MyCourseCertificate)

	// Admin routes
	admin := api.Group("/admin", deps.Guard.AdminOnly())

	admin.GET("/users", h.User.ListUsers)
	admin.POST("/users", h.User.CreateUser)
	admin.GET("/users/:id", h.User.GetUser)
	admin.PUT("/users/:id", h.User.UpdateUser)
	admin.DELETE("/users/:id", h.User.DeleteUser)

	admin.GET("/courses", h.Course.ListCourses)
	admin.POST("/courses", h.Course.CreateCourse)
	admin.GET("/courses/:id", h.Course.GetCourse)
	admin.PUT("/courses/:id", h.Course.UpdateCourse)
	admin.DELETE("/courses/:id", h.Course.DeleteCourse)
	admin.GET("/courses/:id/classrooms", h.Course.ListClassrooms)
	admin.POST("/courses/:id/classrooms", h.Course.CreateClassroom)

	admin.GET("/classrooms/:id", h.Course.GetClassroom)
	admin.PUT("/classrooms/:id", h.Course.UpdateClassroom)
	admin.DELETE("/classrooms/:id", h.Course.DeleteClassroom)

	admin.GET("/specialties", h.Specialty.ListSpecialties)
	admin.POST("/specialties", h.Specialty.CreateSpecialty)
	admin.DELETE("/specialties/:id", h.Specialty.DeleteSpecialty)

	admin.GET("/certificates", h.Certificate.ListCertificates)
	admin.GET("/certificates/lookup", h.Certificate.LookupCertificate)
	admin.POST("/certificates/:id/approve", h.Certificate.ApproveCertificate)
	admin.POST("/certificates/:id/revert", h.Certificate.RevertCertificate)
	admin.DELETE("/certificates/:id", h.Certificate.DeleteCertificate)

	admin.POST("/seed/specialties", h.Seed.SeedSpecialties)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
