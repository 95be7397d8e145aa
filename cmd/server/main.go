package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "dentalce/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"dentalce/internal/auth"
	"dentalce/internal/cache"
	"dentalce/internal/config"
	"dentalce/internal/db"
	"dentalce/internal/handler"
	"dentalce/internal/logger"
	"dentalce/internal/mailer"
	"dentalce/internal/metrics"
	"dentalce/internal/middleware"
	"dentalce/internal/repository"
	"dentalce/internal/router"
	"dentalce/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title Dental CE Portal API
// @version 1.0
// @description Continuing-education portal: catalog, client accounts, certificates and admin back office.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		SessionSecret: cfg.SessionSecret,
		ResetSecret:   cfg.ResetSecret,
		SessionTTL:    cfg.SessionTokenTTL,
		ResetTTL:      cfg.ResetTokenTTL,
	})
	if err != nil {
		zlog.Fatal("token service init", zap.Error(err))
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, db.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
	})
	if err != nil {
		zlog.Fatal("database init", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		zlog.Fatal("database migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		zlog.Warn("redis unavailable, continuing without cache and rate limiting", zap.Error(err))
	}
	cancelPing()

	var mail mailer.Mailer
	amqpMailer, err := mailer.NewAMQPMailer(cfg.AMQPURL, cfg.MailQueue, zlog)
	if err != nil {
		zlog.Warn("amqp unavailable, reset links will only be logged", zap.Error(err))
		mail = mailer.NewLogMailer(zlog)
	} else {
		mail = amqpMailer
	}

	m := metrics.New(nil)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	specialtyRepo := repository.NewSpecialtyRepository(gormDB)
	courseRepo := repository.NewCourseRepository(gormDB)
	classroomRepo := repository.NewClassroomRepository(gormDB)
	certificateRepo := repository.NewCertificateRepository(gormDB)

	// Initialize services
	authService := service.NewAuthService(userRepo, cacheClient, tokens, cfg.BcryptCost, m, zlog)
	resetService := service.NewPasswordResetService(userRepo, tokens, auth.NewTokenStore(cacheClient), mail,
		service.PasswordResetConfig{BaseURL: cfg.BaseURL, BcryptCost: cfg.BcryptCost}, m, zlog)
	userService := service.NewUserService(userRepo, cacheClient, cfg.BcryptCost)
	specialtyService := service.NewSpecialtyService(specialtyRepo, cacheClient, cfg.CatalogCacheTTL)
	courseService := service.NewCourseService(courseRepo, specialtyRepo, cacheClient, cfg.CatalogCacheTTL)
	classroomService := service.NewClassroomService(classroomRepo, courseRepo, cacheClient)
	certificateService := service.NewCertificateService(certificateRepo, userRepo, courseRepo, m, zlog)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, router.Deps{
		Guard:   middleware.NewGuard(tokens),
		Metrics: m,
		Logger:  zlog,
		Redis:   cacheClient.Redis(),
		Ready: func() error {
			sqlDB, err := gormDB.DB()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			return sqlDB.PingContext(ctx)
		},
	}, router.Handlers{
		Auth:        handler.NewAuthHandler(authService, resetService, tokens.SessionTTL(), cfg.IsProduction()),
		Profile:     handler.NewProfileHandler(authService, certificateService),
		Course:      handler.NewCourseHandler(courseService, classroomService),
		Specialty:   handler.NewSpecialtyHandler(specialtyService),
		User:        handler.NewUserHandler(userService),
		Certificate: handler.NewCertificateHandler(certificateService),
		Seed:        handler.NewSeedHandler(specialtyService),
	})

	zlog.Info("swagger documentation available", zap.String("url", swaggerURL(cfg)))

	go func() {
		addr := ":" + cfg.ServerPort
		zlog.Info("server starting", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		zlog.Error("http shutdown", zap.Error(err))
	}
	if amqpMailer != nil {
		if err := amqpMailer.Close(); err != nil {
			zlog.Warn("amqp close", zap.Error(err))
		}
	}
	if err := cacheClient.Close(); err != nil {
		zlog.Warn("redis close", zap.Error(err))
	}
	if err := db.Close(gormDB); err != nil {
		zlog.Warn("database close", zap.Error(err))
	}
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimSuffix(host, "/") + "/swagger/index.html"
}
