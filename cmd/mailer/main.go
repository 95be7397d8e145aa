package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"dentalce/internal/config"
	"dentalce/internal/logger"
	"dentalce/internal/mailer"
)

// The mailer process drains the password reset queue and delivers each
// message through a Sender.
func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zlog.Sync() }()
	zlog = zlog.With(zap.String("component", "mailer"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := mailer.NewConsumer(cfg.AMQPURL, cfg.MailQueue, mailer.NewLogSender(zlog), zlog)
	zlog.Info("mailer consuming", zap.String("queue", cfg.MailQueue))
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zlog.Error("mailer stopped", zap.Error(err))
		return
	}
	zlog.Info("mailer stopped")
}
