// Command notifier drains the notification queues: emails go out over SMTP
// and realtime events are logged for the websocket gateway to pick up.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/logging"
	"github.com/iliyamo/hotel-reservation/internal/mailer"
	"github.com/iliyamo/hotel-reservation/internal/queue"
)

func main() {
	_ = godotenv.Load()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	logger, err := logging.New(env, "notification-worker")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	m, err := mailer.NewSMTPMailer(config.LoadMailConfig())
	if err != nil {
		logger.Fatal("failed to configure smtp", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("consuming notifications", zap.Strings("queues", []string{queue.EmailQueue, queue.RealtimeQueue}))
	if err := queue.NewConsumer(config.AMQPURL(), m, logger).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("consumer stopped", zap.Error(err))
	}
}
