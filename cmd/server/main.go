package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/clients"
	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/database"
	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/logging"
	"github.com/iliyamo/hotel-reservation/internal/queue"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/router"
	"github.com/iliyamo/hotel-reservation/internal/service"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Env, "reservation-service")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(migrateCtx, db); err != nil {
		cancel()
		logger.Fatal("failed to apply schema", zap.Error(err))
	}
	cancel()

	// nil when redis is down: lookups skip the cache and rate limiting is off.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, running without cache and rate limiting")
	} else {
		defer rdb.Close()
	}

	rooms := clients.NewRoomClient(clients.NewClient("hotel-service", cfg.HotelServiceURL, cfg.UpstreamTimeout))
	userClient := clients.NewUserClient(clients.NewClient("user-service", cfg.UserServiceURL, cfg.UpstreamTimeout))

	var users service.UserDirectory = userClient
	if cc := config.LoadLookupCacheConfig(); cc.Enabled {
		users = clients.NewCachedUserDirectory(userClient, rdb, cc.TTL, cc.Prefix, logger)
	}

	publisher := queue.NewPublisher(cfg.AMQPURL, logger)
	defer publisher.Close()

	svc := service.NewReservationService(
		repository.NewReservationRepo(db),
		rooms,
		users,
		publisher,
		logger,
		cfg.ReviewURL,
	)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, db)
	router.RegisterReservations(e, handler.NewReservationHandler(svc, logger), cfg.JWTSecret, config.LoadRateLimitConfig(), rdb, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.Port
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
