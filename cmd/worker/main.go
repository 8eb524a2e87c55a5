package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/beatfarda/studio-api/internal/config"
	"github.com/beatfarda/studio-api/internal/repository/postgres"
	"github.com/beatfarda/studio-api/internal/service/catalog"
	"github.com/beatfarda/studio-api/internal/service/reservation"
	"github.com/beatfarda/studio-api/internal/worker"
	"github.com/beatfarda/studio-api/pkg/logger"
	"github.com/beatfarda/studio-api/pkg/messaging"
	redisbroker "github.com/beatfarda/studio-api/pkg/messaging/redis"
	"github.com/beatfarda/studio-api/pkg/metrics"
)

// Standalone sweeper process. The API runs the same sweeper in-process; this
// binary exists for deployments that want cleanup isolated from request
// serving, with its own metrics endpoint.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)
	zl := appLogger.Zerolog()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	bookingRepo := postgres.NewBookingRepository(db)
	clientRepo := postgres.NewClientRepository(db)

	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		broker, err = redisbroker.NewRedisBroker(redisbroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, zl)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
	} else {
		broker = messaging.NewNoopBroker()
	}

	m := metrics.NewMetrics("studio_sweeper")

	catalogSvc := catalog.NewService(cfg.Services)
	reservationSvc := reservation.NewService(
		bookingRepo, clientRepo, catalogSvc, cfg.Studio, broker, m, *zl,
	)

	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: promhttp.Handler(),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start metrics server")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	sweeper := worker.NewSweeperWorker(reservationSvc, cfg.Studio.SweepInterval, *zl)
	go sweeper.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down sweeper...")

	cancel()
	if err := broker.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close broker")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("metrics server forced to shutdown")
	}

	log.Info().Msg("sweeper exited properly")
}
