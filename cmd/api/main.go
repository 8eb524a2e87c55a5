package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/beatfarda/studio-api/internal/config"
	"github.com/beatfarda/studio-api/internal/handler"
	bookingHandler "github.com/beatfarda/studio-api/internal/handler/booking"
	catalogHandler "github.com/beatfarda/studio-api/internal/handler/catalog"
	"github.com/beatfarda/studio-api/internal/middleware"
	"github.com/beatfarda/studio-api/internal/repository/postgres"
	"github.com/beatfarda/studio-api/internal/router"
	"github.com/beatfarda/studio-api/internal/service/availability"
	"github.com/beatfarda/studio-api/internal/service/catalog"
	"github.com/beatfarda/studio-api/internal/service/reservation"
	"github.com/beatfarda/studio-api/internal/worker"
	"github.com/beatfarda/studio-api/pkg/logger"
	"github.com/beatfarda/studio-api/pkg/messaging"
	redisbroker "github.com/beatfarda/studio-api/pkg/messaging/redis"
	"github.com/beatfarda/studio-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)
	zl := appLogger.Zerolog()

	accountID, err := cfg.Studio.Account()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid studio account")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := postgres.Migrate(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	bookingRepo := postgres.NewBookingRepository(db)
	clientRepo := postgres.NewClientRepository(db)

	// Booking lifecycle events are best-effort; without Redis they go nowhere.
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

	m := metrics.NewMetrics("studio_api")

	catalogSvc := catalog.NewService(cfg.Services)
	availabilitySvc := availability.NewService(bookingRepo, cfg.Studio, m, *zl)
	reservationSvc := reservation.NewService(
		bookingRepo, clientRepo, catalogSvc, cfg.Studio, broker, m, *zl,
	)

	h := handler.NewHandler(db)
	bookingH := bookingHandler.NewHandler(catalogSvc, availabilitySvc, reservationSvc, accountID)
	catalogH := catalogHandler.NewHandler(catalogSvc)

	r := router.NewRouter(bookingH, catalogH, h, router.RouterConfig{
		RateLimit:     rate.Limit(cfg.Server.RateLimit),
		RateBurst:     cfg.Server.RateBurst,
		Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		CORSConfig:    middleware.DefaultCORSConfig(),
		MetricsPrefix: "studio_api_http",
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	sweeper := worker.NewSweeperWorker(reservationSvc, cfg.Studio.SweepInterval, *zl)
	go sweeper.Start(sweepCtx)

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	stopSweeper()
	if err := broker.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close broker")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
