package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/beatfarda/studio-api/internal/service/reservation"
)

// SweeperWorker periodically releases lapsed provisional holds and marks
// elapsed confirmed sessions as completed. Read paths also sweep lazily, so
// the worker is a liveness floor rather than the only cleanup trigger.
type SweeperWorker struct {
	reservations *reservation.Service
	interval     time.Duration
	logger       zerolog.Logger
}

func NewSweeperWorker(reservations *reservation.Service, interval time.Duration, logger zerolog.Logger) *SweeperWorker {
	return &SweeperWorker{
		reservations: reservations,
		interval:     interval,
		logger:       logger.With().Str("component", "sweeper").Logger(),
	}
}

func (w *SweeperWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info().Dur("interval", w.interval).Msg("sweeper started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("sweeper stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *SweeperWorker) sweep(ctx context.Context) {
	if _, err := w.reservations.ReleaseExpired(ctx); err != nil {
		w.logger.Error().Err(err).Msg("failed to release expired holds")
	}

	completed, err := w.reservations.CompleteElapsed(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to complete elapsed sessions")
		return
	}
	if completed > 0 {
		w.logger.Info().Int64("completed", completed).Msg("sessions marked completed")
	}
}
