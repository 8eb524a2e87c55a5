package availability

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/beatfarda/studio-api/internal/config"
	"github.com/beatfarda/studio-api/internal/model"
	"github.com/beatfarda/studio-api/internal/repository"
	apperrors "github.com/beatfarda/studio-api/pkg/errors"
	"github.com/beatfarda/studio-api/pkg/metrics"
)

// Service computes free candidate slots for a service on a calendar day.
type Service struct {
	repo    repository.BookingRepository
	cfg     config.StudioConfig
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(repo repository.BookingRepository, cfg config.StudioConfig, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		cfg:     cfg,
		metrics: m,
		logger:  logger.With().Str("component", "availability").Logger(),
		now:     time.Now,
	}
}

// GetAvailableSlots returns the bookable candidate windows for svc on the
// calendar day containing date. Candidates respect studio hours, the minimum
// lead time, and the stricter of the global and per-service buffers. Only
// available candidates are emitted.
//
// Slot queries fail closed: a store fault surfaces as an error rather than
// pretending the day is empty, since stale emptiness here is how double
// bookings happen.
func (s *Service) GetAvailableSlots(ctx context.Context, date time.Time, svc *model.Service) ([]model.Slot, error) {
	if svc == nil || !svc.Bookable() {
		id := ""
		if svc != nil {
			id = svc.ID
		}
		return nil, apperrors.NewInvalidService(id)
	}

	started := time.Now()
	defer func() {
		s.metrics.SlotQueryDuration.Observe(time.Since(started).Seconds())
	}()

	now := s.now()
	year, month, day := date.Date()
	dayStart := time.Date(year, month, day, s.cfg.DayStartHour, 0, 0, 0, date.Location())
	dayEnd := time.Date(year, month, day, s.cfg.DayEndHour, 0, 0, 0, date.Location())
	minStartTime := now.Add(s.cfg.MinLeadTime())

	// The fetch covers the whole calendar day, not just the operating window,
	// so edge bookings outside studio hours still count against buffers.
	calDayStart := time.Date(year, month, day, 0, 0, 0, 0, date.Location())
	calDayEnd := calDayStart.AddDate(0, 0, 1)

	existing, err := s.repo.ListBlockingForDay(ctx, calDayStart, calDayEnd, now)
	if err != nil {
		s.logger.Error().Err(err).Time("date", date).Msg("slot query failed against booking store")
		s.metrics.StoreFailures.Inc()
		return nil, apperrors.NewStoreUnavailable(err)
	}

	// Buffers take the stricter of the two policies, never their sum.
	bufferBefore := time.Duration(max(s.cfg.GlobalBufferBefore, svc.BufferBefore)) * time.Minute
	bufferAfter := time.Duration(max(s.cfg.GlobalBufferAfter, svc.BufferAfter)) * time.Minute
	duration := time.Duration(svc.Duration) * time.Minute

	var slots []model.Slot
	for cursor := dayStart; !cursor.Add(duration).After(dayEnd); cursor = cursor.Add(s.cfg.SlotStep()) {
		slotStart := cursor
		slotEnd := cursor.Add(duration)

		if slotStart.Before(minStartTime) {
			continue
		}

		effectiveStart := slotStart.Add(-bufferBefore)
		effectiveEnd := slotEnd.Add(bufferAfter)

		conflict := false
		for _, booking := range existing {
			if effectiveStart.Before(booking.EndTime) && effectiveEnd.After(booking.StartTime) {
				conflict = true
				break
			}
		}

		if !conflict {
			slots = append(slots, model.Slot{Start: slotStart, End: slotEnd, Available: true})
		}
	}

	return slots, nil
}
