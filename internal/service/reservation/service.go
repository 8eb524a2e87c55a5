package reservation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/beatfarda/studio-api/internal/config"
	"github.com/beatfarda/studio-api/internal/model"
	"github.com/beatfarda/studio-api/internal/repository"
	"github.com/beatfarda/studio-api/internal/service/catalog"
	apperrors "github.com/beatfarda/studio-api/pkg/errors"
	"github.com/beatfarda/studio-api/pkg/messaging"
	"github.com/beatfarda/studio-api/pkg/metrics"
)

// maxHoldAttempts bounds transaction retries on serialization failures before
// the caller gets the generic unavailable answer.
const maxHoldAttempts = 3

// Event channels published on the message broker.
const (
	EventBookingHeld      = "booking.held"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingReleased  = "booking.released"
	EventBookingCancelled = "booking.cancelled"
)

// Internal failure reasons. These reach logs, metrics and the event stream,
// never the caller.
const (
	reasonOverlap       = "overlap"
	reasonStoreConflict = "store_conflict"
	reasonStoreError    = "store_error"
)

// Service coordinates the provisional-hold protocol: at most one active
// (confirmed or live-provisional) booking may claim any overlapping range.
type Service struct {
	repo    repository.BookingRepository
	clients repository.ClientRepository
	catalog *catalog.Service
	cfg     config.StudioConfig
	broker  messaging.Broker
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(
	repo repository.BookingRepository,
	clients repository.ClientRepository,
	catalogSvc *catalog.Service,
	cfg config.StudioConfig,
	broker messaging.Broker,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	if broker == nil {
		broker = messaging.NewNoopBroker()
	}
	return &Service{
		repo:    repo,
		clients: clients,
		catalog: catalogSvc,
		cfg:     cfg,
		broker:  broker,
		metrics: m,
		logger:  logger.With().Str("component", "reservation").Logger(),
		now:     time.Now,
	}
}

// HoldRequest asks for a provisional claim on a time range.
type HoldRequest struct {
	AccountID  uuid.UUID
	ServiceID  string
	StartTime  time.Time
	EndTime    time.Time
	GuestName  string
	GuestEmail string
}

// Hold attempts to place a provisional booking on the requested range. The
// overlap check and insert run as one atomic transaction; concurrent holds on
// overlapping ranges resolve with exactly one success. Every failure surfaces
// to the caller as the same generic unavailable error.
func (s *Service) Hold(ctx context.Context, req HoldRequest) (uuid.UUID, error) {
	svc, err := s.catalog.GetBookable(req.ServiceID)
	if err != nil {
		return uuid.Nil, err
	}
	if !req.EndTime.After(req.StartTime) {
		return uuid.Nil, apperrors.NewBadRequest("end time must be after start time", nil)
	}

	now := s.now()
	expiresAt := now.Add(s.cfg.HoldDuration())
	booking := &model.Booking{
		AccountID:            req.AccountID,
		ServiceID:            svc.ID,
		ServiceName:          svc.Name,
		StartTime:            req.StartTime,
		EndTime:              req.EndTime,
		Status:               model.BookingStatusProvisional,
		ProvisionalExpiresAt: &expiresAt,
		TotalAmount:          svc.Price,
		BalanceDue:           svc.Price,
		GuestName:            req.GuestName,
		GuestEmail:           req.GuestEmail,
	}

	for attempt := 1; ; attempt++ {
		err = s.repo.HoldSlot(ctx, booking)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrSerialization) && attempt < maxHoldAttempts {
			s.metrics.HoldRetries.Inc()
			continue
		}
		reason := holdFailureReason(err)
		s.logger.Warn().Err(err).
			Str("reason", reason).
			Time("start", req.StartTime).
			Time("end", req.EndTime).
			Str("service_id", req.ServiceID).
			Msg("hold rejected")
		s.metrics.HoldsTotal.WithLabelValues("rejected").Inc()
		s.metrics.HoldConflicts.WithLabelValues(reason).Inc()
		return uuid.Nil, apperrors.NewSlotUnavailable(err)
	}

	s.metrics.HoldsTotal.WithLabelValues("held").Inc()
	s.publish(ctx, EventBookingHeld, bookingEvent{
		BookingID: booking.ID,
		ServiceID: booking.ServiceID,
		StartTime: booking.StartTime,
		EndTime:   booking.EndTime,
		ExpiresAt: booking.ProvisionalExpiresAt,
	})
	s.logger.Info().
		Str("booking_id", booking.ID.String()).
		Str("service_id", booking.ServiceID).
		Time("start", booking.StartTime).
		Time("expires_at", expiresAt).
		Msg("slot held")
	return booking.ID, nil
}

// Confirm marks a held booking as paid. Confirming an already-confirmed
// booking is a safe no-op and never re-applies the client side effects. Expiry
// is deliberately not re-checked here; a lapsed hold that was re-claimed in
// the meantime is the race the expiry sweep exists to close.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) error {
	booking, transitioned, err := s.repo.ConfirmBooking(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("booking", err)
	}
	if errors.Is(err, repository.ErrInvalidTransition) {
		return apperrors.NewBadRequest("booking cannot be confirmed", err)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("booking_id", id.String()).Msg("confirm failed")
		return apperrors.NewStoreUnavailable(err)
	}
	if !transitioned {
		return nil
	}

	s.metrics.BookingsConfirmed.Inc()
	// The confirmation is durably committed at this point. Client bookkeeping
	// must never undo or block it, so failures below are logged only.
	s.applyClientSideEffects(ctx, booking)

	s.publish(ctx, EventBookingConfirmed, bookingEvent{
		BookingID: booking.ID,
		ServiceID: booking.ServiceID,
		StartTime: booking.StartTime,
		EndTime:   booking.EndTime,
	})
	s.logger.Info().Str("booking_id", id.String()).Msg("booking confirmed")
	return nil
}

// applyClientSideEffects credits package purchases to the client's hour bank
// and activates the client record. Package detection uses the service id
// stored on the booking, not the paid amount.
func (s *Service) applyClientSideEffects(ctx context.Context, booking *model.Booking) {
	if booking.ClientID == nil {
		return
	}
	clientID := *booking.ClientID

	svc, err := s.catalog.Get(booking.ServiceID)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("booking_id", booking.ID.String()).
			Str("service_id", booking.ServiceID).
			Msg("confirmed booking references unknown service; skipping client update")
		return
	}

	if svc.PackageHours > 0 {
		// The purchase banks the package hours minus the session just booked.
		credit := svc.PackageHours - booking.Duration().Hours()
		if err := s.clients.CreditHours(ctx, clientID, credit); err != nil {
			s.logger.Error().Err(err).
				Str("client_id", clientID.String()).
				Float64("hours", credit).
				Msg("failed to credit client hour bank")
		}
		return
	}

	if err := s.clients.UpdateStatus(ctx, clientID, model.ClientStatusSessionActive); err != nil {
		s.logger.Error().Err(err).
			Str("client_id", clientID.String()).
			Msg("failed to update client status")
	}
}

// Cancel moves a non-terminal booking to CANCELLED.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	err := s.repo.CancelBooking(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("booking", err)
	}
	if errors.Is(err, repository.ErrInvalidTransition) {
		return apperrors.NewBadRequest("booking cannot be cancelled", err)
	}
	if err != nil {
		return apperrors.NewStoreUnavailable(err)
	}

	s.metrics.BookingsCancelled.Inc()
	s.publish(ctx, EventBookingCancelled, bookingEvent{BookingID: id})
	s.logger.Info().Str("booking_id", id.String()).Msg("booking cancelled")
	return nil
}

// ReleaseExpired reclaims every provisional hold whose expiry passed. Safe to
// run concurrently with holds and confirms.
func (s *Service) ReleaseExpired(ctx context.Context) (int64, error) {
	s.metrics.SweepRuns.Inc()
	released, err := s.repo.ReleaseExpired(ctx, s.now())
	if err != nil {
		s.metrics.SweepFailed.Inc()
		s.logger.Error().Err(err).Msg("expiry sweep failed")
		return 0, apperrors.NewStoreUnavailable(err)
	}
	if released > 0 {
		s.metrics.SweepReleased.Add(float64(released))
		s.publish(ctx, EventBookingReleased, sweepEvent{Released: released})
		s.logger.Info().Int64("released", released).Msg("expired holds released")
	}
	return released, nil
}

// CompleteElapsed marks confirmed bookings whose session time passed as
// completed. Housekeeping companion to ReleaseExpired.
func (s *Service) CompleteElapsed(ctx context.Context) (int64, error) {
	completed, err := s.repo.CompleteElapsed(ctx, s.now())
	if err != nil {
		return 0, apperrors.NewStoreUnavailable(err)
	}
	return completed, nil
}

// GetBookingsForRange lists active bookings in [start, end). The expiry sweep
// runs first so callers never see lapsed holds as live.
func (s *Service) GetBookingsForRange(ctx context.Context, start, end time.Time) ([]*model.Booking, error) {
	if _, err := s.ReleaseExpired(ctx); err != nil {
		return nil, err
	}

	bookings, err := s.repo.ListRange(ctx, start, end)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return bookings, nil
}

// Get loads a single booking.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("booking", err)
	}
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return booking, nil
}

type bookingEvent struct {
	BookingID uuid.UUID  `json:"booking_id"`
	ServiceID string     `json:"service_id,omitempty"`
	StartTime time.Time  `json:"start_time,omitempty"`
	EndTime   time.Time  `json:"end_time,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type sweepEvent struct {
	Released int64 `json:"released"`
}

// publish is best-effort: the event stream observes the protocol, it never
// participates in it.
func (s *Service) publish(ctx context.Context, channel string, payload interface{}) {
	if err := s.broker.Publish(ctx, channel, payload); err != nil {
		s.logger.Warn().Err(err).Str("channel", channel).Msg("event publish failed")
	}
}

func holdFailureReason(err error) string {
	switch {
	case errors.Is(err, repository.ErrConflict):
		return reasonOverlap
	case errors.Is(err, repository.ErrSerialization):
		return reasonStoreConflict
	default:
		return reasonStoreError
	}
}
