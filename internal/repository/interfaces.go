package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/beatfarda/studio-api/internal/model"
)

// Sentinel errors returned by repository implementations. Services map these
// onto the application error taxonomy.
var (
	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict means an overlapping blocking booking already claims the range.
	ErrConflict = errors.New("booking range conflict")
	// ErrSerialization means the store detected a write race; the operation may
	// be retried a bounded number of times.
	ErrSerialization = errors.New("transaction serialization failure")
	// ErrInvalidTransition means the booking is in a state the requested
	// transition is not allowed from.
	ErrInvalidTransition = errors.New("invalid status transition")
)

type (
	// BookingRepository is the transactional record store for reservations.
	BookingRepository interface {
		// HoldSlot atomically checks the requested range for blocking overlaps,
		// resolves or creates the guest's client record, and inserts the
		// provisional booking. On success it fills booking.ID and
		// booking.ClientID. Returns ErrConflict when the range is claimed and
		// ErrSerialization on a lost write race.
		HoldSlot(ctx context.Context, booking *model.Booking) error

		Get(ctx context.Context, id uuid.UUID) (*model.Booking, error)

		// ConfirmBooking transitions a booking to CONFIRMED, zeroes the balance
		// and clears the hold expiry. transitioned is false when the booking was
		// already confirmed (idempotent no-op).
		ConfirmBooking(ctx context.Context, id uuid.UUID) (booking *model.Booking, transitioned bool, err error)

		// CancelBooking moves a non-terminal booking to CANCELLED.
		CancelBooking(ctx context.Context, id uuid.UUID) error

		// ReleaseExpired resets every provisional booking whose hold lapsed
		// before now. Returns the number of rows released.
		ReleaseExpired(ctx context.Context, now time.Time) (int64, error)

		// CompleteElapsed marks confirmed bookings whose end time passed as
		// COMPLETED. Housekeeping, not a user action.
		CompleteElapsed(ctx context.Context, now time.Time) (int64, error)

		// ListBlockingForDay returns the bookings that block candidate slots on
		// the calendar day [dayStart, dayEnd), evaluated at now.
		ListBlockingForDay(ctx context.Context, dayStart, dayEnd, now time.Time) ([]*model.Booking, error)

		// ListRange returns provisional, confirmed and completed bookings whose
		// range falls inside [start, end).
		ListRange(ctx context.Context, start, end time.Time) ([]*model.Booking, error)
	}

	// ClientRepository manages the studio's client records.
	ClientRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Client, error)
		GetByEmail(ctx context.Context, accountID uuid.UUID, email string) (*model.Client, error)
		List(ctx context.Context, accountID uuid.UUID) ([]*model.Client, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.ClientStatus) error
		// CreditHours adds hours to the client's hour bank and marks them active.
		CreditHours(ctx context.Context, id uuid.UUID, hours float64) error
	}
)
