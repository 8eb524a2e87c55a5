package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/beatfarda/studio-api/internal/model"
	"github.com/beatfarda/studio-api/internal/repository"
)

const bookingCols = `
	id, account_id, client_id, service_id, service_name,
	start_time, end_time, status, provisional_expires_at,
	total_amount, deposit_amount, balance_due,
	guest_name, guest_email, created_at, updated_at`

// blockingPredicate matches bookings that exclude other claims on their range:
// confirmed, completed, or provisional with a live hold.
const blockingPredicate = `
	(status IN ('CONFIRMED', 'COMPLETED')
	 OR (status = 'PROVISIONAL' AND provisional_expires_at > $3))`

func (r *bookingRepository) HoldSlot(ctx context.Context, booking *model.Booking) error {
	now := time.Now()
	return r.WithSerializableTx(ctx, func(tx *sqlx.Tx) error {
		var blocked bool
		err := tx.GetContext(ctx, &blocked, `
			SELECT EXISTS (
				SELECT 1 FROM bookings
				WHERE start_time < $2 AND end_time > $1
				AND `+blockingPredicate+`
			)`, booking.StartTime, booking.EndTime, now)
		if err != nil {
			return fmt.Errorf("failed to check overlaps: %w", err)
		}
		if blocked {
			return repository.ErrConflict
		}

		clientID, err := upsertClient(ctx, tx, booking.AccountID, booking.GuestEmail, booking.GuestName, now)
		if err != nil {
			return fmt.Errorf("failed to resolve client: %w", err)
		}
		booking.ClientID = &clientID

		booking.ID = uuid.New()
		booking.CreatedAt = now
		booking.UpdatedAt = now
		_, err = tx.ExecContext(ctx, `
			INSERT INTO bookings (`+bookingCols+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
			booking.ID, booking.AccountID, booking.ClientID, booking.ServiceID, booking.ServiceName,
			booking.StartTime, booking.EndTime, booking.Status, booking.ProvisionalExpiresAt,
			booking.TotalAmount, booking.DepositAmount, booking.BalanceDue,
			booking.GuestName, booking.GuestEmail, booking.CreatedAt, booking.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert booking: %w", err)
		}
		return nil
	})
}

// upsertClient resolves the guest to a client record under the account,
// creating an inquiry-status record on first contact.
func upsertClient(ctx context.Context, tx *sqlx.Tx, accountID uuid.UUID, email, name string, now time.Time) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.GetContext(ctx, &id, `
		INSERT INTO clients (id, account_id, name, email, status, credit_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6, $6)
		ON CONFLICT (account_id, email) DO UPDATE SET updated_at = EXCLUDED.updated_at
		RETURNING id`,
		uuid.New(), accountID, name, email, model.ClientStatusInquiry, now)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *bookingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.GetContext(ctx, &booking, `
		SELECT `+bookingCols+` FROM bookings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *bookingRepository) ConfirmBooking(ctx context.Context, id uuid.UUID) (*model.Booking, bool, error) {
	var booking model.Booking
	var transitioned bool
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &booking, `
			SELECT `+bookingCols+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get booking: %w", err)
		}

		switch booking.Status {
		case model.BookingStatusConfirmed:
			// Already confirmed: safe no-op.
			return nil
		case model.BookingStatusCancelled, model.BookingStatusAvailable:
			return repository.ErrInvalidTransition
		}

		now := time.Now()
		_, err = tx.ExecContext(ctx, `
			UPDATE bookings
			SET status = $2, balance_due = 0, provisional_expires_at = NULL, updated_at = $3
			WHERE id = $1`,
			id, model.BookingStatusConfirmed, now)
		if err != nil {
			return fmt.Errorf("failed to confirm booking: %w", err)
		}

		booking.Status = model.BookingStatusConfirmed
		booking.BalanceDue = 0
		booking.ProvisionalExpiresAt = nil
		booking.UpdatedAt = now
		transitioned = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &booking, transitioned, nil
}

func (r *bookingRepository) CancelBooking(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = $2, provisional_expires_at = NULL, updated_at = $3
		WHERE id = $1 AND status NOT IN ('CANCELLED', 'COMPLETED')`,
		id, model.BookingStatusCancelled, time.Now())
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		// Distinguish a missing row from an untouchable one.
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return repository.ErrInvalidTransition
	}
	return nil
}

func (r *bookingRepository) ReleaseExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = $2, provisional_expires_at = NULL, updated_at = $1
		WHERE status = 'PROVISIONAL' AND provisional_expires_at < $1`,
		now, model.BookingStatusAvailable)
	if err != nil {
		return 0, fmt.Errorf("failed to release expired holds: %w", err)
	}
	return result.RowsAffected()
}

func (r *bookingRepository) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = $2, updated_at = $1
		WHERE status = 'CONFIRMED' AND end_time < $1`,
		now, model.BookingStatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("failed to complete elapsed bookings: %w", err)
	}
	return result.RowsAffected()
}

func (r *bookingRepository) ListBlockingForDay(ctx context.Context, dayStart, dayEnd, now time.Time) ([]*model.Booking, error) {
	var bookings []*model.Booking
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT `+bookingCols+` FROM bookings
		WHERE start_time < $2 AND end_time > $1
		AND `+blockingPredicate+`
		ORDER BY start_time ASC`,
		dayStart, dayEnd, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocking bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) ListRange(ctx context.Context, start, end time.Time) ([]*model.Booking, error) {
	var bookings []*model.Booking
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT `+bookingCols+` FROM bookings
		WHERE start_time >= $1 AND end_time <= $2
		AND status IN ('PROVISIONAL', 'CONFIRMED', 'COMPLETED')
		ORDER BY start_time ASC`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}
