package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	// BookingStatusAvailable marks a slot that was released back to the pool
	// after a provisional hold expired. It is a reset marker, not a real booking.
	BookingStatusAvailable   BookingStatus = "AVAILABLE"
	BookingStatusProvisional BookingStatus = "PROVISIONAL"
	BookingStatusConfirmed   BookingStatus = "CONFIRMED"
	BookingStatusCompleted   BookingStatus = "COMPLETED"
	BookingStatusCancelled   BookingStatus = "CANCELLED"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingStatusAvailable, BookingStatusProvisional, BookingStatusConfirmed,
		BookingStatusCompleted, BookingStatusCancelled:
		return BookingStatus(s), true
	default:
		return "", false
	}
}

// Booking represents a claim on a time range in the studio calendar.
type Booking struct {
	Base
	AccountID            uuid.UUID     `db:"account_id" json:"account_id"`
	ClientID             *uuid.UUID    `db:"client_id" json:"client_id,omitempty"`
	ServiceID            string        `db:"service_id" json:"service_id"`
	ServiceName          string        `db:"service_name" json:"service_name"`
	StartTime            time.Time     `db:"start_time" json:"start_time"`
	EndTime              time.Time     `db:"end_time" json:"end_time"`
	Status               BookingStatus `db:"status" json:"status"`
	ProvisionalExpiresAt *time.Time    `db:"provisional_expires_at" json:"provisional_expires_at,omitempty"`
	TotalAmount          float64       `db:"total_amount" json:"total_amount"`
	DepositAmount        float64       `db:"deposit_amount" json:"deposit_amount"`
	BalanceDue           float64       `db:"balance_due" json:"balance_due"`
	GuestName            string        `db:"guest_name" json:"guest_name"`
	GuestEmail           string        `db:"guest_email" json:"guest_email"`
	CreatedAt            time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time     `db:"updated_at" json:"updated_at"`
}

// IsBlocking reports whether the booking excludes other claims on its time
// range at the given instant. Expired provisional holds are non-blocking.
func (b *Booking) IsBlocking(now time.Time) bool {
	switch b.Status {
	case BookingStatusConfirmed, BookingStatusCompleted:
		return true
	case BookingStatusProvisional:
		return b.ProvisionalExpiresAt != nil && b.ProvisionalExpiresAt.After(now)
	default:
		return false
	}
}

// Overlaps tests strict open-interval overlap of [b.StartTime, b.EndTime)
// against [start, end).
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}

// Duration returns the booked session length.
func (b *Booking) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}

// Slot is a candidate [Start, End) window offered for booking.
type Slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

type HoldBookingRequest struct {
	StartTime  time.Time `json:"start_time" binding:"required,future"`
	EndTime    time.Time `json:"end_time" binding:"required,gtfield=StartTime"`
	GuestName  string    `json:"guest_name" binding:"required,max=200"`
	GuestEmail string    `json:"guest_email" binding:"required,email"`
	ServiceID  string    `json:"service_id" binding:"required"`
}

type BookingFilters struct {
	AccountID uuid.UUID
	StartDate time.Time
	EndDate   time.Time
	Status    BookingStatus
}
