package model

import (
	"time"

	"github.com/google/uuid"
)

type ClientStatus string

const (
	ClientStatusInquiry       ClientStatus = "inquiry"
	ClientStatusActive        ClientStatus = "active"
	ClientStatusSessionActive ClientStatus = "session_active"
)

// Client is a studio contact created the first time a guest books a slot.
// CreditBalance is the hour bank credited by package purchases.
type Client struct {
	Base
	AccountID     uuid.UUID    `db:"account_id" json:"account_id"`
	Name          string       `db:"name" json:"name"`
	Email         string       `db:"email" json:"email"`
	Status        ClientStatus `db:"status" json:"status"`
	CreditBalance float64      `db:"credit_balance" json:"credit_balance"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}
