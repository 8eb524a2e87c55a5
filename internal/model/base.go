package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all persisted models
type Base struct {
	ID uuid.UUID `json:"id" db:"id"`
}

// Pagination represents common pagination parameters
type Pagination struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// TimeRange is a half-open [Start, End) interval used by range queries.
type TimeRange struct {
	Start time.Time `json:"start" form:"start"`
	End   time.Time `json:"end" form:"end"`
}
