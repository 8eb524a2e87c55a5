package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/beatfarda/studio-api/internal/repository"
)

type bookingRepository struct {
	BaseRepository
}

type clientRepository struct {
	BaseRepository
}

func NewBookingRepository(db *sqlx.DB) repository.BookingRepository {
	return &bookingRepository{BaseRepository: NewBaseRepository(db)}
}

func NewClientRepository(db *sqlx.DB) repository.ClientRepository {
	return &clientRepository{BaseRepository: NewBaseRepository(db)}
}
