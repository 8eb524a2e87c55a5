package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/beatfarda/studio-api/internal/repository"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	return r.withTx(ctx, nil, fn)
}

// WithSerializableTx executes a function under SERIALIZABLE isolation. The
// caller is expected to retry on repository.ErrSerialization.
func (r *BaseRepository) WithSerializableTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	return r.withTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
}

func (r *BaseRepository) withTx(ctx context.Context, opts *sql.TxOptions, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return mapTxError(err)
	}

	if err := tx.Commit(); err != nil {
		return mapTxError(err)
	}
	return nil
}

// mapTxError surfaces postgres serialization and deadlock failures as the
// retryable sentinel.
func mapTxError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01":
			return errors.Join(repository.ErrSerialization, err)
		}
	}
	return err
}
