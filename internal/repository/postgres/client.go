package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/beatfarda/studio-api/internal/model"
	"github.com/beatfarda/studio-api/internal/repository"
)

const clientCols = `id, account_id, name, email, status, credit_balance, created_at, updated_at`

func (r *clientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var client model.Client
	err := r.db.GetContext(ctx, &client, `
		SELECT `+clientCols+` FROM clients WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return &client, nil
}

func (r *clientRepository) GetByEmail(ctx context.Context, accountID uuid.UUID, email string) (*model.Client, error) {
	var client model.Client
	err := r.db.GetContext(ctx, &client, `
		SELECT `+clientCols+` FROM clients WHERE account_id = $1 AND email = $2`, accountID, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client by email: %w", err)
	}
	return &client, nil
}

func (r *clientRepository) List(ctx context.Context, accountID uuid.UUID) ([]*model.Client, error) {
	var clients []*model.Client
	err := r.db.SelectContext(ctx, &clients, `
		SELECT `+clientCols+` FROM clients WHERE account_id = $1 ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

func (r *clientRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ClientStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE clients SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update client status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *clientRepository) CreditHours(ctx context.Context, id uuid.UUID, hours float64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE clients
		SET credit_balance = credit_balance + $2, status = $3, updated_at = $4
		WHERE id = $1`,
		id, hours, model.ClientStatusActive, time.Now())
	if err != nil {
		return fmt.Errorf("failed to credit client hours: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}
