package idempotent

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresRepository persists the processed-key set in a relational table,
// for deployments that need the window to survive restarts. The add is a
// single INSERT ... ON CONFLICT DO NOTHING so concurrent consumers race
// safely.
type PostgresRepository struct {
	db        *sql.DB
	processor string
}

// NewPostgresRepository scopes keys to a processor name so several
// idempotent consumers can share the table.
func NewPostgresRepository(db *sql.DB, processor string) *PostgresRepository {
	return &PostgresRepository{db: db, processor: processor}
}

func (r *PostgresRepository) Add(ctx context.Context, key string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO processed_messages (processor, message_key, created_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (processor, message_key) DO NOTHING`,
		r.processor, key,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert message key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) Contains(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM processed_messages WHERE processor = $1 AND message_key = $2)`,
		r.processor, key,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query message key: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Remove(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM processed_messages WHERE processor = $1 AND message_key = $2`,
		r.processor, key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete message key: %w", err)
	}
	return nil
}
