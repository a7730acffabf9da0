package sequence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DB is the single pool method this repository needs.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository hands out monotonically increasing sequence numbers per
// partition key. Order numbers and event sequences both draw from it.
type Repository interface {
	Next(ctx context.Context, partitionKey string) (int64, error)
}

type repo struct {
	db DB
}

func NewRepository(db DB) Repository {
	return &repo{db: db}
}

func (r *repo) Next(ctx context.Context, partitionKey string) (int64, error) {
	if partitionKey == "" {
		return 0, fmt.Errorf("partition key is required")
	}

	var seq int64
	if err := r.db.QueryRow(ctx, `
		INSERT INTO event_sequence (partition_key, last_sequence, updated_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (partition_key)
		DO UPDATE SET last_sequence = event_sequence.last_sequence + 1, updated_at = NOW()
		RETURNING last_sequence
	`, partitionKey).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
