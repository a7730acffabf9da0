package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("cart line not found")

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Line, error)
	Upsert(ctx context.Context, line Line) (Line, bool, error)
	UpdateQty(ctx context.Context, userID, lineID string, qty int) (Line, error)
	Delete(ctx context.Context, userID, lineID string) (int64, error)
	Clear(ctx context.Context, userID string) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Line, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, product_id, name, price, qty FROM cart_lines WHERE user_id=$1 ORDER BY name`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("select cart lines: %w", err)
	}
	defer rows.Close()

	lines := []Line{}
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.UserID, &l.ProductID, &l.Name, &l.Price, &l.Qty); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return lines, nil
}

// Upsert adds a line, or increments the quantity of the existing line for the
// same (user, product). The unique constraint on (user_id, product_id) makes
// this atomic under concurrent adds; there is no read-then-write window.
// The second return value reports whether a new line was created.
func (r *PostgresRepository) Upsert(ctx context.Context, line Line) (Line, bool, error) {
	if line.ID == "" {
		line.ID = uuid.NewString()
	}

	const upsertSQL = `
INSERT INTO cart_lines (id, user_id, product_id, name, price, qty)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id, product_id) DO UPDATE
SET qty = cart_lines.qty + EXCLUDED.qty
RETURNING id, user_id, product_id, name, price, qty, (xmax = 0) AS inserted
`
	// xmax = 0 holds only for freshly inserted rows.
	var out Line
	var inserted bool
	err := r.pool.QueryRow(ctx, upsertSQL,
		line.ID, line.UserID, line.ProductID, line.Name, line.Price, line.Qty,
	).Scan(&out.ID, &out.UserID, &out.ProductID, &out.Name, &out.Price, &out.Qty, &inserted)
	if err != nil {
		return Line{}, false, fmt.Errorf("upsert cart line: %w", err)
	}
	return out, inserted, nil
}

func (r *PostgresRepository) UpdateQty(ctx context.Context, userID, lineID string, qty int) (Line, error) {
	var l Line
	err := r.pool.QueryRow(ctx,
		`UPDATE cart_lines SET qty=$1 WHERE id=$2 AND user_id=$3
		 RETURNING id, user_id, product_id, name, price, qty`,
		qty, lineID, userID,
	).Scan(&l.ID, &l.UserID, &l.ProductID, &l.Name, &l.Price, &l.Qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Line{}, ErrNotFound
		}
		return Line{}, fmt.Errorf("update cart line: %w", err)
	}
	return l, nil
}

// Delete removes a line scoped to the user and reports how many rows went
// away, so callers can decide whether an absent line is an error.
func (r *PostgresRepository) Delete(ctx context.Context, userID, lineID string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM cart_lines WHERE id=$1 AND user_id=$2`, lineID, userID)
	if err != nil {
		return 0, fmt.Errorf("delete cart line: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRepository) Clear(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM cart_lines WHERE user_id=$1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
