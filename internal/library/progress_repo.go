package library

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProgressPostgresRepo stores consumption checkpoints in the
// user_progress table, one row per (user, product).
type ProgressPostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewProgressPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *ProgressPostgresRepo {
	return &ProgressPostgresRepo{db: db, timeout: timeout}
}

func (r *ProgressPostgresRepo) Upsert(ctx context.Context, userID, productID string, progress, total float64) (Progress, error) {
	const upsertSQL = `
		INSERT INTO user_progress (user_id, product_id, progress, total, last_updated)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET progress = EXCLUDED.progress, total = EXCLUDED.total, last_updated = NOW()
		RETURNING product_id, progress, total, last_updated
	`
	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var p Progress
	err := r.db.QueryRow(timeoutCtx, upsertSQL, userID, productID, progress, total).
		Scan(&p.ProductID, &p.Progress, &p.Total, &p.LastUpdated)
	return p, err
}

func (r *ProgressPostgresRepo) Get(ctx context.Context, userID, productID string) (Progress, error) {
	const getSQL = `
		SELECT product_id, progress, total, last_updated
		FROM user_progress
		WHERE user_id = $1 AND product_id = $2
	`
	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var p Progress
	err := r.db.QueryRow(timeoutCtx, getSQL, userID, productID).
		Scan(&p.ProductID, &p.Progress, &p.Total, &p.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		// No checkpoint yet is not an error.
		return Progress{ProductID: productID}, nil
	}
	return p, err
}
