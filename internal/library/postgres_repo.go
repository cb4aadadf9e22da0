package library

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepo is the primary entitlement store backed by the
// library_items table.
type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) ListByUser(ctx context.Context, userID string) ([]Entry, error) {
	const listSQL = `
		SELECT product_id, title, type_label, COALESCE(thumbnail, ''), COALESCE(file_path, ''),
		       acquired_at, progress, source
		FROM library_items
		WHERE user_id = $1
		ORDER BY acquired_at DESC
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, listSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ProductID, &e.Title, &e.Type, &e.Thumbnail, &e.FilePath,
			&e.PurchasedAt, &e.Progress, &e.Source,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PostgresRepo) Add(ctx context.Context, userID string, e Entry) error {
	const insertSQL = `
		INSERT INTO library_items (user_id, product_id, title, type_label, thumbnail, file_path,
			acquired_at, progress, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		ON CONFLICT (user_id, product_id) DO NOTHING
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, insertSQL,
		userID, e.ProductID, e.Title, e.Type, e.Thumbnail, e.FilePath,
		e.PurchasedAt, e.Progress, e.Source,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyOwned
	}
	return nil
}

// ReplaceForUser rewrites the user's library in one transaction. Both
// sides of a racing migration derive identical rows, so last-writer-
// wins is safe here.
func (r *PostgresRepo) ReplaceForUser(ctx context.Context, userID string, entries []Entry) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return err
	}
	defer tx.Rollback(timeoutCtx)

	if _, err := tx.Exec(timeoutCtx, `DELETE FROM library_items WHERE user_id = $1`, userID); err != nil {
		return err
	}

	const insertSQL = `
		INSERT INTO library_items (user_id, product_id, title, type_label, thumbnail, file_path,
			acquired_at, progress, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	for _, e := range entries {
		if _, err := tx.Exec(timeoutCtx, insertSQL,
			userID, e.ProductID, e.Title, e.Type, e.Thumbnail, e.FilePath,
			e.PurchasedAt, e.Progress, e.Source,
		); err != nil {
			return err
		}
	}

	return tx.Commit(timeoutCtx)
}

func (r *PostgresRepo) Owns(ctx context.Context, userID, productID string) (bool, error) {
	const ownsSQL = `
		SELECT EXISTS (
			SELECT 1 FROM library_items WHERE user_id = $1 AND product_id = $2
		)
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var owns bool
	err := r.db.QueryRow(timeoutCtx, ownsSQL, userID, productID).Scan(&owns)
	return owns, err
}
