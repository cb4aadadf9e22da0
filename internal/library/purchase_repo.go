package library

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PurchasePostgresRepo reads the legacy purchases table. It is a
// migration source only; nothing in this package writes to it.
type PurchasePostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPurchasePostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PurchasePostgresRepo {
	return &PurchasePostgresRepo{db: db, timeout: timeout}
}

func (r *PurchasePostgresRepo) ListDigitalByUser(ctx context.Context, userID string) ([]Purchase, error) {
	const listSQL = `
		SELECT p.id, p.title, p.type, COALESCE(p.thumbnail, ''), COALESCE(p.file_path, ''), pu.purchased_at
		FROM purchases pu
		JOIN products p ON p.id = pu.product_id
		WHERE pu.user_id = $1 AND p.type IN ('EBOOK', 'AUDIOBOOK')
		ORDER BY pu.purchased_at ASC
	`
	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, listSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var purchases []Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(
			&p.Product.ID, &p.Product.Title, &p.Product.Type,
			&p.Product.Thumbnail, &p.Product.FilePath, &p.PurchasedAt,
		); err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

func (r *PurchasePostgresRepo) Has(ctx context.Context, userID, productID string) (bool, error) {
	const hasSQL = `
		SELECT EXISTS (
			SELECT 1 FROM purchases WHERE user_id = $1 AND product_id = $2
		)
	`
	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	var has bool
	err := r.db.QueryRow(timeoutCtx, hasSQL, userID, productID).Scan(&has)
	return has, err
}
