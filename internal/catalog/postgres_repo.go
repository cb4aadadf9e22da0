package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

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

const productColumns = `id, title, type, COALESCE(description, ''), price, discount, stock,
	COALESCE(file_path, ''), COALESCE(thumbnail, ''), COALESCE(category, ''),
	COALESCE(language, ''), COALESCE(volume, ''), created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Title, &p.Type, &p.Description, &p.Price, &p.Discount, &p.Stock,
		&p.FilePath, &p.Thumbnail, &p.Category, &p.Language, &p.Volume,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *PostgresRepo) List(ctx context.Context) ([]Product, error) {
	const listSQL = `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, listSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Product, error) {
	const getSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	p, err := scanProduct(r.db.QueryRow(timeoutCtx, getSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

// FindByTitleAndType matches on titles with trademark glyphs stripped,
// preferring the shortest title so an exact edition wins over a longer
// one that merely contains the search phrase.
func (r *PostgresRepo) FindByTitleAndType(ctx context.Context, normalizedTitle, productType string) (Product, error) {
	const findSQL = `
		SELECT ` + productColumns + `
		FROM products
		WHERE type = $2
		  AND translate(lower(title), '™®', '') LIKE '%' || $1 || '%'
		ORDER BY char_length(title) ASC
		LIMIT 1
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	p, err := scanProduct(r.db.QueryRow(timeoutCtx, findSQL, normalizedTitle, productType))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresRepo) Create(ctx context.Context, p *Product) error {
	const insertSQL = `
		INSERT INTO products (id, title, type, description, price, discount, stock,
			file_path, thumbnail, category, language, volume, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.QueryRow(timeoutCtx, insertSQL,
		p.ID, p.Title, p.Type, p.Description, p.Price, p.Discount, p.Stock,
		p.FilePath, p.Thumbnail, p.Category, p.Language, p.Volume,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *PostgresRepo) DecrementStock(ctx context.Context, id string, qty int) error {
	const updateSQL = `
		UPDATE products SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, updateSQL, id, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// ErrInsufficientStock is returned when a physical product does not
// have enough stock for the requested quantity.
var ErrInsufficientStock = errors.New("insufficient stock")
