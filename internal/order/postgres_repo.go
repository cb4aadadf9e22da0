package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

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

// Customer, items and timeline are stored as JSONB documents; the
// order id is the only key anything queries by.
func marshalDocs(o *Order) ([]byte, []byte, []byte, error) {
	customer, err := json.Marshal(o.Customer)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal customer: %w", err)
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal items: %w", err)
	}
	timeline, err := json.Marshal(o.Timeline)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal timeline: %w", err)
	}
	return customer, items, timeline, nil
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o        Order
		customer []byte
		items    []byte
		timeline []byte
	)
	err := row.Scan(&o.ID, &o.UserID, &customer, &items, &o.Amount, &o.Status, &o.AWB, &timeline, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(customer, &o.Customer); err != nil {
		return Order{}, fmt.Errorf("unmarshal customer: %w", err)
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return Order{}, fmt.Errorf("unmarshal items: %w", err)
	}
	if err := json.Unmarshal(timeline, &o.Timeline); err != nil {
		return Order{}, fmt.Errorf("unmarshal timeline: %w", err)
	}
	return o, nil
}

const orderColumns = `id, COALESCE(user_id, ''), customer, items, amount, status, COALESCE(awb, ''), timeline, created_at, updated_at`

func (r *PostgresRepo) Create(ctx context.Context, o *Order) error {
	const insertSQL = `
		INSERT INTO orders (id, user_id, customer, items, amount, status, awb, timeline)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, NULLIF($7, ''), $8)
		RETURNING created_at, updated_at`

	customer, items, timeline, err := marshalDocs(o)
	if err != nil {
		return err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.QueryRow(timeoutCtx, insertSQL,
		o.ID, o.UserID, customer, items, o.Amount, o.Status, o.AWB, timeline).
		Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Order, error) {
	const getSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	o, err := scanOrder(r.db.QueryRow(timeoutCtx, getSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

func (r *PostgresRepo) List(ctx context.Context) ([]Order, error) {
	const listSQL = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, listSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, o *Order) error {
	const updateSQL = `
		UPDATE orders
		SET status = $2, awb = NULLIF($3, ''), timeline = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	_, _, timeline, err := marshalDocs(o)
	if err != nil {
		return err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err = r.db.QueryRow(timeoutCtx, updateSQL, o.ID, o.Status, o.AWB, timeline).Scan(&o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
