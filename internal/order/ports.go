package order

import (
	"context"

	"github.com/abhajavat-web/efvb/internal/auth"
	"github.com/abhajavat-web/efvb/internal/catalog"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=order

// Repository persists orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (Order, error)
	List(ctx context.Context) ([]Order, error)
	Update(ctx context.Context, o *Order) error
}

// Catalog resolves and reserves products while an order is placed.
type Catalog interface {
	GetByID(ctx context.Context, id string) (catalog.Product, error)
	DecrementStock(ctx context.Context, id string, qty int) error
}

// Fulfiller adds purchased digital products to a user's library.
type Fulfiller interface {
	GrantProduct(ctx context.Context, userID string, p catalog.Product) error
}

// UserLookup maps a checkout email to an account for fulfillment.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (auth.User, error)
}
