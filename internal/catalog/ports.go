package catalog

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=catalog

// Repository defines the contract for product data storage.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (Product, error)
	FindByTitleAndType(ctx context.Context, normalizedTitle, productType string) (Product, error)
	Create(ctx context.Context, p *Product) error
	DecrementStock(ctx context.Context, id string, qty int) error
}
