package catalog

import (
	"context"
)

// Service provides catalog lookups for the rest of the system.
type Service struct {
	repo Repository
}

// NewService creates a new catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all products.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

// GetByID returns a product by its identifier. The id is treated as an
// opaque string so legacy and demo identifiers resolve the same way as
// catalog-assigned ones.
func (s *Service) GetByID(ctx context.Context, id string) (Product, error) {
	return s.repo.GetByID(ctx, id)
}

// FindByTitleAndType resolves a product by case-insensitive title
// match combined with an exact type match. The title is normalized
// before querying.
func (s *Service) FindByTitleAndType(ctx context.Context, title, productType string) (Product, error) {
	normalized := NormalizeTitle(title)
	if normalized == "" {
		return Product{}, ErrNotFound
	}
	return s.repo.FindByTitleAndType(ctx, normalized, NormalizeType(productType))
}

// Create stores a new product.
func (s *Service) Create(ctx context.Context, p *Product) error {
	return s.repo.Create(ctx, p)
}

// DecrementStock reduces stock for a physical product.
func (s *Service) DecrementStock(ctx context.Context, id string, qty int) error {
	return s.repo.DecrementStock(ctx, id, qty)
}
