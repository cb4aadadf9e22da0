package content

import (
	"context"

	"github.com/abhajavat-web/efvb/internal/catalog"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=content

// ProductLookup resolves a product id against the catalog.
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (catalog.Product, error)
}

// EntitlementChecker reports whether a user owns a product.
type EntitlementChecker interface {
	Owns(ctx context.Context, userID, productID string) (bool, error)
}
