package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhajavat-web/efvb/internal/catalog"
)

// Gate decides whether a user may stream a product before any file is
// touched. It hides the reason for a denial: missing products, wrong
// media types and unowned products all surface as ErrNotFound or
// ErrNotEntitled without leaking what exists.
type Gate struct {
	products     ProductLookup
	entitlements EntitlementChecker
}

func NewGate(products ProductLookup, entitlements EntitlementChecker) *Gate {
	return &Gate{products: products, entitlements: entitlements}
}

// Authorize resolves productID, checks it is of the requested media
// type, and verifies the user's entitlement. It returns the product so
// the caller can resolve its file reference.
func (g *Gate) Authorize(ctx context.Context, userID, productID, productType string) (catalog.Product, error) {
	p, err := g.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return catalog.Product{}, ErrNotFound
		}
		return catalog.Product{}, fmt.Errorf("look up product %s: %w", productID, err)
	}
	if p.Type != productType {
		return catalog.Product{}, ErrNotFound
	}

	owns, err := g.entitlements.Owns(ctx, userID, p.ID)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("check entitlement for %s: %w", productID, err)
	}
	if !owns {
		return catalog.Product{}, ErrNotEntitled
	}
	return p, nil
}
