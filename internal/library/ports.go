package library

import (
	"context"

	"github.com/abhajavat-web/efvb/internal/catalog"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=library

// EntryRepository is the primary entitlement store.
type EntryRepository interface {
	ListByUser(ctx context.Context, userID string) ([]Entry, error)
	// ReplaceForUser atomically rewrites the user's library. The write
	// is derived identically from the same inputs on every call, so
	// concurrent migrations may race without coordination.
	ReplaceForUser(ctx context.Context, userID string, entries []Entry) error
	// Add inserts one entry, returning ErrAlreadyOwned on a duplicate
	// (user, product) pair.
	Add(ctx context.Context, userID string, e Entry) error
	Owns(ctx context.Context, userID, productID string) (bool, error)
}

// PurchaseRepository reads the legacy purchase history. Read-only.
type PurchaseRepository interface {
	ListDigitalByUser(ctx context.Context, userID string) ([]Purchase, error)
	Has(ctx context.Context, userID, productID string) (bool, error)
}

// ProgressRepository stores consumption checkpoints.
type ProgressRepository interface {
	Upsert(ctx context.Context, userID, productID string, progress, total float64) (Progress, error)
	// Get returns a zero-valued record, not an error, when no progress
	// has been saved yet.
	Get(ctx context.Context, userID, productID string) (Progress, error)
}

// FallbackSource supplies best-effort demo/legacy entries keyed by
// user identity. Faults from this source are swallowed by callers.
type FallbackSource interface {
	EntriesFor(ctx context.Context, userKey string) ([]Entry, error)
}

// Catalog is the slice of the product catalog the reconciler needs.
type Catalog interface {
	GetByID(ctx context.Context, id string) (catalog.Product, error)
	FindByTitleAndType(ctx context.Context, title, productType string) (catalog.Product, error)
}
