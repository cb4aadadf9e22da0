package library

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/abhajavat-web/efvb/internal/catalog"
	"go.uber.org/zap"
)

// Service reconciles a user's entitlements from the primary store, the
// legacy purchase history, and the demo fallback source into one
// consistent library view.
type Service struct {
	entries   EntryRepository
	purchases PurchaseRepository
	progress  ProgressRepository
	fallback  FallbackSource
	catalog   Catalog
	logger    *zap.Logger
}

func NewService(entries EntryRepository, purchases PurchaseRepository, progress ProgressRepository, fallback FallbackSource, cat Catalog, logger *zap.Logger) *Service {
	return &Service{
		entries:   entries,
		purchases: purchases,
		progress:  progress,
		fallback:  fallback,
		catalog:   cat,
		logger:    logger,
	}
}

// MyLibrary returns the user's reconciled library: raw entries merged
// with fallback entries, each synchronized against the catalog,
// deduplicated by product id (first occurrence wins, so raw entries
// beat fallback ones), newest acquisition first. A user with no
// entries but a digital purchase history gets their library derived
// from it and persisted, once.
func (s *Service) MyLibrary(ctx context.Context, userID, email string) ([]Entry, error) {
	raw, err := s.entries.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load library: %w", err)
	}

	var fallback []Entry
	if s.fallback != nil {
		fb, err := s.fallback.EntriesFor(ctx, email)
		if err != nil {
			// Fallback data is best-effort only.
			s.logger.Warn("library fallback source unavailable", zap.Error(err))
		} else {
			fallback = fb
		}
	}

	merged := make([]Entry, 0, len(raw)+len(fallback))
	seen := make(map[string]bool, len(raw)+len(fallback))
	for _, e := range append(raw, fallback...) {
		synced := s.syncEntry(ctx, e)
		if synced.ProductID == "" || seen[synced.ProductID] {
			continue
		}
		seen[synced.ProductID] = true
		merged = append(merged, synced)
	}

	if len(merged) == 0 {
		migrated, err := s.migrateFromPurchases(ctx, userID)
		if err != nil {
			return nil, err
		}
		if len(migrated) > 0 {
			return migrated, nil
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		// Zero timestamps sort oldest.
		return merged[i].PurchasedAt.After(merged[j].PurchasedAt)
	})
	return merged, nil
}

// syncEntry refreshes an entry's display fields from the catalog,
// preserving its acquisition timestamp and progress. An entry whose
// product cannot be resolved is returned unmodified: an unresolvable
// legacy entry is better than a silently dropped one.
func (s *Service) syncEntry(ctx context.Context, e Entry) Entry {
	product, err := s.resolveProduct(ctx, e)
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) {
			s.logger.Warn("library entry sync failed",
				zap.String("product_id", e.ProductID),
				zap.String("title", e.Title),
				zap.Error(err))
		}
		return e
	}

	e.ProductID = product.ID
	e.Title = product.Title
	e.Type = catalog.DisplayType(product.Type)
	if product.Thumbnail != "" {
		e.Thumbnail = product.Thumbnail
	}
	if product.FilePath != "" {
		e.FilePath = product.FilePath
	}
	return e
}

func (s *Service) resolveProduct(ctx context.Context, e Entry) (catalog.Product, error) {
	// Ids are opaque strings; legacy and demo ids resolve through the
	// same direct lookup as catalog-assigned ones.
	if e.ProductID != "" {
		p, err := s.catalog.GetByID(ctx, e.ProductID)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, catalog.ErrNotFound) {
			return catalog.Product{}, err
		}
	}

	if e.Title == "" {
		return catalog.Product{}, catalog.ErrNotFound
	}

	p, err := s.catalog.FindByTitleAndType(ctx, e.Title, e.Type)
	if err == nil {
		// Degraded-mode resolution; worth visibility.
		s.logger.Info("library entry resolved via title match",
			zap.String("stored_id", e.ProductID),
			zap.String("resolved_id", p.ID),
			zap.String("title", e.Title))
	}
	return p, err
}

// migrateFromPurchases derives a library from the legacy purchase
// history, filtered to digital types, and persists it as the user's
// new entry set. The derivation is deterministic, so a racing
// duplicate write produces the same rows.
func (s *Service) migrateFromPurchases(ctx context.Context, userID string) ([]Entry, error) {
	purchases, err := s.purchases.ListDigitalByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load purchase history: %w", err)
	}

	var entries []Entry
	for _, p := range purchases {
		if !catalog.IsDigital(p.Product.Type) {
			continue
		}
		e := NewEntryFromProduct(p.Product, p.PurchasedAt)
		e.Source = SourceLegacy
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	if err := s.entries.ReplaceForUser(ctx, userID, entries); err != nil {
		return nil, fmt.Errorf("persist migrated library: %w", err)
	}

	s.logger.Info("library migrated from purchase history",
		zap.String("user_id", userID),
		zap.Int("entries", len(entries)))
	return entries, nil
}

// AddProduct adds a product to the user's library, resolving legacy
// demo identifiers through the fixed alias table when a direct lookup
// misses. Returns the updated library.
func (s *Service) AddProduct(ctx context.Context, userID, productID string) ([]Entry, error) {
	product, err := s.resolveAddTarget(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := s.entries.Add(ctx, userID, NewEntryFromProduct(product, time.Now())); err != nil {
		return nil, err
	}
	return s.entries.ListByUser(ctx, userID)
}

func (s *Service) resolveAddTarget(ctx context.Context, productID string) (catalog.Product, error) {
	p, err := s.catalog.GetByID(ctx, productID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, catalog.ErrNotFound) {
		return catalog.Product{}, err
	}

	alias, ok := ResolveDemoAlias(productID)
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return s.catalog.FindByTitleAndType(ctx, alias.Title, alias.Type)
}

// GrantProduct adds a product to a user's library as a fulfillment
// side-effect, treating "already owned" as success.
func (s *Service) GrantProduct(ctx context.Context, userID string, p catalog.Product) error {
	err := s.entries.Add(ctx, userID, NewEntryFromProduct(p, time.Now()))
	if errors.Is(err, ErrAlreadyOwned) {
		return nil
	}
	return err
}

// Owns reports whether the user is entitled to the product, either
// through a library entry or an equivalent legacy purchase record.
func (s *Service) Owns(ctx context.Context, userID, productID string) (bool, error) {
	owns, err := s.entries.Owns(ctx, userID, productID)
	if err != nil {
		return false, err
	}
	if owns {
		return true, nil
	}
	return s.purchases.Has(ctx, userID, productID)
}

// SaveProgress upserts the consumption checkpoint for (user, product).
func (s *Service) SaveProgress(ctx context.Context, userID, productID string, progress, total float64) (Progress, error) {
	return s.progress.Upsert(ctx, userID, productID, progress, total)
}

// GetProgress returns the stored checkpoint, or a zero-valued record
// when none exists.
func (s *Service) GetProgress(ctx context.Context, userID, productID string) (Progress, error) {
	return s.progress.Get(ctx, userID, productID)
}
