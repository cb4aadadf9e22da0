package library

import (
	"errors"
	"time"

	"github.com/abhajavat-web/efvb/internal/catalog"
)

var (
	// ErrAlreadyOwned is returned when a product is already in the user's library.
	ErrAlreadyOwned = errors.New("product already in library")
)

// Source records which entitlement source an entry came from. The
// primary store is authoritative; legacy and demo entries only fill
// gaps and lose to primary entries during deduplication.
type Source string

const (
	SourcePrimary Source = "primary"
	SourceLegacy  Source = "legacy-migrated"
	SourceDemo    Source = "demo-fallback"
)

// Entry is one owned digital product in a user's library. Display
// fields are snapshotted at add-time and re-synchronized against the
// catalog on every read; the acquisition timestamp and progress always
// belong to the entry itself.
type Entry struct {
	ProductID   string    `json:"productId"`
	Title       string    `json:"title"`
	Type        string    `json:"type"` // display label: "E-Book" or "Audiobook"
	Thumbnail   string    `json:"thumbnail,omitempty"`
	FilePath    string    `json:"filePath,omitempty"`
	PurchasedAt time.Time `json:"purchasedAt"`
	Progress    float64   `json:"progress"`
	Source      Source    `json:"-"`
}

// NewEntryFromProduct snapshots a catalog product into a library entry.
func NewEntryFromProduct(p catalog.Product, at time.Time) Entry {
	return Entry{
		ProductID:   p.ID,
		Title:       p.Title,
		Type:        catalog.DisplayType(p.Type),
		Thumbnail:   p.Thumbnail,
		FilePath:    p.FilePath,
		PurchasedAt: at,
		Source:      SourcePrimary,
	}
}

// Purchase is a row from the read-only legacy purchase history, joined
// with its product. Never written by this package.
type Purchase struct {
	Product     catalog.Product
	PurchasedAt time.Time
}

// Progress is a consumption checkpoint for one (user, product) pair.
type Progress struct {
	ProductID   string    `json:"productId,omitempty"`
	Progress    float64   `json:"progress"`
	Total       float64   `json:"total"`
	LastUpdated time.Time `json:"lastUpdated,omitzero"`
}

// demoAlias maps a known legacy/demo product identifier to the title
// and type its catalog record is published under.
type demoAlias struct {
	Title string
	Type  string
}

var demoAliases = map[string]demoAlias{
	// Hindi editions sit under the trademarked series title.
	"efv_v1_ebook":     {Title: "EFV VOL 1: ORIGIN CODE", Type: catalog.TypeEbook},
	"efv_v1_audiobook": {Title: "EFV VOL 1: ORIGIN CODE", Type: catalog.TypeAudiobook},

	// English editions.
	"efv_v1_ebook_en":     {Title: "THE ORIGIN CODE", Type: catalog.TypeEbook},
	"efv_v1_audiobook_en": {Title: "THE ORIGIN CODE", Type: catalog.TypeAudiobook},

	"efv_v2_ebook":     {Title: "MINDOS", Type: catalog.TypeEbook},
	"efv_v2_audiobook": {Title: "MINDOS", Type: catalog.TypeAudiobook},
}

// ResolveDemoAlias returns the alias record for a known legacy id.
func ResolveDemoAlias(productID string) (demoAlias, bool) {
	a, ok := demoAliases[productID]
	return a, ok
}
