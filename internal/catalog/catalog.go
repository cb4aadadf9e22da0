package catalog

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// ErrNotFound is returned when a product is not found.
var ErrNotFound = errors.New("product not found")

// Product content types. Only EBOOK and AUDIOBOOK are streamable.
const (
	TypeEbook     = "EBOOK"
	TypeAudiobook = "AUDIOBOOK"
	TypeHardcover = "HARDCOVER"
	TypePaperback = "PAPERBACK"
)

// Product represents a catalog entry. IDs are opaque strings: the
// catalog assigns UUIDs, but legacy datasets carry human-readable ids
// like "efv_v1_ebook" and those must resolve too.
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Discount    float64   `json:"discount"`
	Stock       int       `json:"stock"`
	FilePath    string    `json:"filePath,omitempty"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Category    string    `json:"category,omitempty"`
	Language    string    `json:"language,omitempty"`
	Volume      string    `json:"volume,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsDigital reports whether t is a streamable content type.
func IsDigital(t string) bool {
	return t == TypeEbook || t == TypeAudiobook
}

// EffectivePrice returns the price after the percentage discount.
func (p Product) EffectivePrice() float64 {
	return p.Price * (1 - p.Discount/100)
}

var (
	parenthetical = regexp.MustCompile(`\(.*\)`)
	trademark     = strings.NewReplacer("™", "", "®", "")
)

// NormalizeTitle prepares a title for fuzzy matching: parenthetical
// suffixes and trademark glyphs are stripped, the rest is lowercased
// and trimmed. Best-effort by nature; callers treat a fuzzy hit as a
// degraded-mode resolution, not a primary identity.
func NormalizeTitle(title string) string {
	t := parenthetical.ReplaceAllString(title, "")
	t = trademark.Replace(t)
	return strings.ToLower(strings.TrimSpace(t))
}

// NormalizeType maps display labels ("E-Book", "Audiobook") back to
// catalog type constants. Unknown labels are uppercased as-is.
func NormalizeType(label string) string {
	t := strings.ToUpper(strings.TrimSpace(label))
	t = strings.ReplaceAll(t, "E-BOOK", TypeEbook)
	return t
}

// DisplayType returns the user-facing label for a catalog type.
func DisplayType(t string) string {
	if t == TypeAudiobook {
		return "Audiobook"
	}
	return "E-Book"
}
