package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoRecords = `[
  {
    "_id": "demo@example.com",
    "email": "demo@example.com",
    "library": [
      {
        "productId": "efv_v1_ebook",
        "title": "EFV™ VOL 1: ORIGIN CODE™",
        "type": "E-Book",
        "filePath": "books/origin.epub",
        "purchasedAt": "2024-01-15T12:00:00Z",
        "progress": 0.25
      },
      {
        "_id": "legacy-item",
        "name": "MINDOS",
        "type": "Audiobook"
      }
    ]
  },
  {
    "id": "old-style-user",
    "library": []
  }
]`

func writeDemoFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo_users.json")
	require.NoError(t, os.WriteFile(path, []byte(demoRecords), 0o600))
	return path
}

func TestDemoSource_EntriesFor(t *testing.T) {
	src := NewDemoSource(writeDemoFile(t))

	entries, err := src.EntriesFor(context.Background(), "demo@example.com")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "efv_v1_ebook", entries[0].ProductID)
	assert.Equal(t, "EFV™ VOL 1: ORIGIN CODE™", entries[0].Title)
	assert.Equal(t, 0.25, entries[0].Progress)
	assert.Equal(t, SourceDemo, entries[0].Source)
	assert.False(t, entries[0].PurchasedAt.IsZero())

	// Older record generations key the id and title differently.
	assert.Equal(t, "legacy-item", entries[1].ProductID)
	assert.Equal(t, "MINDOS", entries[1].Title)
	assert.True(t, entries[1].PurchasedAt.IsZero())
}

func TestDemoSource_UnknownUser(t *testing.T) {
	src := NewDemoSource(writeDemoFile(t))

	entries, err := src.EntriesFor(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDemoSource_MissingFile(t *testing.T) {
	src := NewDemoSource(filepath.Join(t.TempDir(), "absent.json"))

	_, err := src.EntriesFor(context.Background(), "demo@example.com")
	assert.Error(t, err)
}

func TestDemoSource_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo_users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewDemoSource(path).EntriesFor(context.Background(), "demo@example.com")
	assert.Error(t, err)
}
