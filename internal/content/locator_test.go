package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocator(t *testing.T) (*Locator, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "books"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "books", "origin.epub"), []byte("epub-bytes"), 0o644))

	loc, err := NewLocator(root)
	require.NoError(t, err)
	return loc, root
}

func TestLocatorResolve(t *testing.T) {
	loc, _ := newTestLocator(t)

	t.Run("resolves file under root", func(t *testing.T) {
		f, err := loc.Resolve("books/origin.epub")
		require.NoError(t, err)
		assert.Equal(t, int64(len("epub-bytes")), f.Size)
		assert.Equal(t, "application/epub+zip", f.ContentType)
		assert.FileExists(t, f.Path)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loc.Resolve("books/absent.epub")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty reference", func(t *testing.T) {
		_, err := loc.Resolve("")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("directory is not a file", func(t *testing.T) {
		_, err := loc.Resolve("books")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("absolute reference rejected", func(t *testing.T) {
		_, err := loc.Resolve("/etc/passwd")
		assert.ErrorIs(t, err, ErrPathEscapesRoot)
	})

	t.Run("dot dot traversal rejected", func(t *testing.T) {
		for _, ref := range []string{
			"../outside.txt",
			"books/../../outside.txt",
			"../../../../etc/passwd",
		} {
			_, err := loc.Resolve(ref)
			assert.ErrorIs(t, err, ErrPathEscapesRoot, "ref %q", ref)
		}
	})

	t.Run("dot dot that stays inside root is fine", func(t *testing.T) {
		f, err := loc.Resolve("books/../books/origin.epub")
		require.NoError(t, err)
		assert.Equal(t, "application/epub+zip", f.ContentType)
	})
}

func TestLocatorSymlinkEscape(t *testing.T) {
	loc, root := newTestLocator(t)

	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("secret"), 0o644))
	if err := os.Symlink(secret, filepath.Join(root, "books", "link.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	_, err := loc.Resolve("books/link.txt")
	assert.ErrorIs(t, err, ErrPathEscapesRoot)
}
