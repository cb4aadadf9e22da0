package content

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File describes a resolved media file on disk.
type File struct {
	Path        string
	Size        int64
	ContentType string
}

// Locator resolves stored file references to real files under a single
// content root. Every resolution is checked against the canonical root
// so hostile references cannot reach other parts of the filesystem.
type Locator struct {
	root string
}

// NewLocator canonicalizes root and returns a Locator bound to it.
func NewLocator(root string) (*Locator, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve content root: %w", err)
	}
	canon, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve content root: %w", err)
	}
	return &Locator{root: canon}, nil
}

// Resolve maps a stored file reference to a File under the content
// root. Absolute references and references that escape the root are
// rejected. A reference whose target does not exist yields ErrNotFound.
func (l *Locator) Resolve(ref string) (File, error) {
	if ref == "" {
		return File{}, ErrNotFound
	}
	if filepath.IsAbs(filepath.FromSlash(ref)) {
		return File{}, ErrPathEscapesRoot
	}

	joined := filepath.Join(l.root, filepath.FromSlash(ref))
	if !l.within(joined) {
		return File{}, ErrPathEscapesRoot
	}

	// Re-check after symlink resolution so a link inside the root
	// cannot point outside it.
	real, err := filepath.EvalSymlinks(joined)
	if err != nil {
		if os.IsNotExist(err) {
			return File{}, ErrNotFound
		}
		return File{}, fmt.Errorf("resolve %q: %w", ref, err)
	}
	if !l.within(real) {
		return File{}, ErrPathEscapesRoot
	}

	info, err := os.Stat(real)
	if err != nil {
		if os.IsNotExist(err) {
			return File{}, ErrNotFound
		}
		return File{}, fmt.Errorf("stat %q: %w", ref, err)
	}
	if info.IsDir() {
		return File{}, ErrNotFound
	}

	return File{
		Path:        real,
		Size:        info.Size(),
		ContentType: MimeTypeFor(ref),
	}, nil
}

func (l *Locator) within(path string) bool {
	return path == l.root || strings.HasPrefix(path, l.root+string(filepath.Separator))
}
