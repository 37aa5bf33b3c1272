// Package localfs serves stored documents from a directory that stands in
// for a storage bucket. Object keys are slash-separated paths below the root.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/chunkflow/internal/core/domain"
	"github.com/custodia-labs/chunkflow/internal/core/ports/driven"
)

// Ensure ObjectStore implements the interface.
var _ driven.ObjectStore = (*ObjectStore)(nil)

// ObjectStore reads objects from files below a root directory.
type ObjectStore struct {
	root string
}

// NewObjectStore creates a store rooted at dir.
func NewObjectStore(dir string) *ObjectStore {
	return &ObjectStore{root: dir}
}

// Root returns the bucket directory.
func (s *ObjectStore) Root() string {
	return s.root
}

// Download copies the file for key into w.
func (s *ObjectStore) Download(ctx context.Context, key string, w io.Writer) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	p, err := s.resolve(key)
	if err != nil {
		return 0, err
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("object %q: %w", key, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("open object %q: %w", key, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat object %q: %w", key, err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("object %q is a directory: %w", key, domain.ErrNotFound)
	}

	n, err := io.Copy(w, f)
	if err != nil {
		return n, fmt.Errorf("copy object %q: %w", key, err)
	}
	return n, nil
}

// resolve maps key to a path inside the root, rejecting keys that would
// leave it.
func (s *ObjectStore) resolve(key string) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(key))
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: object key %q", domain.ErrInvalidInput, key)
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}
