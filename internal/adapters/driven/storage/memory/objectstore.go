package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/custodia-labs/chunkflow/internal/core/domain"
	"github.com/custodia-labs/chunkflow/internal/core/ports/driven"
)

// Ensure ObjectStore implements the interface.
var _ driven.ObjectStore = (*ObjectStore)(nil)

// ObjectStore is an in-memory implementation of driven.ObjectStore for testing.
type ObjectStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewObjectStore creates a new empty in-memory object store.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{
		objects: make(map[string][]byte),
	}
}

// Put stores a copy of content under key.
func (s *ObjectStore) Put(key string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = bytes.Clone(content)
}

// Keys returns all stored keys, sorted.
func (s *ObjectStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Download copies the object stored under key into w.
func (s *ObjectStore) Download(ctx context.Context, key string, w io.Writer) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	content, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("object %q: %w", key, domain.ErrNotFound)
	}

	n, err := io.Copy(w, bytes.NewReader(content))
	if err != nil {
		return n, fmt.Errorf("copy object %q: %w", key, err)
	}
	return n, nil
}
