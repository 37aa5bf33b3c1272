package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/chunkflow/internal/core/domain"
	"github.com/custodia-labs/chunkflow/internal/core/ports/driven"
)

// Ensure ChunkerRegistry implements the interface.
var _ driven.ChunkerRegistry = (*ChunkerRegistry)(nil)

// ChunkerRegistry maps chunking methods to chunkers.
// The map is filled by the constructor and never written again, so
// concurrent lookups need no locking.
type ChunkerRegistry struct {
	chunkers map[string]driven.Chunker
	methods  []string
}

// NewChunkerRegistry creates a registry holding the given chunkers, keyed
// by their Name(). A later chunker replaces an earlier one of the same name.
func NewChunkerRegistry(chunkers ...driven.Chunker) *ChunkerRegistry {
	r := &ChunkerRegistry{
		chunkers: make(map[string]driven.Chunker, len(chunkers)),
	}
	for _, c := range chunkers {
		if c == nil {
			continue
		}
		r.chunkers[c.Name()] = c
	}

	r.methods = make([]string, 0, len(r.chunkers))
	for name := range r.chunkers {
		r.methods = append(r.methods, name)
	}
	sort.Strings(r.methods)
	return r
}

// Dispatch runs the chunker registered for method.
func (r *ChunkerRegistry) Dispatch(ctx context.Context, method string, in *domain.ChunkInput) ([]domain.RawChunk, error) {
	c, ok := r.chunkers[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownMethod, method)
	}
	if in == nil {
		return nil, fmt.Errorf("%w: nil chunk input", domain.ErrInvalidInput)
	}
	return c.Chunk(ctx, in)
}

// Has returns true if method is registered.
func (r *ChunkerRegistry) Has(method string) bool {
	_, ok := r.chunkers[method]
	return ok
}

// Methods returns all registered method names, sorted.
func (r *ChunkerRegistry) Methods() []string {
	out := make([]string, len(r.methods))
	copy(out, r.methods)
	return out
}
