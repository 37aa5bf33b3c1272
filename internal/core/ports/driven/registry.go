package driven

import (
	"context"

	"github.com/custodia-labs/chunkflow/internal/core/domain"
)

// ChunkerRegistry maps method names to chunkers.
// It is built once at startup and only read afterwards.
type ChunkerRegistry interface {
	// Dispatch runs the chunker registered for method.
	// Returns domain.ErrUnknownMethod before any work if method is not registered.
	Dispatch(ctx context.Context, method string, in *domain.ChunkInput) ([]domain.RawChunk, error)

	// Has returns true if method is registered.
	Has(method string) bool

	// Methods returns all registered method names, sorted.
	Methods() []string
}
