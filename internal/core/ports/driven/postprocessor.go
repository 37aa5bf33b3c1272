package driven

import (
	"context"

	"github.com/custodia-labs/chunkflow/internal/core/domain"
)

// PostProcessor turns raw chunks into enriched chunks.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process normalises and enriches the chunks produced for one source.
	Process(ctx context.Context, src domain.SourceContext, chunks []domain.RawChunk) ([]domain.EnrichedChunk, error)
}
