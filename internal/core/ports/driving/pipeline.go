package driving

import (
	"context"

	"github.com/custodia-labs/chunkflow/internal/core/domain"
)

// PipelineService turns documents into enriched chunks.
type PipelineService interface {
	// Process runs one document through extraction, dispatch and enrichment.
	Process(ctx context.Context, doc domain.SourceDocument, opts ProcessOptions) ([]domain.EnrichedChunk, error)

	// Handle serves one inbound request. It never returns an error:
	// any failure is converted into the response's Failure.
	Handle(ctx context.Context, req domain.ProcessRequest) domain.ProcessResponse

	// Methods returns the chunking methods that can be requested.
	Methods() []string
}

// ProcessOptions tunes a single pipeline invocation.
// Zero values select the configured defaults.
type ProcessOptions struct {
	// Method is the chunking method.
	Method string

	// TokenBudget is the maximum tokens per chunk group.
	TokenBudget int

	// LayoutMode is "DeepDOC" or "PlainText".
	LayoutMode string

	// SourceKey is the storage key used for chunk metadata.
	// Defaults to the document's filename.
	SourceKey string

	// OutputFile, if set, receives the raw chunks as JSON.
	OutputFile string

	// Progress receives progress events; nil discards them.
	Progress domain.ProgressSink
}
