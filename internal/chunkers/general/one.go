package general

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/chunkflow/internal/chunkers/extract"
	"github.com/custodia-labs/chunkflow/internal/chunkers/postag"
	"github.com/custodia-labs/chunkflow/internal/core/domain"
	"github.com/custodia-labs/chunkflow/internal/core/ports/driven"
)

// Ensure One implements the interface.
var _ driven.TaggingChunker = (*One)(nil)

// One returns the whole document as a single chunk. Text whose layout is
// known carries position markers, which Detag removes.
type One struct{}

// NewOne creates the single-chunk chunker.
func NewOne() *One {
	return &One{}
}

// Name returns the method name.
func (o *One) Name() string {
	return "one"
}

// Chunk extracts the document as one tagged chunk.
// A document with no text yields no chunks.
func (o *One) Chunk(ctx context.Context, in *domain.ChunkInput) ([]domain.RawChunk, error) {
	in.ReportProgress(0.1, "Start to parse.")
	doc, err := extract.Extract(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("one: %w", err)
	}
	in.ReportProgress(0.8, "Finish parsing.")

	text := doc.TaggedText()
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return []domain.RawChunk{NewTaggedChunk(text, DocFields(in.Filename))}, nil
}

// Detag removes position markers from text produced by Chunk.
func (o *One) Detag(text string) string {
	return postag.Remove(text)
}
