package general

import (
	"context"
	"fmt"

	"github.com/custodia-labs/chunkflow/internal/chunkers/extract"
	"github.com/custodia-labs/chunkflow/internal/chunkers/merge"
	"github.com/custodia-labs/chunkflow/internal/core/domain"
	"github.com/custodia-labs/chunkflow/internal/core/ports/driven"
)

// Ensure Naive implements the interface.
var _ driven.Chunker = (*Naive)(nil)

// Naive segments the whole document on delimiters and merges the segments
// under the token budget. It is registered as "naive" and "resume".
type Naive struct {
	name string
}

// NewNaive creates the naive chunker.
func NewNaive() *Naive {
	return &Naive{name: "naive"}
}

// NewResume creates the resume chunker. Resumes are short enough that
// the naive strategy applies unchanged.
func NewResume() *Naive {
	return &Naive{name: "resume"}
}

// Name returns the method name.
func (n *Naive) Name() string {
	return n.name
}

// Chunk extracts the document and returns budget-bounded groups.
func (n *Naive) Chunk(ctx context.Context, in *domain.ChunkInput) ([]domain.RawChunk, error) {
	in.ReportProgress(0.1, "Start to parse.")
	doc, err := extract.Extract(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", n.name, err)
	}
	in.ReportProgress(0.6, "Finish parsing.")

	cfg := in.Config.WithDefaults()
	fields := DocFields(in.Filename)
	sections := merge.Sections(doc.TaggedText(), cfg.Delimiter, cfg.ChunkTokenBudget)

	chunks := make([]domain.RawChunk, 0, len(sections))
	for _, s := range sections {
		chunks = append(chunks, NewChunk(s, fields))
	}
	in.ReportProgress(0.8, fmt.Sprintf("Finish chunking into %d groups.", len(chunks)))
	return chunks, nil
}
