package general

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/chunkflow/internal/chunkers/extract"
	"github.com/custodia-labs/chunkflow/internal/core/domain"
	"github.com/custodia-labs/chunkflow/internal/core/ports/driven"
)

var (
	_ driven.Chunker = (*Presentation)(nil)
	_ driven.Chunker = (*Picture)(nil)
)

// Presentation emits one chunk per page or slide.
type Presentation struct{}

// NewPresentation creates the presentation chunker.
func NewPresentation() *Presentation {
	return &Presentation{}
}

// Name returns the method name.
func (p *Presentation) Name() string {
	return "presentation"
}

// Chunk extracts the document and returns its non-empty pages.
func (p *Presentation) Chunk(ctx context.Context, in *domain.ChunkInput) ([]domain.RawChunk, error) {
	in.ReportProgress(0.1, "Start to parse.")
	doc, err := extract.Extract(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("presentation: %w", err)
	}

	fields := DocFields(in.Filename)
	var chunks []domain.RawChunk
	for _, page := range doc.Pages() {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		chunks = append(chunks, newPageChunk(page.Text, page.Page, fields))
	}
	in.ReportProgress(0.8, fmt.Sprintf("Finish chunking %d pages.", len(chunks)))
	return chunks, nil
}

// Picture recognises the text in an image.
type Picture struct{}

// NewPicture creates the picture chunker.
func NewPicture() *Picture {
	return &Picture{}
}

// Name returns the method name.
func (p *Picture) Name() string {
	return "picture"
}

// Chunk runs OCR over an image and returns its text as one chunk.
// Non-image documents are rejected with domain.ErrUnsupportedType.
func (p *Picture) Chunk(ctx context.Context, in *domain.ChunkInput) ([]domain.RawChunk, error) {
	if kind := extract.Classify(in.Filename, in.Content); kind != extract.KindImage {
		return nil, fmt.Errorf("picture: %w: %s is %s, not an image", domain.ErrUnsupportedType, in.Filename, kind)
	}

	in.ReportProgress(0.1, "Start to recognise.")
	doc, err := extract.Extract(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("picture: %w", err)
	}

	text := strings.TrimSpace(doc.Text())
	if text == "" {
		return nil, nil
	}
	in.ReportProgress(0.8, "Finish recognition.")
	return []domain.RawChunk{newPageChunk(text, 1, DocFields(in.Filename))}, nil
}
