package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/chunkflow/internal/core/domain"
	"github.com/custodia-labs/chunkflow/internal/core/ports/driven"
	"github.com/custodia-labs/chunkflow/internal/logger"
)

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// Chunker is the "email" method: the envelope's main content followed by
// the chunks of its attachments.
type Chunker struct {
	attachments *Recursor
	log         *logger.Logger
}

// NewChunker creates the email chunker. Attachments are chunked with
// attachmentChunker.
func NewChunker(attachmentChunker driven.Chunker, log *logger.Logger) *Chunker {
	if log == nil {
		log = logger.Default()
	}
	return &Chunker{
		attachments: NewRecursor(attachmentChunker, log),
		log:         log,
	}
}

// Name returns the method name.
func (c *Chunker) Name() string {
	return "email"
}

// Chunk decodes the envelope in in.Content. The message fails with
// domain.ErrEmptyDocument only when neither its body nor any attachment
// yields a chunk.
func (c *Chunker) Chunk(ctx context.Context, in *domain.ChunkInput) ([]domain.RawChunk, error) {
	in.ReportProgress(0.1, "Start to parse.")
	m, err := Parse(in.Content)
	if err != nil {
		return nil, fmt.Errorf("email: %w", err)
	}
	if m.Truncated != nil {
		c.log.Warn("%s: message is truncated, keeping %d parts read before: %v", in.Filename, len(m.Parts), m.Truncated)
	}

	chunks, err := Decode(m, in.Filename, in.Config)
	if err != nil && !errors.Is(err, domain.ErrEmptyDocument) {
		return nil, fmt.Errorf("email: %w", err)
	}
	bodyErr := err
	in.ReportProgress(0.5, fmt.Sprintf("Finish parsing body into %d groups.", len(chunks)))

	atts := m.Attachments()
	if len(atts) > 0 {
		extra, err := c.attachments.Chunk(ctx, atts, in)
		if err != nil {
			return nil, fmt.Errorf("email: %w", err)
		}
		chunks = append(chunks, extra...)
		in.ReportProgress(0.8, fmt.Sprintf("Finish chunking %d attachments.", len(atts)))
	}

	if len(chunks) == 0 {
		if bodyErr != nil {
			return nil, fmt.Errorf("email: %w", bodyErr)
		}
		return nil, fmt.Errorf("email: %s: %w", in.Filename, domain.ErrEmptyDocument)
	}
	return chunks, nil
}
