package email

import (
	"context"
	"fmt"

	"github.com/custodia-labs/chunkflow/internal/core/domain"
	"github.com/custodia-labs/chunkflow/internal/core/ports/driven"
	"github.com/custodia-labs/chunkflow/internal/logger"
)

// Recursor chunks the attachments of a message with a general chunker.
// A failing attachment is logged and skipped; it never fails the message.
type Recursor struct {
	chunker driven.Chunker
	log     *logger.Logger
}

// NewRecursor creates a recursor that chunks every attachment with chunker.
func NewRecursor(chunker driven.Chunker, log *logger.Logger) *Recursor {
	if log == nil {
		log = logger.Default()
	}
	return &Recursor{chunker: chunker, log: log}
}

// Chunk returns the chunks of every attachment in encounter order.
// Only a cancelled context stops the walk early.
func (r *Recursor) Chunk(ctx context.Context, attachments []*Part, parent *domain.ChunkInput) ([]domain.RawChunk, error) {
	var out []domain.RawChunk
	for i, att := range attachments {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		chunks, err := r.chunkOne(ctx, att, parent)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			r.log.Warn("Skipping attachment %d (%s): %v", i+1, att.Filename, err)
			continue
		}
		r.log.Debug("Attachment %s: %d chunks", att.Filename, len(chunks))
		out = append(out, chunks...)
	}
	return out, nil
}

func (r *Recursor) chunkOne(ctx context.Context, att *Part, parent *domain.ChunkInput) ([]domain.RawChunk, error) {
	payload, err := att.Decode()
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", domain.ErrAttachmentChunk, att.Filename, err)
	}

	in := &domain.ChunkInput{
		Filename: att.Filename,
		Content:  payload,
		FromPage: 0,
		ToPage:   domain.DefaultToPage,
		Language: parent.Language,
		Config:   parent.Config,
	}
	chunks, err := r.chunker.Chunk(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", domain.ErrAttachmentChunk, att.Filename, err)
	}
	return chunks, nil
}
