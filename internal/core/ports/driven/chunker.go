package driven

import (
	"context"

	"github.com/custodia-labs/chunkflow/internal/core/domain"
)

// Chunker turns one document into an ordered sequence of raw chunks.
// There is one implementation per chunking method (naive, paper, email...).
type Chunker interface {
	// Name returns the method name the chunker is registered under.
	Name() string

	// Chunk extracts and groups the document's text.
	Chunk(ctx context.Context, in *domain.ChunkInput) ([]domain.RawChunk, error)
}

// Detagger strips the structural markers a chunker embeds in its output.
type Detagger interface {
	// Detag returns text with every structural marker removed.
	Detag(text string) string
}

// TaggingChunker is a single-pass chunker whose output carries structural
// markers, paired with the operation that removes them.
type TaggingChunker interface {
	Chunker
	Detagger
}

// EnvelopeEncoder converts a document into a synthetic email envelope.
type EnvelopeEncoder interface {
	// Encode returns the envelope's filename and bytes.
	Encode(ctx context.Context, in *domain.ChunkInput) (string, []byte, error)
}
