// Package enricher normalises raw chunks and attaches content-addressable
// metadata to them.
package enricher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/chunkflow/internal/core/domain"
	"github.com/custodia-labs/chunkflow/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// Processor turns raw chunks into enriched chunks.
// Chunks whose content is empty after trimming are dropped and the
// remaining chunks are numbered densely from zero.
type Processor struct {
	now    func() time.Time
	region string
	bucket string
}

// Option configures the enricher.
type Option func(*Processor)

// WithClock sets the clock used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// WithDefaultLocation sets the region and bucket used when a source
// context leaves them empty.
func WithDefaultLocation(region, bucket string) Option {
	return func(p *Processor) {
		p.region = region
		p.bucket = bucket
	}
}

// New creates a new enricher with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "enricher"
}

// Process enriches chunks for the document stored under src.SourceKey.
func (p *Processor) Process(ctx context.Context, src domain.SourceContext, chunks []domain.RawChunk) ([]domain.EnrichedChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if src.Region == "" {
		src.Region = p.region
	}
	if src.Bucket == "" {
		src.Bucket = p.bucket
	}
	return p.Enrich(chunks, src), nil
}

// Enrich is the context-free form of Process.
func (p *Processor) Enrich(chunks []domain.RawChunk, src domain.SourceContext) []domain.EnrichedChunk {
	createdAt := p.now().UnixMilli()
	url := FileURL(src)
	importID := KnowledgeBaseImportID(src.SourceKey)

	out := make([]domain.EnrichedChunk, 0, len(chunks))
	for _, c := range chunks {
		content := Content(c)
		if strings.TrimSpace(content) == "" {
			continue
		}

		fileName, ok := c.DocName()
		if !ok {
			fileName = lastSegment(src.SourceKey)
		}

		out = append(out, domain.EnrichedChunk{
			Content:         content,
			CreatedAtMillis: createdAt,
			Metadata: domain.ChunkMetadata{
				FileName:              fileName,
				FileURL:               url,
				CharacterCount:        utf8.RuneCountInString(content),
				SequenceID:            len(out),
				ContentHash:           Hash(content),
				WordCount:             len(strings.Fields(content)),
				IsActive:              true,
				KnowledgeBaseImportID: importID,
			},
		})
	}
	return out
}

// Content returns the chunk text, falling back to its joined tokens.
func Content(c domain.RawChunk) string {
	if s := c.ContentWithWeight(); s != "" {
		return s
	}
	return strings.Join(c.ContentTokens(), " ")
}

// Hash returns the hex SHA-256 digest of content.
func Hash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// FileURL builds the public object URL for src. Missing parts produce a
// malformed URL rather than an error.
func FileURL(src domain.SourceContext) string {
	return fmt.Sprintf("https://s3.%s.amazonaws.com/%s/%s", src.Region, src.Bucket, src.SourceKey)
}

// KnowledgeBaseImportID returns the second-to-last segment of key,
// or "" when key has a single segment.
func KnowledgeBaseImportID(key string) string {
	segments := strings.Split(key, "/")
	if len(segments) < 2 {
		return ""
	}
	return segments[len(segments)-2]
}

func lastSegment(key string) string {
	segments := strings.Split(key, "/")
	return segments[len(segments)-1]
}
