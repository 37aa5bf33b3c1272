// Package general provides the built-in chunking methods for ordinary
// documents: naive, resume, paper, book, laws, manual, one, presentation,
// table, qa, tag and picture.
package general

import (
	"path/filepath"
	"strings"

	"github.com/custodia-labs/chunkflow/internal/chunkers/postag"
	"github.com/custodia-labs/chunkflow/internal/chunkers/tokenizer"
	"github.com/custodia-labs/chunkflow/internal/core/domain"
)

// DocFields returns the per-document keys attached to every chunk.
func DocFields(filename string) map[string]any {
	base := filepath.Base(filename)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	return map[string]any{
		domain.KeyDocName:     base,
		domain.KeyTitleTokens: tokenizer.Tokenize(title),
	}
}

// NewChunk builds a raw chunk from text that may carry position markers.
// Markers are lifted into page and position keys and removed from the
// content.
func NewChunk(text string, docFields map[string]any) domain.RawChunk {
	positions := postag.Positions(text)
	content := postag.Remove(text)

	c := domain.NewRawChunk(content, docFields)
	c[domain.KeyContentTokens] = tokenizer.Tokenize(content)
	if len(positions) > 0 {
		c[domain.KeyPageNumbers] = postag.Pages(positions)
		c[domain.KeyPositions] = postag.Tuples(positions)
	}
	return c
}

// NewTaggedChunk builds a raw chunk whose content keeps its position markers.
func NewTaggedChunk(text string, docFields map[string]any) domain.RawChunk {
	c := domain.NewRawChunk(text, docFields)
	c[domain.KeyContentTokens] = tokenizer.Tokenize(postag.Remove(text))
	if positions := postag.Positions(text); len(positions) > 0 {
		c[domain.KeyPageNumbers] = postag.Pages(positions)
	}
	return c
}

// newPageChunk builds a chunk for text known to come from one page.
func newPageChunk(text string, page int, docFields map[string]any) domain.RawChunk {
	c := NewChunk(text, docFields)
	if _, ok := c[domain.KeyPageNumbers]; !ok && page > 0 {
		c[domain.KeyPageNumbers] = []int{page}
	}
	return c
}
