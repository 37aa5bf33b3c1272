package domain

import (
	"fmt"
	"strings"
)

// Recognised RawChunk keys.
const (
	// KeyContentWithWeight holds the chunk text.
	KeyContentWithWeight = "content_with_weight"

	// KeyContentTokens holds the tokenized chunk text.
	KeyContentTokens = "content_tks"

	// KeyDocName holds the originating document name.
	KeyDocName = "docnm_kwd"

	// KeyTitleTokens holds the tokenized document title.
	KeyTitleTokens = "title_tks"

	// KeyPageNumbers holds the pages a chunk was found on.
	KeyPageNumbers = "page_num_int"

	// KeyPositions holds [page, x0, x1, top, bottom] tuples.
	KeyPositions = "position_int"

	// KeyTags holds tag keywords for the tag method.
	KeyTags = "tag_kwd"
)

// RawChunk is the opaque mapping produced by a chunker capability.
// Only a few keys are interpreted by the pipeline; the rest pass through.
type RawChunk map[string]any

// NewRawChunk creates a chunk carrying content and the document fields.
func NewRawChunk(content string, docFields map[string]any) RawChunk {
	c := make(RawChunk, len(docFields)+2)
	for k, v := range docFields {
		c[k] = v
	}
	c[KeyContentWithWeight] = content
	return c
}

// ContentWithWeight returns the chunk text, or "" if absent.
func (c RawChunk) ContentWithWeight() string {
	s, _ := c[KeyContentWithWeight].(string)
	return s
}

// ContentTokens returns the tokenized text.
// Both []string and []any (as decoded from JSON) are accepted.
func (c RawChunk) ContentTokens() []string {
	switch v := c[KeyContentTokens].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return strings.Fields(v)
	default:
		return nil
	}
}

// DocName returns the document name and whether it is present.
func (c RawChunk) DocName() (string, bool) {
	s, ok := c[KeyDocName].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Serializable returns a copy safe for JSON encoding.
// Values that are not plain JSON types are converted to strings.
func (c RawChunk) Serializable() map[string]any {
	out := make(map[string]any, len(c))
	for k, v := range c {
		switch v.(type) {
		case nil, string, bool, int, int64, float64, []string, []int, [][]int, []any, map[string]any:
			out[k] = v
		default:
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}

// EnrichedChunk is a retained chunk with its content-addressable metadata.
type EnrichedChunk struct {
	// Content is the non-empty chunk text.
	Content string `json:"content"`

	// CreatedAtMillis is the enrichment time in Unix milliseconds.
	CreatedAtMillis int64 `json:"created"`

	// Metadata describes the chunk's origin and identity.
	Metadata ChunkMetadata `json:"metaData"`
}

// ChunkMetadata carries positional and addressing metadata for a chunk.
type ChunkMetadata struct {
	FileName              string `json:"fileName"`
	FileURL               string `json:"file"`
	CharacterCount        int    `json:"characters"`
	SequenceID            int    `json:"id"`
	ContentHash           string `json:"hash"`
	WordCount             int    `json:"words"`
	IsActive              bool   `json:"isActive"`
	KnowledgeBaseImportID string `json:"knowledgeBaseImportId"`
}

// SourceContext locates the stored document a set of chunks came from.
type SourceContext struct {
	// SourceKey is the object key in the storage bucket.
	SourceKey string

	// Region is the storage region identifier.
	Region string

	// Bucket is the storage bucket identifier.
	Bucket string
}
