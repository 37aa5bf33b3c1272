package general

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/chunkflow/internal/chunkers/extract"
	"github.com/custodia-labs/chunkflow/internal/chunkers/merge"
	"github.com/custodia-labs/chunkflow/internal/chunkers/postag"
	"github.com/custodia-labs/chunkflow/internal/core/domain"
	"github.com/custodia-labs/chunkflow/internal/core/ports/driven"
)

// Ensure Sectioned implements the interface.
var _ driven.Chunker = (*Sectioned)(nil)

// Heading patterns per document family. Lines are matched after position
// markers are removed and surrounding whitespace trimmed.
var (
	paperHeadings = regexp.MustCompile(`(?i)^((abstract|introduction|background|related work|methods?|methodology|experiments?|evaluation|results|discussion|conclusions?|references|acknowledge?ments?|appendix)\b|\d+(\.\d+)*\.?\s+\p{Lu})`)
	bookHeadings  = regexp.MustCompile(`(?i)^((chapter|part|book|volume|prologue|epilogue)\b|第[一二三四五六七八九十百千零\d]+[章节卷部回])`)
	lawHeadings   = regexp.MustCompile(`(?i)^((article|section|chapter|title|part)\s+[\divxlc]+\b|§\s*\d+|第[一二三四五六七八九十百千零\d]+[条章编节])`)
	manualHeads   = regexp.MustCompile(`^(#{1,6}\s+\S|\d+(\.\d+)*\.?\s+\S)`)
)

// Sectioned starts a new group at every heading line and merges the
// segments of each section under the token budget. Sections never share
// a group.
type Sectioned struct {
	name     string
	headings *regexp.Regexp
}

// NewPaper creates the chunker for academic papers.
func NewPaper() *Sectioned {
	return &Sectioned{name: "paper", headings: paperHeadings}
}

// NewBook creates the chunker for books.
func NewBook() *Sectioned {
	return &Sectioned{name: "book", headings: bookHeadings}
}

// NewLaws creates the chunker for legal texts.
func NewLaws() *Sectioned {
	return &Sectioned{name: "laws", headings: lawHeadings}
}

// NewManual creates the chunker for manuals.
func NewManual() *Sectioned {
	return &Sectioned{name: "manual", headings: manualHeads}
}

// Name returns the method name.
func (s *Sectioned) Name() string {
	return s.name
}

// Chunk extracts the document and groups it section by section.
func (s *Sectioned) Chunk(ctx context.Context, in *domain.ChunkInput) ([]domain.RawChunk, error) {
	in.ReportProgress(0.1, "Start to parse.")
	doc, err := extract.Extract(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	in.ReportProgress(0.6, "Finish parsing.")

	cfg := in.Config.WithDefaults()
	fields := DocFields(in.Filename)

	var chunks []domain.RawChunk
	for _, section := range s.split(doc.TaggedText()) {
		for _, group := range merge.Sections(section, cfg.Delimiter, cfg.ChunkTokenBudget) {
			chunks = append(chunks, NewChunk(group, fields))
		}
	}
	in.ReportProgress(0.8, fmt.Sprintf("Finish chunking into %d groups.", len(chunks)))
	return chunks, nil
}

// split cuts text before every heading line. Concatenating the sections
// reproduces text.
func (s *Sectioned) split(text string) []string {
	lines := strings.SplitAfter(text, "\n")
	var sections []string
	var current strings.Builder
	for _, line := range lines {
		if s.IsHeading(line) && current.Len() > 0 {
			sections = append(sections, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		sections = append(sections, current.String())
	}
	return sections
}

// IsHeading returns true if line opens a new section.
func (s *Sectioned) IsHeading(line string) bool {
	line = strings.TrimSpace(postag.Remove(line))
	if line == "" || len([]rune(line)) > 120 {
		return false
	}
	return s.headings.MatchString(line)
}
