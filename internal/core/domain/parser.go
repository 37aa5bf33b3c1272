package domain

import (
	"fmt"
	"strings"
)

// Parser defaults.
const (
	// DefaultMethod is the chunking method used when none is given.
	DefaultMethod = "naive"

	// DefaultChunkTokenBudget is the default maximum tokens per chunk group.
	DefaultChunkTokenBudget = 512

	// DefaultDelimiter lists the characters segments are split after.
	DefaultDelimiter = "\n!?。；！？"

	// DefaultLanguage is passed to capabilities when none is configured.
	DefaultLanguage = "English"

	// DefaultToPage is the exclusive upper page bound meaning "all pages".
	DefaultToPage = 100000
)

// LayoutMode selects how capabilities recognise document layout.
type LayoutMode string

// Available layout modes.
const (
	// LayoutDeepDOC uses layout-aware extraction.
	LayoutDeepDOC LayoutMode = "DeepDOC"

	// LayoutPlainText extracts text without layout analysis.
	LayoutPlainText LayoutMode = "PlainText"
)

// IsValid returns true if the layout mode is recognised.
func (m LayoutMode) IsValid() bool {
	switch m {
	case LayoutDeepDOC, LayoutPlainText:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m LayoutMode) String() string {
	return string(m)
}

// ParseLayoutMode resolves a layout string, defaulting to DeepDOC when empty.
// Matching is case-insensitive.
func ParseLayoutMode(s string) (LayoutMode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return LayoutDeepDOC, nil
	}
	for _, m := range []LayoutMode{LayoutDeepDOC, LayoutPlainText} {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: layout mode %q", ErrInvalidInput, s)
}

// ParserConfig is passed by value to every chunker capability.
type ParserConfig struct {
	// ChunkTokenBudget is the maximum number of tokens per merged group.
	ChunkTokenBudget int

	// Delimiter lists the characters segments are split after.
	Delimiter string

	// LayoutMode selects layout recognition.
	LayoutMode LayoutMode
}

// DefaultParserConfig returns the parser configuration defaults.
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		ChunkTokenBudget: DefaultChunkTokenBudget,
		Delimiter:        DefaultDelimiter,
		LayoutMode:       LayoutDeepDOC,
	}
}

// WithDefaults fills zero fields with defaults.
func (c ParserConfig) WithDefaults() ParserConfig {
	if c.ChunkTokenBudget < 1 {
		c.ChunkTokenBudget = DefaultChunkTokenBudget
	}
	if c.Delimiter == "" {
		c.Delimiter = DefaultDelimiter
	}
	if c.LayoutMode == "" {
		c.LayoutMode = LayoutDeepDOC
	}
	return c
}

// SourceDocument is the document handed to the pipeline.
type SourceDocument struct {
	// Filename is the original file name; its extension selects the reader.
	Filename string

	// Content is the raw document bytes.
	Content []byte

	// MethodHint is an optional chunking method suggested by the caller.
	MethodHint string
}

// ChunkInput is the argument to a chunker capability.
type ChunkInput struct {
	Filename string
	Content  []byte

	// FromPage is the first page to read (0-based, inclusive).
	FromPage int

	// ToPage is the page to stop at (0-based, exclusive).
	ToPage int

	Language string
	Progress ProgressSink
	Config   ParserConfig
}

// ReportProgress forwards a progress event to the input's sink, if any.
func (in *ChunkInput) ReportProgress(fraction float64, msg string) {
	if in.Progress != nil {
		in.Progress.Report(Progressf(fraction, msg))
	}
}
