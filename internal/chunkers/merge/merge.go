// Package merge splits text into delimiter-terminated segments and
// groups them under a token budget.
package merge

import (
	"strings"

	"github.com/custodia-labs/chunkflow/internal/chunkers/tokenizer"
)

// Segment splits text after every rune found in delimiters.
// Each segment keeps its trailing delimiter, so joining the segments
// with "" reproduces text exactly. Empty text yields no segments.
func Segment(text, delimiters string) []string {
	if text == "" {
		return nil
	}
	if delimiters == "" {
		return []string{text}
	}

	var segments []string
	start := 0
	for i, r := range text {
		if strings.ContainsRune(delimiters, r) {
			end := i + len(string(r))
			segments = append(segments, text[start:end])
			start = end
		}
	}
	if start < len(text) {
		segments = append(segments, text[start:])
	}
	return segments
}

// BoundedMerge concatenates consecutive segments into groups of at most
// budget tokens. A segment that alone exceeds the budget forms its own
// group. Order is preserved and no segment is split or dropped.
func BoundedMerge(segments []string, budget int) []string {
	if len(segments) == 0 {
		return nil
	}
	if budget < 1 {
		budget = 1
	}

	var groups []string
	var current strings.Builder
	currentTokens := 0

	for _, seg := range segments {
		n := tokenizer.Count(seg)
		if current.Len() > 0 && currentTokens+n > budget {
			groups = append(groups, current.String())
			current.Reset()
			currentTokens = 0
		}
		current.WriteString(seg)
		currentTokens += n
	}
	if current.Len() > 0 {
		groups = append(groups, current.String())
	}
	return groups
}

// Sections segments text and merges it under budget, dropping groups
// that are empty after trimming.
func Sections(text, delimiters string, budget int) []string {
	groups := BoundedMerge(Segment(text, delimiters), budget)
	out := groups[:0]
	for _, g := range groups {
		if strings.TrimSpace(g) != "" {
			out = append(out, g)
		}
	}
	return out
}
