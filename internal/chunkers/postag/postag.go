// Package postag embeds and strips layout position markers in extracted text.
//
// A marker has the form "@@<page>\t<x0>\t<x1>\t<top>\t<bottom>##" and follows
// the text it locates. Pages are 1-based.
package postag

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// posPattern matches a five-field marker. Remove strips only these, so
// literal text such as "@@2024##" survives.
var posPattern = regexp.MustCompile(`@@([0-9]+)(?:-[0-9]+)*\t(-?[0-9.]+)\t(-?[0-9.]+)\t(-?[0-9.]+)\t(-?[0-9.]+)##`)

// Position locates a block of text on a page.
type Position struct {
	Page   int
	X0     float64
	X1     float64
	Top    float64
	Bottom float64
}

// Format renders p as a marker.
func Format(p Position) string {
	return fmt.Sprintf("@@%d\t%.1f\t%.1f\t%.1f\t%.1f##", p.Page, p.X0, p.X1, p.Top, p.Bottom)
}

// Annotate appends the marker for p to text.
func Annotate(text string, p Position) string {
	return text + Format(p)
}

// Remove strips every marker from text.
func Remove(text string) string {
	if !strings.Contains(text, "@@") {
		return text
	}
	return posPattern.ReplaceAllString(text, "")
}

// Positions returns the positions of every well-formed marker in text,
// in order of appearance.
func Positions(text string) []Position {
	matches := posPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	out := make([]Position, 0, len(matches))
	for _, m := range matches {
		page, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		var coords [4]float64
		ok := true
		for i := range coords {
			v, err := strconv.ParseFloat(m[i+2], 64)
			if err != nil {
				ok = false
				break
			}
			coords[i] = v
		}
		if !ok {
			continue
		}
		out = append(out, Position{Page: page, X0: coords[0], X1: coords[1], Top: coords[2], Bottom: coords[3]})
	}
	return out
}

// Pages returns the distinct pages referenced by positions, in first-seen order.
func Pages(positions []Position) []int {
	seen := make(map[int]bool, len(positions))
	var pages []int
	for _, p := range positions {
		if !seen[p.Page] {
			seen[p.Page] = true
			pages = append(pages, p.Page)
		}
	}
	return pages
}

// Tuples converts positions to [page, x0, x1, top, bottom] integer tuples.
func Tuples(positions []Position) [][]int {
	out := make([][]int, len(positions))
	for i, p := range positions {
		out[i] = []int{p.Page, int(p.X0), int(p.X1), int(p.Top), int(p.Bottom)}
	}
	return out
}
