package general

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/chunkflow/internal/chunkers/extract"
	"github.com/custodia-labs/chunkflow/internal/core/domain"
	"github.com/custodia-labs/chunkflow/internal/core/ports/driven"
)

var (
	_ driven.Chunker = (*Table)(nil)
	_ driven.Chunker = (*QA)(nil)
	_ driven.Chunker = (*Tag)(nil)
)

// tables returns the document's tables, or one table built from its
// tab-separated text lines when the format has no native tables.
func tables(doc *extract.Document) []extract.Table {
	if len(doc.Tables) > 0 {
		return doc.Tables
	}

	var rows [][]string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, strings.Split(line, "\t"))
	}
	if len(rows) == 0 {
		return nil
	}
	return []extract.Table{{Headers: rows[0], Rows: rows[1:]}}
}

// isHeaderRow reports whether the first cell names a column rather than data.
func isHeaderRow(row []string, names ...string) bool {
	if len(row) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(row[0]))
	for _, n := range names {
		if first == n {
			return true
		}
	}
	return false
}

// Table emits one chunk per data row, rendered as "header: value" pairs.
type Table struct{}

// NewTable creates the table chunker.
func NewTable() *Table {
	return &Table{}
}

// Name returns the method name.
func (t *Table) Name() string {
	return "table"
}

// Chunk extracts the document's tables row by row.
func (t *Table) Chunk(ctx context.Context, in *domain.ChunkInput) ([]domain.RawChunk, error) {
	in.ReportProgress(0.1, "Start to parse.")
	doc, err := extract.Extract(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}

	fields := DocFields(in.Filename)
	var chunks []domain.RawChunk
	for _, tbl := range tables(doc) {
		for _, row := range tbl.Rows {
			if text := renderRow(tbl.Headers, row); text != "" {
				chunks = append(chunks, NewChunk(text, fields))
			}
		}
	}
	in.ReportProgress(0.8, fmt.Sprintf("Finish chunking %d rows.", len(chunks)))
	return chunks, nil
}

func renderRow(headers, row []string) string {
	parts := make([]string, 0, len(row))
	for i, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		header := ""
		if i < len(headers) {
			header = strings.TrimSpace(headers[i])
		}
		if header == "" {
			header = fmt.Sprintf("column %d", i+1)
		}
		parts = append(parts, header+": "+cell)
	}
	return strings.Join(parts, "; ")
}

var (
	questionLine = regexp.MustCompile(`(?i)^\s*(q|question)\s*[:：]\s*`)
	answerLine   = regexp.MustCompile(`(?i)^\s*(a|answer)\s*[:：]\s*`)
)

// QA emits one chunk per question and answer pair.
type QA struct{}

// NewQA creates the question and answer chunker.
func NewQA() *QA {
	return &QA{}
}

// Name returns the method name.
func (q *QA) Name() string {
	return "qa"
}

// Chunk reads pairs from two-column tables, or from "Q:" and "A:" lines
// in plain text.
func (q *QA) Chunk(ctx context.Context, in *domain.ChunkInput) ([]domain.RawChunk, error) {
	in.ReportProgress(0.1, "Start to parse.")
	doc, err := extract.Extract(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("qa: %w", err)
	}

	var pairs [][2]string
	if len(doc.Tables) > 0 {
		pairs = tablePairs(doc.Tables)
	} else {
		pairs = textPairs(doc.Text())
	}

	fields := DocFields(in.Filename)
	chunks := make([]domain.RawChunk, 0, len(pairs))
	for _, p := range pairs {
		chunks = append(chunks, NewChunk("Question: "+p[0]+"\tAnswer: "+p[1], fields))
	}
	in.ReportProgress(0.8, fmt.Sprintf("Finish chunking %d pairs.", len(chunks)))
	return chunks, nil
}

func tablePairs(tbls []extract.Table) [][2]string {
	var pairs [][2]string
	for _, tbl := range tbls {
		rows := tbl.Rows
		if !isHeaderRow(tbl.Headers, "q", "question", "questions") {
			rows = append([][]string{tbl.Headers}, rows...)
		}
		for _, row := range rows {
			if len(row) < 2 {
				continue
			}
			question := strings.TrimSpace(row[0])
			answer := strings.TrimSpace(row[1])
			if question == "" || answer == "" {
				continue
			}
			pairs = append(pairs, [2]string{question, answer})
		}
	}
	return pairs
}

func textPairs(text string) [][2]string {
	var pairs [][2]string
	var question, answer []string
	inAnswer := false

	flush := func() {
		q := strings.TrimSpace(strings.Join(question, "\n"))
		a := strings.TrimSpace(strings.Join(answer, "\n"))
		if q != "" && a != "" {
			pairs = append(pairs, [2]string{q, a})
		}
		question, answer = nil, nil
		inAnswer = false
	}

	for _, line := range strings.Split(text, "\n") {
		switch {
		case questionLine.MatchString(line):
			flush()
			question = append(question, questionLine.ReplaceAllString(line, ""))
		case answerLine.MatchString(line):
			inAnswer = true
			answer = append(answer, answerLine.ReplaceAllString(line, ""))
		case inAnswer:
			answer = append(answer, line)
		case question != nil:
			question = append(question, line)
		}
	}
	flush()
	return pairs
}

// Tag emits one chunk per row with the row's tags under tag_kwd.
// The first column is the content, the second a comma separated tag list.
type Tag struct{}

// NewTag creates the tag chunker.
func NewTag() *Tag {
	return &Tag{}
}

// Name returns the method name.
func (t *Tag) Name() string {
	return "tag"
}

// Chunk extracts tagged rows.
func (t *Tag) Chunk(ctx context.Context, in *domain.ChunkInput) ([]domain.RawChunk, error) {
	in.ReportProgress(0.1, "Start to parse.")
	doc, err := extract.Extract(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("tag: %w", err)
	}

	fields := DocFields(in.Filename)
	var chunks []domain.RawChunk
	for _, tbl := range tables(doc) {
		rows := tbl.Rows
		if !isHeaderRow(tbl.Headers, "content", "text", "question") {
			rows = append([][]string{tbl.Headers}, rows...)
		}
		for _, row := range rows {
			if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
				continue
			}
			c := NewChunk(strings.TrimSpace(row[0]), fields)
			if len(row) > 1 {
				c[domain.KeyTags] = splitTags(row[1])
			}
			chunks = append(chunks, c)
		}
	}
	in.ReportProgress(0.8, fmt.Sprintf("Finish chunking %d rows.", len(chunks)))
	return chunks, nil
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' || r == '，' }) {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
