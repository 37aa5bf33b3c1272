// Package extract turns document bytes into page-ordered blocks of text.
//
// Office and PDF formats are read with tabula from a scoped temporary file;
// text formats are decoded directly. Images go through tabula's OCR client,
// which is only functional in binaries built with the "ocr" tag.
package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/tsawler/tabula"
	"github.com/tsawler/tabula/epubdoc"
	"github.com/tsawler/tabula/format"
	"github.com/tsawler/tabula/htmldoc"
	"github.com/tsawler/tabula/ocr"
	"github.com/tsawler/tabula/pptx"
	"github.com/tsawler/tabula/xlsx"
	"golang.org/x/text/encoding/charmap"

	"github.com/custodia-labs/chunkflow/internal/chunkers/htmltext"
	"github.com/custodia-labs/chunkflow/internal/chunkers/postag"
	"github.com/custodia-labs/chunkflow/internal/core/domain"
)

// Kind classifies a document by how it is read.
type Kind string

// Document kinds.
const (
	KindPDF          Kind = "pdf"
	KindWord         Kind = "word"
	KindSpreadsheet  Kind = "spreadsheet"
	KindPresentation Kind = "presentation"
	KindEPUB         Kind = "epub"
	KindHTML         Kind = "html"
	KindDelimited    Kind = "delimited"
	KindImage        Kind = "image"
	KindText         Kind = "text"
)

// Block is a run of text from one page.
type Block struct {
	// Page is 1-based.
	Page int

	Text string

	// Position is set when the layout of the block is known.
	Position *postag.Position
}

// Table is a header row plus data rows.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// Document is the extracted content of one file.
type Document struct {
	Kind   Kind
	Blocks []Block
	Tables []Table
}

// Text joins all block texts with newlines.
func (d *Document) Text() string {
	parts := make([]string, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		if b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// TaggedText joins block texts with newlines, each followed by its
// position marker when one is known.
func (d *Document) TaggedText() string {
	parts := make([]string, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		if b.Text == "" {
			continue
		}
		if b.Position != nil {
			parts = append(parts, postag.Annotate(b.Text, *b.Position))
			continue
		}
		parts = append(parts, b.Text)
	}
	return strings.Join(parts, "\n")
}

// Pages groups block texts by page, in page order.
func (d *Document) Pages() []Block {
	var pages []Block
	for _, b := range d.Blocks {
		if n := len(pages); n > 0 && pages[n-1].Page == b.Page {
			pages[n-1].Text += "\n" + b.Text
			continue
		}
		pages = append(pages, Block{Page: b.Page, Text: b.Text})
	}
	return pages
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// Classify returns the kind of a file from its name, falling back to
// content sniffing when the extension is not recognised.
func Classify(filename string, content []byte) Kind {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case ext == ".epub":
		return KindEPUB
	case ext == ".csv" || ext == ".tsv":
		return KindDelimited
	case ext == ".htm" || ext == ".xhtml":
		return KindHTML
	case imageExts[ext]:
		return KindImage
	}

	f := format.Detect(filename)
	if f == format.Unknown {
		f = format.DetectFromMagic(content)
	}
	if f == format.Unknown && bytes.HasPrefix(content, []byte("PK\x03\x04")) {
		if zf, err := format.DetectFromReader(bytes.NewReader(content), int64(len(content))); err == nil {
			f = zf
		}
	}
	switch f {
	case format.PDF:
		return KindPDF
	case format.DOCX, format.ODT:
		return KindWord
	case format.XLSX:
		return KindSpreadsheet
	case format.PPTX:
		return KindPresentation
	case format.HTML:
		return KindHTML
	}
	return KindText
}

// Extract reads the document in in.Content. Pages outside
// [in.FromPage, in.ToPage) are skipped for paged formats.
func Extract(ctx context.Context, in *domain.ChunkInput) (*Document, error) {
	if len(in.Content) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrInvalidInput, in.Filename)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kind := Classify(in.Filename, in.Content)
	var (
		doc *Document
		err error
	)
	switch kind {
	case KindPDF, KindWord, KindSpreadsheet, KindPresentation:
		doc, err = withTempFile(in, func(path string) (*Document, error) {
			return extractFile(ctx, kind, path, in)
		})
	case KindEPUB:
		doc, err = extractEPUB(in)
	case KindHTML:
		doc, err = extractHTML(in.Content)
	case KindDelimited:
		doc, err = extractDelimited(in.Filename, in.Content)
	case KindImage:
		doc, err = extractImage(in)
	default:
		doc = &Document{Blocks: []Block{{Page: 1, Text: DecodeText(in.Content)}}}
	}
	if err != nil {
		return nil, err
	}
	doc.Kind = kind
	return doc, nil
}

// withTempFile writes the input to a temporary file that is removed on return.
func withTempFile(in *domain.ChunkInput, fn func(path string) (*Document, error)) (*Document, error) {
	f, err := os.CreateTemp("", "chunkflow-*"+strings.ToLower(filepath.Ext(in.Filename)))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(in.Content); err != nil {
		f.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}
	return fn(path)
}

func extractFile(ctx context.Context, kind Kind, path string, in *domain.ChunkInput) (*Document, error) {
	switch kind {
	case KindPDF:
		return extractPDF(ctx, path, in)
	case KindWord:
		text, _, err := tabula.Open(path).Text()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrUnsupportedType, in.Filename, err)
		}
		return &Document{Blocks: []Block{{Page: 1, Text: text}}}, nil
	case KindSpreadsheet:
		return extractSpreadsheet(path, in)
	case KindPresentation:
		return extractPresentation(path, in)
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, in.Filename)
}

func extractPDF(ctx context.Context, path string, in *domain.ChunkInput) (*Document, error) {
	ext := tabula.Open(path)
	count, err := ext.PageCount()
	ext.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUnsupportedType, in.Filename, err)
	}

	from, to := pageWindow(in.FromPage, in.ToPage, count)
	doc := &Document{}
	for i := from; i < to; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := i + 1

		if in.Config.LayoutMode == domain.LayoutPlainText {
			text, _, err := tabula.Open(path).Pages(page).Text()
			if err != nil {
				return nil, fmt.Errorf("page %d: %w", page, err)
			}
			doc.Blocks = append(doc.Blocks, Block{Page: page, Text: text})
		} else {
			paras, err := tabula.Open(path).Pages(page).Paragraphs()
			if err != nil {
				return nil, fmt.Errorf("page %d: %w", page, err)
			}
			for _, p := range paras {
				text := strings.TrimSpace(p.Text)
				if text == "" {
					continue
				}
				doc.Blocks = append(doc.Blocks, Block{
					Page: page,
					Text: text,
					Position: &postag.Position{
						Page:   page,
						X0:     p.BBox.X,
						X1:     p.BBox.X + p.BBox.Width,
						Top:    p.BBox.Y + p.BBox.Height,
						Bottom: p.BBox.Y,
					},
				})
			}
		}
		in.ReportProgress(float64(i-from+1)/float64(to-from), fmt.Sprintf("Page %d/%d extracted.", page, to))
	}
	return doc, nil
}

func extractSpreadsheet(path string, in *domain.ChunkInput) (*Document, error) {
	r, err := xlsx.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUnsupportedType, in.Filename, err)
	}
	defer r.Close()

	doc := &Document{}
	tables := r.Tables()
	from, to := pageWindow(in.FromPage, in.ToPage, len(tables))
	for i := from; i < to; i++ {
		t := tables[i]
		doc.Tables = append(doc.Tables, Table{Name: t.Name, Headers: t.Headers, Rows: t.Rows})
		doc.Blocks = append(doc.Blocks, Block{Page: i + 1, Text: strings.TrimRight(t.ToText(), "\n")})
	}
	return doc, nil
}

func extractPresentation(path string, in *domain.ChunkInput) (*Document, error) {
	r, err := pptx.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUnsupportedType, in.Filename, err)
	}
	defer r.Close()

	doc := &Document{}
	from, to := pageWindow(in.FromPage, in.ToPage, r.SlideCount())
	for i := from; i < to; i++ {
		slide, err := r.Slide(i)
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", i+1, err)
		}
		doc.Blocks = append(doc.Blocks, Block{Page: i + 1, Text: strings.TrimSpace(slide.GetText())})
	}
	return doc, nil
}

func extractEPUB(in *domain.ChunkInput) (*Document, error) {
	r, err := epubdoc.OpenReader(bytes.NewReader(in.Content), int64(len(in.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUnsupportedType, in.Filename, err)
	}
	defer r.Close()

	doc := &Document{}
	chapters := r.Chapters()
	from, to := pageWindow(in.FromPage, in.ToPage, len(chapters))
	for i := from; i < to; i++ {
		hr, err := htmldoc.OpenReader(bytes.NewReader(chapters[i].Content))
		if err != nil {
			continue
		}
		text, err := hr.Text()
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			doc.Blocks = append(doc.Blocks, Block{Page: i + 1, Text: text})
		}
	}
	return doc, nil
}

func extractHTML(content []byte) (*Document, error) {
	text, err := htmltext.Render(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedType, err)
	}
	return &Document{Blocks: []Block{{Page: 1, Text: text}}}, nil
}

func extractDelimited(filename string, content []byte) (*Document, error) {
	r := csv.NewReader(strings.NewReader(DecodeText(content)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if strings.EqualFold(filepath.Ext(filename), ".tsv") {
		r.Comma = '\t'
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, filename, err)
	}

	doc := &Document{}
	if len(records) == 0 {
		return doc, nil
	}

	table := Table{Name: strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)), Headers: records[0], Rows: records[1:]}
	doc.Tables = append(doc.Tables, table)

	lines := make([]string, len(records))
	for i, rec := range records {
		lines[i] = strings.Join(rec, "\t")
	}
	doc.Blocks = append(doc.Blocks, Block{Page: 1, Text: strings.Join(lines, "\n")})
	return doc, nil
}

func extractImage(in *domain.ChunkInput) (*Document, error) {
	client, err := ocr.New()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUnsupportedType, in.Filename, err)
	}
	defer client.Close()

	text, err := client.RecognizeImage(in.Content)
	if err != nil {
		return nil, fmt.Errorf("recognise %s: %w", in.Filename, err)
	}
	return &Document{Blocks: []Block{{Page: 1, Text: text}}}, nil
}

// pageWindow clamps [from, to) to [0, count).
func pageWindow(from, to, count int) (int, int) {
	if from < 0 {
		from = 0
	}
	if to <= 0 || to > count {
		to = count
	}
	if from > to {
		from = to
	}
	return from, to
}

// DecodeText converts raw bytes to UTF-8. Bytes that are not valid UTF-8
// are read as Windows-1252, the most common legacy encoding of text files.
func DecodeText(content []byte) string {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	if utf8.Valid(content) {
		return string(content)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(content)
	if err != nil {
		return strings.ToValidUTF8(string(content), "�")
	}
	return string(decoded)
}
