package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chunkflow/internal/chunkers/postag"
	"github.com/custodia-labs/chunkflow/internal/core/domain"
)

func input(name, content string) *domain.ChunkInput {
	return &domain.ChunkInput{
		Filename: name,
		Content:  []byte(content),
		ToPage:   domain.DefaultToPage,
		Config:   domain.DefaultParserConfig(),
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    Kind
	}{
		{"pdf by extension", "a.PDF", "", KindPDF},
		{"pdf by magic", "upload.bin", "%PDF-1.7", KindPDF},
		{"docx", "a.docx", "", KindWord},
		{"odt", "a.odt", "", KindWord},
		{"xlsx", "a.xlsx", "", KindSpreadsheet},
		{"pptx", "a.pptx", "", KindPresentation},
		{"epub", "a.epub", "", KindEPUB},
		{"html", "a.html", "", KindHTML},
		{"html by magic", "a", "<!DOCTYPE html><p>x</p>", KindHTML},
		{"csv", "a.csv", "", KindDelimited},
		{"tsv", "a.tsv", "", KindDelimited},
		{"image", "scan.jpeg", "", KindImage},
		{"text", "notes.md", "# hi", KindText},
		{"eml", "mail.eml", "From: a@b.c", KindText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.file, []byte(tt.content)))
		})
	}
}

func TestExtract_Text(t *testing.T) {
	doc, err := Extract(context.Background(), input("notes.txt", "line one\nline two"))
	require.NoError(t, err)

	assert.Equal(t, KindText, doc.Kind)
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, 1, doc.Blocks[0].Page)
	assert.Equal(t, "line one\nline two", doc.Text())
}

func TestExtract_Empty(t *testing.T) {
	_, err := Extract(context.Background(), input("empty.txt", ""))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestExtract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Extract(ctx, input("notes.txt", "x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtract_HTML(t *testing.T) {
	doc, err := Extract(context.Background(), input("page.html", "<html><body><h1>Title</h1><p>Body</p></body></html>"))
	require.NoError(t, err)

	assert.Equal(t, KindHTML, doc.Kind)
	assert.Equal(t, "Title\nBody", doc.Text())
}

func TestExtract_CSV(t *testing.T) {
	doc, err := Extract(context.Background(), input("people.csv", "name,age\nAnn,42\nBob,7\n"))
	require.NoError(t, err)

	require.Len(t, doc.Tables, 1)
	table := doc.Tables[0]
	assert.Equal(t, "people", table.Name)
	assert.Equal(t, []string{"name", "age"}, table.Headers)
	assert.Equal(t, [][]string{{"Ann", "42"}, {"Bob", "7"}}, table.Rows)
	assert.Equal(t, "name\tage\nAnn\t42\nBob\t7", doc.Text())
}

func TestExtract_TSV(t *testing.T) {
	doc, err := Extract(context.Background(), input("qa.tsv", "q\ta\nWhy?\tBecause.\n"))
	require.NoError(t, err)

	require.Len(t, doc.Tables, 1)
	assert.Equal(t, [][]string{{"Why?", "Because."}}, doc.Tables[0].Rows)
}

func TestDocument_TaggedText(t *testing.T) {
	doc := &Document{Blocks: []Block{
		{Page: 1, Text: "Title", Position: &postag.Position{Page: 1, X0: 1, X1: 2, Top: 3, Bottom: 4}},
		{Page: 1, Text: ""},
		{Page: 2, Text: "Plain"},
	}}

	assert.Equal(t, "Title@@1\t1.0\t2.0\t3.0\t4.0##\nPlain", doc.TaggedText())
	assert.Equal(t, "Title\nPlain", postag.Remove(doc.TaggedText()))
}

func TestDocument_Pages(t *testing.T) {
	doc := &Document{Blocks: []Block{
		{Page: 1, Text: "a"},
		{Page: 1, Text: "b"},
		{Page: 3, Text: "c"},
	}}

	pages := doc.Pages()
	require.Len(t, pages, 2)
	assert.Equal(t, Block{Page: 1, Text: "a\nb"}, pages[0])
	assert.Equal(t, Block{Page: 3, Text: "c"}, pages[1])
}

func TestPageWindow(t *testing.T) {
	tests := []struct {
		from, to, count int
		wantFrom        int
		wantTo          int
	}{
		{0, 100000, 5, 0, 5},
		{1, 3, 5, 1, 3},
		{-2, 0, 5, 0, 5},
		{7, 9, 5, 5, 5},
		{0, 2, 0, 0, 0},
	}

	for _, tt := range tests {
		from, to := pageWindow(tt.from, tt.to, tt.count)
		assert.Equal(t, tt.wantFrom, from)
		assert.Equal(t, tt.wantTo, to)
	}
}

func TestDecodeText(t *testing.T) {
	assert.Equal(t, "café", DecodeText([]byte("caf\xe9")))
	assert.Equal(t, "plain", DecodeText([]byte("\xef\xbb\xbfplain")))
	assert.Equal(t, "日本", DecodeText([]byte("日本")))
}

// scratchFiles returns the extractor's temporary files left in dir.
func scratchFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "chunkflow-*"))
	require.NoError(t, err)
	return matches
}

func TestWithTempFile_RemovedAfterSuccess(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TMPDIR", dir)

	var seen string
	doc, err := withTempFile(input("report.PDF", "%PDF-1.7"), func(path string) (*Document, error) {
		seen = path
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.7", string(data))
		return &Document{Blocks: []Block{{Page: 1, Text: "ok"}}}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", doc.Text())
	assert.Equal(t, ".pdf", filepath.Ext(seen))
	assert.NoFileExists(t, seen)
	assert.Empty(t, scratchFiles(t, dir))
}

func TestWithTempFile_RemovedAfterError(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TMPDIR", dir)

	_, err := withTempFile(input("a.docx", "x"), func(string) (*Document, error) {
		return nil, domain.ErrUnsupportedType
	})

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.Empty(t, scratchFiles(t, dir))
}

func TestExtract_CorruptOfficeFileLeavesNoScratch(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TMPDIR", dir)

	_, err := Extract(context.Background(), input("broken.docx", "not a zip archive"))

	assert.Error(t, err)
	assert.Empty(t, scratchFiles(t, dir))
}
