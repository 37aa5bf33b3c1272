package general

import (
	"context"
	"errors"
	"strings"
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
		Language: domain.DefaultLanguage,
		Config:   domain.DefaultParserConfig(),
	}
}

func contents(chunks []domain.RawChunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.ContentWithWeight()
	}
	return out
}

func TestChunkers_Names(t *testing.T) {
	var names []string
	for _, c := range Chunkers() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{
		"naive", "resume", "paper", "book", "laws", "manual",
		"one", "presentation", "table", "qa", "tag", "picture",
	}, names)
}

func TestDocFields(t *testing.T) {
	fields := DocFields("dir/Quarterly_Report.pdf")
	assert.Equal(t, "Quarterly_Report.pdf", fields[domain.KeyDocName])
	assert.Equal(t, []string{"quarterly_report"}, fields[domain.KeyTitleTokens])
}

func TestNewChunk_LiftsPositions(t *testing.T) {
	text := postag.Annotate("Hello", postag.Position{Page: 2, X0: 1, X1: 2, Top: 3, Bottom: 4})

	c := NewChunk(text, DocFields("a.pdf"))

	assert.Equal(t, "Hello", c.ContentWithWeight())
	assert.Equal(t, []string{"hello"}, c.ContentTokens())
	assert.Equal(t, []int{2}, c[domain.KeyPageNumbers])
	assert.Equal(t, [][]int{{2, 1, 2, 3, 4}}, c[domain.KeyPositions])
}

func TestNewTaggedChunk_KeepsMarkers(t *testing.T) {
	text := postag.Annotate("Hello", postag.Position{Page: 1})

	c := NewTaggedChunk(text, nil)

	assert.Equal(t, text, c.ContentWithWeight())
	assert.Equal(t, []string{"hello"}, c.ContentTokens())
}

func TestNaive_Chunk(t *testing.T) {
	in := input("notes.txt", "First sentence.\nSecond sentence!\nThird?")
	in.Config.ChunkTokenBudget = 3

	var events []domain.ProgressEvent
	in.Progress = domain.ProgressFunc(func(e domain.ProgressEvent) { events = append(events, e) })

	chunks, err := NewNaive().Chunk(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, []string{"First sentence.\n", "Second sentence!\n", "Third?"}, contents(chunks))
	assert.Equal(t, "notes.txt", chunks[0][domain.KeyDocName])
	assert.NotEmpty(t, events)
}

func TestNaive_LargeBudgetSingleChunk(t *testing.T) {
	chunks, err := NewNaive().Chunk(context.Background(), input("a.txt", "a\nb\nc"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a\nb\nc"}, contents(chunks))
}

func TestNaive_EmptyInput(t *testing.T) {
	_, err := NewNaive().Chunk(context.Background(), input("a.txt", ""))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestResume_Name(t *testing.T) {
	assert.Equal(t, "resume", NewResume().Name())
}

func TestOne_ChunkAndDetag(t *testing.T) {
	one := NewOne()

	chunks, err := one.Chunk(context.Background(), input("a.txt", "line one\nline two"))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "line one\nline two", chunks[0].ContentWithWeight())

	tagged := postag.Annotate("From: a@b.c", postag.Position{Page: 1})
	assert.Equal(t, "From: a@b.c", one.Detag(tagged))
}

func TestOne_WhitespaceOnly(t *testing.T) {
	chunks, err := NewOne().Chunk(context.Background(), input("a.txt", " \n\t"))
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSectioned_SplitsAtHeadings(t *testing.T) {
	text := "Chapter 1\nIt was a dark night.\nChapter 2\nThe sun rose."

	chunks, err := NewBook().Chunk(context.Background(), input("novel.txt", text))
	require.NoError(t, err)

	assert.Equal(t, []string{"Chapter 1\nIt was a dark night.\n", "Chapter 2\nThe sun rose."}, contents(chunks))
}

func TestSectioned_Headings(t *testing.T) {
	tests := []struct {
		chunker *Sectioned
		line    string
		want    bool
	}{
		{NewPaper(), "Abstract", true},
		{NewPaper(), "2.1 Related Work", true},
		{NewPaper(), "we propose a method", false},
		{NewBook(), "CHAPTER IV", true},
		{NewBook(), "第三章 总则", true},
		{NewLaws(), "Article 12", true},
		{NewLaws(), "§ 4", true},
		{NewLaws(), "第十条 合同", true},
		{NewLaws(), "The article says", false},
		{NewManual(), "## Installation", true},
		{NewManual(), "3.2 Configure the device", true},
		{NewManual(), "Press the button.", false},
		{NewManual(), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.chunker.Name()+"/"+tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.chunker.IsHeading(tt.line))
		})
	}
}

func TestSectioned_SplitPreservesText(t *testing.T) {
	text := "intro\n## A\nbody a\n## B\nbody b\n"
	assert.Equal(t, text, strings.Join(NewManual().split(text), ""))
}

func TestPresentation_OnePagePerChunk(t *testing.T) {
	chunks, err := NewPresentation().Chunk(context.Background(), input("slides.txt", "only page"))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, []int{1}, chunks[0][domain.KeyPageNumbers])
}

func TestPicture_RejectsNonImages(t *testing.T) {
	_, err := NewPicture().Chunk(context.Background(), input("a.txt", "text"))
	assert.True(t, errors.Is(err, domain.ErrUnsupportedType))
}

func TestTable_RowsFromCSV(t *testing.T) {
	chunks, err := NewTable().Chunk(context.Background(), input("people.csv", "name,age\nAnn,42\nBob,\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"name: Ann; age: 42", "name: Bob"}, contents(chunks))
}

func TestTable_RowsFromText(t *testing.T) {
	chunks, err := NewTable().Chunk(context.Background(), input("t.txt", "a\tb\n1\t2\n\tx"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a: 1; b: 2", "b: x"}, contents(chunks))
}

func TestQA_FromCSV(t *testing.T) {
	chunks, err := NewQA().Chunk(context.Background(), input("faq.csv", "Question,Answer\nWhy?,Because.\nHow?,\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Question: Why?\tAnswer: Because."}, contents(chunks))
}

func TestQA_HeaderlessCSV(t *testing.T) {
	chunks, err := NewQA().Chunk(context.Background(), input("faq.csv", "Why?,Because.\nHow?,Like this.\n"))
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}

func TestQA_FromText(t *testing.T) {
	text := "Q: What is Go?\nA: A language.\nIt compiles fast.\nQ: Who?\nA: Gophers."

	chunks, err := NewQA().Chunk(context.Background(), input("faq.txt", text))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Question: What is Go?\tAnswer: A language.\nIt compiles fast.",
		"Question: Who?\tAnswer: Gophers.",
	}, contents(chunks))
}

func TestTag_Chunk(t *testing.T) {
	chunks, err := NewTag().Chunk(context.Background(), input("tags.csv", "content,tags\nGo is fast,\"lang, speed\"\nNo tags\n"))
	require.NoError(t, err)

	require.Len(t, chunks, 2)
	assert.Equal(t, "Go is fast", chunks[0].ContentWithWeight())
	assert.Equal(t, []string{"lang", "speed"}, chunks[0][domain.KeyTags])
	assert.NotContains(t, chunks[1], domain.KeyTags)
}
