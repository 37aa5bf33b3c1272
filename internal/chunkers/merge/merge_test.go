package merge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chunkflow/internal/chunkers/tokenizer"
)

const delims = "\n!?。；！？"

func TestSegment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"no delimiter", "plain", []string{"plain"}},
		{"keeps delimiters", "a\nb!c", []string{"a\n", "b!", "c"}},
		{"trailing delimiter", "a?\n", []string{"a?", "\n"}},
		{"multibyte", "你好。再见！", []string{"你好。", "再见！"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Segment(tt.text, delims))
		})
	}
}

func TestSegment_ConcatenationIsIdentity(t *testing.T) {
	inputs := []string{
		"line one\nline two\n\nline three!",
		"@@1\t0\t10\t0\t5##Title\nBody?",
		"no delimiters at all",
		"\n\n\n",
	}
	for _, in := range inputs {
		assert.Equal(t, in, strings.Join(Segment(in, delims), ""))
	}
}

func TestSegment_NoDelimiters(t *testing.T) {
	assert.Equal(t, []string{"a\nb"}, Segment("a\nb", ""))
}

func TestBoundedMerge(t *testing.T) {
	segments := []string{"one two\n", "three\n", "four five six\n", "seven\n"}

	groups := BoundedMerge(segments, 3)

	require.Equal(t, []string{"one two\nthree\n", "four five six\n", "seven\n"}, groups)
	assert.Equal(t, strings.Join(segments, ""), strings.Join(groups, ""))
}

func TestBoundedMerge_OversizedSegment(t *testing.T) {
	big := strings.Repeat("word ", 10) + "\n"
	groups := BoundedMerge([]string{"a\n", big, "b\n"}, 4)

	require.Len(t, groups, 3)
	assert.Equal(t, big, groups[1])
}

func TestBoundedMerge_RespectsBudget(t *testing.T) {
	var segments []string
	for i := 0; i < 50; i++ {
		segments = append(segments, "alpha beta gamma\n")
	}

	for _, g := range BoundedMerge(segments, 10) {
		assert.LessOrEqual(t, tokenizer.Count(g), 10)
	}
}

func TestBoundedMerge_Empty(t *testing.T) {
	assert.Nil(t, BoundedMerge(nil, 10))
}

func TestSections_DropsBlankGroups(t *testing.T) {
	assert.Empty(t, Sections("\n \n\t\n", delims, 1))
	assert.Equal(t, []string{"Hello\n\n\n"}, Sections("Hello\n\n\n", delims, 1))
}
