package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"whitespace", " \n\t ", 0},
		{"words", "hello world", 2},
		{"punctuation", "Hello, world!", 4},
		{"digits join words", "page 42b", 2},
		{"cjk", "你好世界", 4},
		{"mixed", "Go语言 rocks.", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Count(tt.text))
		})
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"hello", "world"}, Tokenize("Hello, World!"))
	assert.Equal(t, []string{"go", "语", "言"}, Tokenize("Go语言"))
	assert.Nil(t, Tokenize("  ...  "))
}
