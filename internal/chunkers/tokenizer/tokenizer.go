// Package tokenizer provides the token counter used to bound chunk groups.
//
// A token is one CJK character, one run of letters or digits, or one
// punctuation or symbol character. Whitespace never counts.
package tokenizer

import (
	"strings"
	"unicode"
)

// Count returns the number of tokens in text.
func Count(text string) int {
	n := 0
	inWord := false
	for _, r := range text {
		switch {
		case isCJK(r):
			n++
			inWord = false
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			if !inWord {
				n++
				inWord = true
			}
		case unicode.IsSpace(r):
			inWord = false
		default:
			if unicode.IsPunct(r) || unicode.IsSymbol(r) {
				n++
			}
			inWord = false
		}
	}
	return n
}

// Tokenize splits text into lower-cased tokens.
// Punctuation is dropped; CJK characters become single-rune tokens.
func Tokenize(text string) []string {
	var tokens []string
	var word strings.Builder

	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, strings.ToLower(word.String()))
			word.Reset()
		}
	}

	for _, r := range text {
		switch {
		case isCJK(r):
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			word.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}

func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}
