// Package token normalizes raw query text into an ordered token sequence.
package token

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Token is one contiguous unit of the normalized query string.
type Token struct {
	text     string
	original string
	position int
}

// New creates a token.
func New(text, original string, position int) Token {
	return Token{text: text, original: original, position: position}
}

// Text returns the case-folded token text.
func (t Token) Text() string { return t.text }

// Original returns the token as it appeared in the raw query.
func (t Token) Original() string { return t.original }

// Position returns the zero-based token index within the query.
func (t Token) Position() int { return t.position }

// Normalize splits raw query text into ordered, case-folded tokens.
// Runs of whitespace and punctuation act as separators, except that a
// '.' or ',' between two digits is kept inside the token so decimal
// quantities like "10.5" and "10,5" survive as one token. Empty input,
// or input that collapses to nothing, yields an empty slice.
func Normalize(raw string) []Token {
	runes := []rune(raw)
	var tokens []Token
	var cur []rune

	flush := func() {
		if len(cur) == 0 {
			return
		}
		original := string(cur)
		tokens = append(tokens, Token{
			text:     Fold(original),
			original: original,
			position: len(tokens),
		})
		cur = cur[:0]
	}

	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			cur = append(cur, r)
		case (r == '.' || r == ',') && i > 0 && i+1 < len(runes) &&
			unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]):
			cur = append(cur, r)
		default:
			flush()
		}
	}
	flush()

	return tokens
}

// Fold lowercases text using full Unicode case folding, which handles
// Cyrillic and other multi-byte scripts without corruption.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Join concatenates token texts with single spaces, the canonical
// display form of a normalized query.
func Join(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.text
	}
	return strings.Join(parts, " ")
}
