// Package tokenizer counts the terms of field text for length normalization.
package tokenizer

import (
	"strings"
	"unicode"
)

// WhitespaceCounter counts runs of letters and digits. Punctuation and
// whitespace separate terms.
type WhitespaceCounter struct{}

// NewWhitespaceCounter creates a new WhitespaceCounter
func NewWhitespaceCounter() *WhitespaceCounter {
	return &WhitespaceCounter{}
}

// CountTerms counts the terms in text
func (c *WhitespaceCounter) CountTerms(text string) (int, error) {
	return len(strings.FieldsFunc(text, isSeparator)), nil
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
