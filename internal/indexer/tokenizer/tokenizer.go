// Package tokenizer splits document and query text into words. Words are
// separated by the space character only; every other byte, including tabs
// and newlines, belongs to a word. Words carrying control characters are
// rejected by Validate so that ingestion and query parsing share one rule.
package tokenizer

import (
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

const separator = ' '

// Split breaks text into the non-empty words between space characters, in
// their original order.
func Split(text string) []string {
	words := make([]string, 0, strings.Count(text, " ")+1)
	start := -1
	for i := 0; i < len(text); i++ {
		if text[i] == separator {
			if start >= 0 {
				words = append(words, text[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, text[start:])
	}
	return words
}

// IsValid reports whether word is free of control characters (bytes below
// 0x20).
func IsValid(word string) bool {
	for i := 0; i < len(word); i++ {
		if word[i] < separator {
			return false
		}
	}
	return true
}

// Validate returns an invalid-input error for the first word containing a
// control character.
func Validate(words ...string) error {
	for _, w := range words {
		if !IsValid(w) {
			return apperrors.InvalidInput("word %q contains a control character", w)
		}
	}
	return nil
}

// SplitValid splits text and validates every resulting word.
func SplitValid(text string) ([]string, error) {
	words := Split(text)
	if err := Validate(words...); err != nil {
		return nil, err
	}
	return words, nil
}
