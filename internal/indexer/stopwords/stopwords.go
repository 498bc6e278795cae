// Package stopwords holds the immutable set of words that are neither indexed
// nor matched by queries.
package stopwords

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/tokenizer"
)

type Set struct {
	words map[string]struct{}
}

// Empty returns a set with no stop words.
func Empty() *Set {
	return &Set{words: make(map[string]struct{})}
}

// New builds a set from words. Empty strings are ignored; a word containing a
// control character fails the whole construction.
func New(words []string) (*Set, error) {
	if err := tokenizer.Validate(words...); err != nil {
		return nil, err
	}
	s := &Set{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		if w == "" {
			continue
		}
		s.words[w] = struct{}{}
	}
	return s, nil
}

// FromText builds a set from a space-separated list of words.
func FromText(text string) (*Set, error) {
	return New(tokenizer.Split(text))
}

func (s *Set) Contains(word string) bool {
	if s == nil {
		return false
	}
	_, ok := s.words[word]
	return ok
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// Words returns the stop words in lexical order.
func (s *Set) Words() []string {
	out := make([]string, 0, s.Len())
	if s == nil {
		return out
	}
	for w := range s.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Filter returns the words that are not stop words, keeping their order.
func (s *Set) Filter(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !s.Contains(w) {
			out = append(out, w)
		}
	}
	return out
}
