package parser

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/stopwords"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

const minusPrefix = '-'

// Query holds the distinct inclusion (Plus) and exclusion (Minus) terms of a
// raw query, each sorted. Stop words never appear in either.
type Query struct {
	Plus     []string
	Minus    []string
	RawQuery string
}

// Empty reports whether the query has no inclusion terms.
func (q *Query) Empty() bool {
	return len(q.Plus) == 0
}

// Parse splits raw into words and classifies each one. A word starting with
// '-' is an exclusion; a bare "-" or a word starting with "--" is rejected.
func Parse(raw string, stop *stopwords.Set) (*Query, error) {
	plus := make(map[string]struct{})
	minus := make(map[string]struct{})
	for _, word := range tokenizer.Split(raw) {
		term, excluded, err := parseWord(word)
		if err != nil {
			return nil, err
		}
		if stop.Contains(term) {
			continue
		}
		if excluded {
			minus[term] = struct{}{}
		} else {
			plus[term] = struct{}{}
		}
	}
	return &Query{
		Plus:     sortedKeys(plus),
		Minus:    sortedKeys(minus),
		RawQuery: raw,
	}, nil
}

func parseWord(word string) (string, bool, error) {
	excluded := false
	if word[0] == minusPrefix {
		word = word[1:]
		if word == "" {
			return "", false, apperrors.InvalidInput("no word after '-' in query")
		}
		if word[0] == minusPrefix {
			return "", false, apperrors.InvalidInput("several '-' in a row in query word %q", "-"+word)
		}
		excluded = true
	}
	if err := tokenizer.Validate(word); err != nil {
		return "", false, err
	}
	return word, excluded, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
