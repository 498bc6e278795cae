// Package document defines the value types shared by the indexer and the
// searcher: document status, ranked result records, and filter predicates.
package document

import (
	"fmt"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

// Status is the editorial state of an indexed document. It is fixed when the
// document is added.
type Status int

const (
	StatusActual Status = iota
	StatusIrrelevant
	StatusBanned
	StatusRemoved
)

var statusNames = [...]string{
	StatusActual:     "ACTUAL",
	StatusIrrelevant: "IRRELEVANT",
	StatusBanned:     "BANNED",
	StatusRemoved:    "REMOVED",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// ParseStatus accepts the names produced by String, case-insensitively.
func ParseStatus(name string) (Status, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range statusNames {
		if n == upper {
			return Status(i), nil
		}
	}
	return 0, apperrors.InvalidInput("unknown document status %q", name)
}

func (s Status) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(statusNames) {
		return nil, apperrors.InvalidInput("unknown document status %d", int(s))
	}
	return []byte(statusNames[s]), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Document is a single ranked search hit.
type Document struct {
	ID        int     `json:"document_id" yaml:"document_id"`
	Relevance float64 `json:"relevance" yaml:"relevance"`
	Rating    int     `json:"rating" yaml:"rating"`
}

func (d Document) String() string {
	return fmt.Sprintf("{ document_id = %d, relevance = %.6g, rating = %d }", d.ID, d.Relevance, d.Rating)
}

// Predicate decides whether a candidate document may appear in results.
type Predicate func(id int, status Status, rating int) bool

// WithStatus accepts only documents in the given status.
func WithStatus(want Status) Predicate {
	return func(_ int, status Status, _ int) bool {
		return status == want
	}
}

// Any accepts every document.
func Any(int, Status, int) bool { return true }

// And combines predicates; a nil entry is skipped.
func And(preds ...Predicate) Predicate {
	return func(id int, status Status, rating int) bool {
		for _, p := range preds {
			if p != nil && !p(id, status, rating) {
				return false
			}
		}
		return true
	}
}

// MinRating accepts documents rated at least min.
func MinRating(min int) Predicate {
	return func(_ int, _ Status, rating int) bool {
		return rating >= min
	}
}
