// Package store keeps per-document metadata and the order in which documents
// were added. Records are immutable once stored.
package store

import (
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/document"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

// Record is the stored metadata of one document.
type Record struct {
	Rating int             `json:"rating"`
	Status document.Status `json:"status"`
}

type Store struct {
	records map[int]Record
	ids     []int
}

func New() *Store {
	return &Store{records: make(map[int]Record)}
}

// CheckID rejects negative ids and ids that are already stored.
func (s *Store) CheckID(id int) error {
	if id < 0 {
		return apperrors.InvalidInput("negative document id %d", id)
	}
	if _, exists := s.records[id]; exists {
		return apperrors.Newf(apperrors.ErrInvalidInput, http.StatusConflict, "document id %d already exists", id)
	}
	return nil
}

// Add registers a record and appends id to the insertion sequence.
func (s *Store) Add(id int, rec Record) error {
	if err := s.CheckID(id); err != nil {
		return err
	}
	s.records[id] = rec
	s.ids = append(s.ids, id)
	return nil
}

func (s *Store) Get(id int) (Record, bool) {
	rec, ok := s.records[id]
	return rec, ok
}

func (s *Store) Count() int {
	return len(s.ids)
}

// IDAt returns the id added at insertion position i.
func (s *Store) IDAt(i int) (int, error) {
	if i < 0 || i >= len(s.ids) {
		return 0, apperrors.OutOfRange("document index %d outside [0, %d)", i, len(s.ids))
	}
	return s.ids[i], nil
}

// IDs returns a copy of the insertion sequence.
func (s *Store) IDs() []int {
	out := make([]int, len(s.ids))
	copy(out, s.ids)
	return out
}

// AverageRating is the mean of ratings truncated toward zero, or 0 when
// there are none.
func AverageRating(ratings []int) int {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return sum / len(ratings)
}
