// Package paginator splits an ordered result slice into fixed-size pages.
// Pages are views into the original slice: nothing is copied, and a page is
// only valid while the caller keeps the source slice unchanged.
package paginator

import (
	"iter"

	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

type Paginator[T any] struct {
	items []T
	size  int
}

func New[T any](items []T, pageSize int) (*Paginator[T], error) {
	if pageSize <= 0 {
		return nil, apperrors.InvalidInput("page size must be positive, got %d", pageSize)
	}
	return &Paginator[T]{items: items, size: pageSize}, nil
}

// Paginate returns the pages of items as a restartable sequence. Empty input
// yields no pages.
func Paginate[T any](items []T, pageSize int) (iter.Seq[[]T], error) {
	p, err := New(items, pageSize)
	if err != nil {
		return nil, err
	}
	return func(yield func([]T) bool) {
		for _, page := range p.All() {
			if !yield(page) {
				return
			}
		}
	}, nil
}

// Len is the number of pages.
func (p *Paginator[T]) Len() int {
	if len(p.items) == 0 {
		return 0
	}
	return (len(p.items)-1)/p.size + 1
}

func (p *Paginator[T]) PageSize() int {
	return p.size
}

// Page returns page i. The page's capacity ends at its length so appending
// to it never writes into the next page.
func (p *Paginator[T]) Page(i int) ([]T, error) {
	if i < 0 || i >= p.Len() {
		return nil, apperrors.OutOfRange("page %d outside [0, %d)", i, p.Len())
	}
	return p.page(i), nil
}

func (p *Paginator[T]) page(i int) []T {
	start := i * p.size
	end := start + min(p.size, len(p.items)-start)
	return p.items[start:end:end]
}

// All yields (index, page) pairs in order. Pages are computed as they are
// requested.
func (p *Paginator[T]) All() iter.Seq2[int, []T] {
	return func(yield func(int, []T) bool) {
		for i := 0; i < p.Len(); i++ {
			if !yield(i, p.page(i)) {
				return
			}
		}
	}
}
