package service

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/document"
)

// Filter is the serializable form of a predicate, used where results are
// cached or requested over the wire. The zero Filter selects ACTUAL
// documents.
type Filter struct {
	Status    *document.Status
	AnyStatus bool
	MinRating *int
}

// Predicate builds the document predicate the filter describes.
func (f Filter) Predicate() document.Predicate {
	var byStatus document.Predicate
	switch {
	case f.AnyStatus:
	case f.Status != nil:
		byStatus = document.WithStatus(*f.Status)
	default:
		byStatus = document.WithStatus(document.StatusActual)
	}
	var byRating document.Predicate
	if f.MinRating != nil {
		byRating = document.MinRating(*f.MinRating)
	}
	if byStatus == nil && byRating == nil {
		return document.Any
	}
	return document.And(byStatus, byRating)
}

// Key identifies the filter in cache keys and analytics events.
func (f Filter) Key() string {
	status := document.StatusActual.String()
	switch {
	case f.AnyStatus:
		status = "ANY"
	case f.Status != nil:
		status = f.Status.String()
	}
	if f.MinRating == nil {
		return "status=" + status
	}
	return fmt.Sprintf("status=%s;min_rating=%d", status, *f.MinRating)
}
