// Package validator checks the shape of ingestion requests before they reach
// the engine. Content rules (control characters, duplicate ids) belong to the
// engine itself; this package only rejects requests that cannot be
// interpreted.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

const (
	maxTextLength = 1 << 20
	maxRatings    = 10000
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		names = append(names, field)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, field := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// ValidateIngestRequest returns a *ValidationError listing every problem.
func ValidateIngestRequest(req *ingestion.IngestRequest) error {
	errs := make(map[string]string)
	switch {
	case req.ID == nil:
		errs["id"] = "id is required"
	case *req.ID < 0:
		errs["id"] = "id must not be negative"
	}
	if len(req.Text) > maxTextLength {
		errs["text"] = fmt.Sprintf("text must be at most %d bytes", maxTextLength)
	}
	if req.Status != nil {
		if _, err := req.Status.MarshalText(); err != nil {
			errs["status"] = "unknown status"
		}
	}
	if len(req.Ratings) > maxRatings {
		errs["ratings"] = fmt.Sprintf("at most %d ratings are accepted", maxRatings)
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
