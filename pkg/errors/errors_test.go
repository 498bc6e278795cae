package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error keeps its status", New(ErrInvalidInput, http.StatusConflict, "duplicate id 3"), http.StatusConflict},
		{"invalid input helper", InvalidInput("bad word %q", "a\tb"), http.StatusBadRequest},
		{"out of range helper", OutOfRange("index %d", 7), http.StatusNotFound},
		{"wrapped sentinel", fmt.Errorf("adding: %w", ErrInvalidInput), http.StatusBadRequest},
		{"not found", ErrDocumentNotFound, http.StatusNotFound},
		{"timeout", ErrTimeout, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusCode(tt.err); got != tt.want {
				t.Errorf("HTTPStatusCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("indexing: %w", InvalidInput("negative id %d", -1))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected errors.Is(err, ErrInvalidInput) for %v", err)
	}
	if errors.Is(err, ErrOutOfRange) {
		t.Fatalf("did not expect ErrOutOfRange for %v", err)
	}
	if got, want := InvalidInput("negative id %d", -1).Error(), "invalid input: negative id -1"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
