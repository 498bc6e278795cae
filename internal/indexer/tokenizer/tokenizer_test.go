package tokenizer

import (
	"errors"
	"reflect"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"basic text", "funny pet and nasty rat", []string{"funny", "pet", "and", "nasty", "rat"}},
		{"repeated spaces", "  big   cat  ", []string{"big", "cat"}},
		{"empty input", "", []string{}},
		{"only spaces", "    ", []string{}},
		{"tabs are not separators", "big\tcat dog", []string{"big\tcat", "dog"}},
		{"punctuation kept", "-dog curly,", []string{"-dog", "curly,"}},
		{"unicode kept", "пушистый кот", []string{"пушистый", "кот"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Split(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		word string
		want bool
	}{
		{"dog", true},
		{"", true},
		{"d\x00g", false},
		{"do\x12", false},
		{"tab\there", false},
		{"\x1f", false},
		{" ", true},
		{"ёж", true},
	}
	for _, tt := range tests {
		if got := IsValid(tt.word); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.word, got, tt.want)
		}
	}
}

func TestSplitValid(t *testing.T) {
	words, err := SplitValid("big dog cat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(words) != 3 {
		t.Fatalf("got %d words, want 3", len(words))
	}
	_, err = SplitValid("big do\x12g")
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("SplitValid error = %v, want invalid input", err)
	}
}
