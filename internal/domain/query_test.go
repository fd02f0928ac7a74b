package domain

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr error
	}{
		{"ok", "space movies with robots", nil},
		{"empty", "", ErrEmptyQuery},
		{"whitespace", "   ", ErrEmptyQuery},
		{"tabs and newlines", "\t\n", ErrEmptyQuery},
		{"max len", strings.Repeat("a", MaxQueryLength), nil},
		{"too long", strings.Repeat("a", MaxQueryLength+1), ErrQueryTooLong},
		{"padded max len", "  " + strings.Repeat("a", MaxQueryLength) + "  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuery(tt.query)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateQuery() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no trim", "heist movies", "heist movies"},
		{"trim both", "   heist movies   ", "heist movies"},
		{"trim tabs", "\t\theist\t\t", "heist"},
		{"preserve internal", "  dark   comedy  ", "dark   comedy"},
		{"empty", "   ", ""},
		{"truncate", strings.Repeat("a", MaxQueryLength+100), strings.Repeat("a", MaxQueryLength)},
		{"truncate+trim", "  " + strings.Repeat("a", MaxQueryLength+100) + "  ", strings.Repeat("a", MaxQueryLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeQuery(tt.input); got != tt.expected {
				t.Errorf("NormalizeQuery() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNormalizeQuery_MultibyteBoundary(t *testing.T) {
	// "é" занимает 2 байта, граница попадает в середину руны
	input := "a" + strings.Repeat("é", MaxQueryLength)
	got := NormalizeQuery(input)

	if !utf8.ValidString(got) {
		t.Fatal("NormalizeQuery() returned invalid utf8")
	}
	if len(got) > MaxQueryLength {
		t.Errorf("len = %d, want <= %d", len(got), MaxQueryLength)
	}
	if len(got) < MaxQueryLength-1 {
		t.Errorf("len = %d, cut too much", len(got))
	}
}
