package expand

import (
	"slices"
	"testing"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "math", 4},
		{"physics", "physics", 0},
		{"physcs", "physics", 1},
		{"kitten", "sitting", 3},
		{"গণিত", "গনিত", 1},
		{"ab", "ba", 2},
	}
	for _, tt := range tests {
		if got := LevenshteinDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := LevenshteinDistance(tt.b, tt.a); got != tt.want {
			t.Errorf("LevenshteinDistance not symmetric for %q, %q", tt.a, tt.b)
		}
	}
}

func TestSuggest(t *testing.T) {
	e := New()
	if got := e.Suggest("phisics"); !slices.Contains(got, "physics") {
		t.Errorf("Suggest(phisics) = %v, want physics", got)
	}
	if got := e.Suggest("chemestry notes"); !slices.Contains(got, "chemistry") {
		t.Errorf("Suggest(chemestry notes) = %v, want chemistry", got)
	}
	if got := e.Suggest("physics"); len(got) != 0 {
		t.Errorf("known word should have no suggestions, got %v", got)
	}
	if got := e.Suggest("xyz123"); len(got) != 0 {
		t.Errorf("Suggest(xyz123) = %v, want none", got)
	}
}

func TestSuggest_MaxSuggestions(t *testing.T) {
	e := New(WithSpellerOptions(WithMaxSuggestions(1), WithMaxDistance(3)))
	if got := e.Suggest("bangle engish"); len(got) != 1 {
		t.Errorf("expected one suggestion, got %v", got)
	}
}
