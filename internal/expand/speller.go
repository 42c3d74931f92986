package expand

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pathshala/pathshala/internal/vocabulary"
)

// Suggestion is a dictionary term close to a query word.
type Suggestion struct {
	Word     string
	Term     string
	Distance int
}

// Speller proposes vocabulary terms for misspelled query words.
type Speller struct {
	words          []string
	known          map[string]struct{}
	maxDistance    int
	maxSuggestions int
}

// SpellerOption configures a Speller.
type SpellerOption func(*Speller)

// WithMaxDistance caps the edit distance for suggestions.
func WithMaxDistance(d int) SpellerOption {
	return func(s *Speller) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// WithMaxSuggestions caps the number of suggestions returned.
func WithMaxSuggestions(n int) SpellerOption {
	return func(s *Speller) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// NewSpeller builds a dictionary from the single-word Latin and phonetic
// terms of entries.
func NewSpeller(entries []vocabulary.Entry, opts ...SpellerOption) *Speller {
	s := &Speller{
		known:          make(map[string]struct{}),
		maxDistance:    2,
		maxSuggestions: 3,
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, e := range entries {
		for _, list := range [][]string{e.Latin, e.Phonetic, e.Synonyms, e.Native} {
			for _, t := range list {
				for _, w := range strings.Fields(t) {
					if _, ok := s.known[w]; ok {
						continue
					}
					s.known[w] = struct{}{}
					if utf8.RuneCountInString(w) >= 3 && isLatin(w) {
						s.words = append(s.words, w)
					}
				}
			}
		}
	}
	return s
}

// Check returns suggestions for every query word absent from the dictionary.
func (s *Speller) Check(query string) []Suggestion {
	var out []Suggestion
	for _, word := range strings.Fields(Normalize(query)) {
		if _, ok := s.known[word]; ok || !isLatin(word) || utf8.RuneCountInString(word) < 3 {
			continue
		}
		budget := s.budget(word)
		var found []Suggestion
		for _, w := range s.words {
			diff := utf8.RuneCountInString(w) - utf8.RuneCountInString(word)
			if diff > budget || -diff > budget {
				continue
			}
			if d := LevenshteinDistance(word, w); d <= budget {
				found = append(found, Suggestion{Word: word, Term: w, Distance: d})
			}
		}
		sort.SliceStable(found, func(i, j int) bool { return found[i].Distance < found[j].Distance })
		out = append(out, found...)
	}
	return out
}

// Suggest returns up to maxSuggestions distinct terms, closest first.
func (s *Speller) Suggest(query string) []string {
	checked := s.Check(query)
	sort.SliceStable(checked, func(i, j int) bool { return checked[i].Distance < checked[j].Distance })
	seen := make(map[string]bool)
	var out []string
	for _, sg := range checked {
		if seen[sg.Term] {
			continue
		}
		seen[sg.Term] = true
		out = append(out, sg.Term)
		if len(out) == s.maxSuggestions {
			break
		}
	}
	return out
}

// Short words get a budget of one edit.
func (s *Speller) budget(word string) int {
	if utf8.RuneCountInString(word) <= 4 {
		return min(1, s.maxDistance)
	}
	return s.maxDistance
}

func isLatin(w string) bool {
	for _, r := range w {
		if r >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
