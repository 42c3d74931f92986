package models

import (
	"encoding/json"
	"strings"
)

// TermSet is a deduplicated, lower-cased collection of search terms.
// Terms keep the order they were first added in.
type TermSet struct {
	terms []string
	seen  map[string]struct{}
}

// NewTermSet returns a set holding terms.
func NewTermSet(terms ...string) *TermSet {
	s := &TermSet{seen: make(map[string]struct{}, len(terms))}
	s.AddAll(terms)
	return s
}

// Add lower-cases term and adds it. Reports whether the set grew.
func (s *TermSet) Add(term string) bool {
	term = strings.ToLower(term)
	if _, ok := s.seen[term]; ok {
		return false
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	s.seen[term] = struct{}{}
	s.terms = append(s.terms, term)
	return true
}

// AddAll adds every term.
func (s *TermSet) AddAll(terms []string) {
	for _, t := range terms {
		s.Add(t)
	}
}

// Contains reports whether term (case-insensitively) is in the set.
func (s *TermSet) Contains(term string) bool {
	if s == nil {
		return false
	}
	_, ok := s.seen[strings.ToLower(term)]
	return ok
}

// Terms returns a copy of the terms in insertion order.
func (s *TermSet) Terms() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.terms...)
}

// Len returns the number of terms.
func (s *TermSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.terms)
}

func (s *TermSet) MarshalJSON() ([]byte, error) {
	terms := s.Terms()
	if terms == nil {
		terms = []string{}
	}
	return json.Marshal(terms)
}

func (s *TermSet) UnmarshalJSON(data []byte) error {
	var terms []string
	if err := json.Unmarshal(data, &terms); err != nil {
		return err
	}
	*s = *NewTermSet(terms...)
	return nil
}
