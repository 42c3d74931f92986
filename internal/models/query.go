package models

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ErrInvalidQuery is wrapped by every SearchQuery validation error.
var ErrInvalidQuery = errors.New("invalid query")

// SearchQuery represents a search request over one or more categories.
type SearchQuery struct {
	Query      string     `json:"query"`
	Categories []Category `json:"categories,omitempty"`
	Limit      int        `json:"limit,omitempty"`
	Offset     int        `json:"offset,omitempty"`
}

// Validate trims the query and sets defaults. Empty Categories means all of them.
// Returns an error if the query is blank or names an unknown category.
func (q *SearchQuery) Validate() error {
	q.Query = strings.TrimSpace(q.Query)
	if q.Query == "" {
		return fmt.Errorf("%w: query cannot be empty", ErrInvalidQuery)
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if len(q.Categories) == 0 {
		q.Categories = Categories()
		return nil
	}
	seen := make(map[Category]bool, len(q.Categories))
	cats := q.Categories[:0]
	for _, c := range q.Categories {
		parsed, err := ParseCategory(string(c))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
		}
		if seen[parsed] {
			continue
		}
		seen[parsed] = true
		cats = append(cats, parsed)
	}
	q.Categories = cats
	return nil
}
