// Package conditions turns an expanded term set into per-field substring
// conditions for one content category.
package conditions

import (
	"strings"

	"github.com/pathshala/pathshala/internal/models"
)

// Condition is a case-insensitive substring match of Pattern against Field.
type Condition struct {
	Field   string `json:"field"`
	Pattern string `json:"pattern"`
}

// List is a set of conditions to be OR-combined.
type List []Condition

var whitelists = map[models.Category][]string{
	models.CategoryTextbook: {"title", "subject", "class_level"},
	models.CategoryQuestion: {"question", "subject", "chapter", "board"},
	models.CategoryPaper:    {"title", "subject", "board", "exam_type"},
	models.CategoryNote:     {"title", "subject", "content"},
}

// Whitelist returns the searchable fields of category, or nil if unknown.
func Whitelist(category models.Category) []string {
	fields, ok := whitelists[category]
	if !ok {
		return nil
	}
	return append([]string(nil), fields...)
}

// stripped characters would otherwise break out of a filter expression.
var sanitizer = strings.NewReplacer(
	`"`, "", `'`, "", "`", "",
	"‘", "", "’", "", "“", "", "”", "",
	",", "", "(", "", ")", "", `\`, "",
)

// Sanitize strips quote and filter-syntax characters from term.
func Sanitize(term string) string {
	return strings.TrimSpace(sanitizer.Replace(term))
}

// Build emits one condition per (term, whitelisted field) pair, terms in
// insertion order then fields in whitelist order. Terms that are empty after
// sanitizing are skipped. An empty set or unknown category yields an empty list.
func Build(terms *models.TermSet, category models.Category) List {
	fields := whitelists[category]
	if terms.Len() == 0 || len(fields) == 0 {
		return List{}
	}
	out := make(List, 0, terms.Len()*len(fields))
	for _, term := range terms.Terms() {
		pattern := Sanitize(term)
		if pattern == "" {
			continue
		}
		for _, f := range fields {
			out = append(out, Condition{Field: f, Pattern: pattern})
		}
	}
	return out
}

// Fields returns the distinct fields referenced by l in first-seen order.
func (l List) Fields() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range l {
		if !seen[c.Field] {
			seen[c.Field] = true
			out = append(out, c.Field)
		}
	}
	return out
}

// Patterns returns the distinct patterns of l in first-seen order.
func (l List) Patterns() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range l {
		if !seen[c.Pattern] {
			seen[c.Pattern] = true
			out = append(out, c.Pattern)
		}
	}
	return out
}

// String renders l as an OR filter expression of the form
// "question.ilike.*physics*,subject.ilike.*physics*".
func (l List) String() string {
	parts := make([]string, len(l))
	for i, c := range l {
		parts[i] = c.Field + ".ilike.*" + c.Pattern + "*"
	}
	return strings.Join(parts, ",")
}
