// Package models defines the content records, term sets, queries and search
// results shared across pathshala.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory is returned when a category name is not one of the fixed content types.
var ErrUnknownCategory = errors.New("unknown category")

// Category identifies one of the fixed content types.
type Category string

const (
	CategoryTextbook Category = "textbook"
	CategoryQuestion Category = "mcq"
	CategoryPaper    Category = "paper"
	CategoryNote     Category = "note"
)

var categoryAliases = map[string]Category{
	"textbook":      CategoryTextbook,
	"textbooks":     CategoryTextbook,
	"book":          CategoryTextbook,
	"books":         CategoryTextbook,
	"mcq":           CategoryQuestion,
	"mcqs":          CategoryQuestion,
	"question":      CategoryQuestion,
	"questions":     CategoryQuestion,
	"question-bank": CategoryQuestion,
	"paper":         CategoryPaper,
	"papers":        CategoryPaper,
	"exam-paper":    CategoryPaper,
	"exam-papers":   CategoryPaper,
	"note":          CategoryNote,
	"notes":         CategoryNote,
}

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{CategoryTextbook, CategoryQuestion, CategoryPaper, CategoryNote}
}

// ParseCategory resolves a category name or alias, case-insensitively.
func ParseCategory(s string) (Category, error) {
	c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryTextbook, CategoryQuestion, CategoryPaper, CategoryNote:
		return true
	}
	return false
}

// Label returns a human-readable name.
func (c Category) Label() string {
	switch c {
	case CategoryTextbook:
		return "Textbook"
	case CategoryQuestion:
		return "MCQ"
	case CategoryPaper:
		return "Exam paper"
	case CategoryNote:
		return "Note"
	}
	return string(c)
}
