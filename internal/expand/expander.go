// Package expand widens a raw search query into the set of equivalent terms
// (spelling, script, phonetic and synonym variants) used to query content.
package expand

import (
	"strings"

	"github.com/pathshala/pathshala/internal/models"
	"github.com/pathshala/pathshala/internal/vocabulary"
)

// Expander matches queries against a vocabulary and a pattern rule table.
// It holds no mutable state and is safe for concurrent use.
type Expander struct {
	entries  []vocabulary.Entry
	patterns []vocabulary.PatternRule
	speller  *Speller

	spellerOpts []SpellerOption
}

// Option configures an Expander.
type Option func(*Expander)

// WithEntries replaces the vocabulary table.
func WithEntries(entries []vocabulary.Entry) Option {
	return func(e *Expander) { e.entries = entries }
}

// WithPatterns replaces the pattern rule table.
func WithPatterns(patterns []vocabulary.PatternRule) Option {
	return func(e *Expander) { e.patterns = patterns }
}

// WithSpellerOptions configures the "did you mean" speller.
func WithSpellerOptions(opts ...SpellerOption) Option {
	return func(e *Expander) { e.spellerOpts = append(e.spellerOpts, opts...) }
}

// New returns an Expander over the built-in vocabulary.
func New(opts ...Option) *Expander {
	e := &Expander{
		entries:  vocabulary.Entries(),
		patterns: vocabulary.Patterns(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.speller = NewSpeller(e.entries, e.spellerOpts...)
	return e
}

var defaultExpander = New()

// Expand expands query with the built-in vocabulary.
func Expand(query string) *models.TermSet {
	return defaultExpander.Expand(query)
}

// Normalize trims and lower-cases a query.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Expand returns the normalized query followed by every term of each
// vocabulary entry the query mentions and the output of every pattern rule
// it satisfies. The result always contains the normalized query, even "".
func (e *Expander) Expand(query string) *models.TermSet {
	q := Normalize(query)
	set := models.NewTermSet(q)
	key := vocabulary.Normalize(q)
	for _, entry := range e.entries {
		if entry.Matches(key) {
			set.AddAll(entry.Terms())
		}
	}
	for _, rule := range e.patterns {
		if rule.Match != nil && rule.Match(key) {
			set.AddAll(rule.Terms)
		}
	}
	return set
}

// Matched reports which vocabulary entry IDs and rule names query hits.
func (e *Expander) Matched(query string) (entries, rules []string) {
	key := vocabulary.Normalize(query)
	for _, entry := range e.entries {
		if entry.Matches(key) {
			entries = append(entries, entry.ID)
		}
	}
	for _, rule := range e.patterns {
		if rule.Match != nil && rule.Match(key) {
			rules = append(rules, rule.Name)
		}
	}
	return entries, rules
}

// Suggest returns vocabulary terms close to the query's unrecognized words.
func (e *Expander) Suggest(query string) []string {
	return e.speller.Suggest(query)
}
