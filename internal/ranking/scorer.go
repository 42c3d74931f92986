package ranking

import (
	"strings"

	"github.com/pathshala/pathshala/internal/models"
	"github.com/pathshala/pathshala/pkg/utils"
)

// Fields are the scorable parts of a record. Absent fields are empty.
type Fields struct {
	Title   string
	Subject string
	Body    string
	Chapter string
	Board   string
}

// bodyKeys are tried in order for the body of an untyped record.
var bodyKeys = []string{"question", "body", "content"}

// FieldsOf projects a typed record onto Fields.
func FieldsOf(r models.Record) Fields {
	if r == nil {
		return Fields{}
	}
	f := r.SearchFields()
	return Fields{
		Title:   f["title"],
		Subject: f["subject"],
		Body:    firstNonEmpty(f, bodyKeys),
		Chapter: f["chapter"],
		Board:   f["board"],
	}
}

// FieldsOfMap projects an untyped record onto Fields. Non-string values are ignored.
func FieldsOfMap(m map[string]any) Fields {
	s := make(map[string]string, len(m))
	for k, v := range m {
		if str, ok := v.(string); ok {
			s[k] = str
		}
	}
	return Fields{
		Title:   s["title"],
		Subject: s["subject"],
		Body:    firstNonEmpty(s, bodyKeys),
		Chapter: s["chapter"],
		Board:   s["board"],
	}
}

func firstNonEmpty(m map[string]string, keys []string) string {
	for _, k := range keys {
		if v := m[k]; v != "" {
			return v
		}
	}
	return ""
}

// Scorer computes relevance scores. The zero value is not usable; use NewScorer.
type Scorer struct {
	weights Weights
}

// NewScorer returns a Scorer; zero weights take their defaults.
func NewScorer(w Weights) *Scorer {
	w.ApplyDefaults()
	return &Scorer{weights: w}
}

var defaultScorer = NewScorer(DefaultWeights())

// Score scores f against terms with the default weights.
func Score(f Fields, terms *models.TermSet) int {
	return defaultScorer.Score(f, terms)
}

// ScoreRecord scores a typed record with the default weights.
func ScoreRecord(r models.Record, terms *models.TermSet) int {
	return defaultScorer.Score(FieldsOf(r), terms)
}

// ScoreMap scores an untyped record with the default weights.
func ScoreMap(m map[string]any, terms *models.TermSet) int {
	return defaultScorer.Score(FieldsOfMap(m), terms)
}

// Score sums, over every non-empty term, the blob weight if any field
// contains it, plus the title weight if the title does, plus the subject
// weight if the subject does. The result is never negative.
func (s *Scorer) Score(f Fields, terms *models.TermSet) int {
	title := fold(f.Title)
	subject := fold(f.Subject)
	blob := strings.Join([]string{
		title,
		subject,
		fold(f.Body),
		fold(f.Chapter),
		fold(f.Board),
	}, " ")

	score := 0
	for _, term := range terms.Terms() {
		if term == "" {
			continue
		}
		if strings.Contains(blob, term) {
			score += s.weights.Blob
		}
		if strings.Contains(title, term) {
			score += s.weights.Title
		}
		if strings.Contains(subject, term) {
			score += s.weights.Subject
		}
	}
	return score
}

// fold puts record text in the form expanded terms are in.
func fold(s string) string {
	return utils.NFC(strings.ToLower(s))
}
