package ranking

import (
	"testing"

	"github.com/pathshala/pathshala/internal/models"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
		terms  []string
		want   int
	}{
		{"title match", Fields{Title: "Physics basics", Subject: "Science"}, []string{"physics"}, 11},
		{"subject match", Fields{Title: "Basics", Subject: "Physics"}, []string{"physics"}, 6},
		{"title and subject", Fields{Title: "Physics", Subject: "Physics"}, []string{"physics"}, 16},
		{"body only", Fields{Body: "What is physics?"}, []string{"physics"}, 1},
		{"chapter and board", Fields{Chapter: "Motion", Board: "Dhaka"}, []string{"motion", "dhaka"}, 2},
		{"no match", Fields{Title: "Biology"}, []string{"physics"}, 0},
		{"empty fields", Fields{}, []string{"physics"}, 0},
		{"empty term ignored", Fields{Title: "x"}, []string{""}, 0},
		{"multiple terms", Fields{Title: "Math 1st paper", Subject: "Mathematics"}, []string{"math", "mathematics", "gonit"}, 11 + 5 + 1 + 5},
		{"bengali", Fields{Title: "গণিত অধ্যায় ১"}, []string{"গণিত"}, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.fields, models.NewTermSet(tt.terms...))
			if got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScore_TitleMonotonic(t *testing.T) {
	terms := models.NewTermSet("optics")
	base := Fields{Title: "Light", Subject: "Physics", Body: "optics chapter"}
	with := base
	with.Title = "Light and optics"
	if Score(with, terms)-Score(base, terms) < 10 {
		t.Errorf("title match should add at least 10: %d vs %d", Score(with, terms), Score(base, terms))
	}
}

func TestScoreRecord(t *testing.T) {
	terms := models.NewTermSet("physics")
	q := &models.Question{Question: "Which law of physics?", Subject: "Physics", Chapter: "Newton", Board: "Dhaka"}
	if got := ScoreRecord(q, terms); got != 6 {
		t.Errorf("ScoreRecord(question) = %d, want 6", got)
	}
	note := &models.Note{Title: "Physics notes", Content: "physics"}
	if got := ScoreRecord(note, terms); got != 11 {
		t.Errorf("ScoreRecord(note) = %d, want 11", got)
	}
	if got := ScoreRecord(nil, terms); got != 0 {
		t.Errorf("ScoreRecord(nil) = %d", got)
	}
}

func TestScoreMap(t *testing.T) {
	terms := models.NewTermSet("physics")
	rec := map[string]any{"title": "Physics basics", "subject": "Science", "year": 2023, "board": nil}
	if got := ScoreMap(rec, terms); got != 11 {
		t.Errorf("ScoreMap() = %d, want 11", got)
	}
}

func TestNewScorer_Weights(t *testing.T) {
	s := NewScorer(Weights{Title: 20})
	got := s.Score(Fields{Title: "physics"}, models.NewTermSet("physics"))
	if got != 21 {
		t.Errorf("custom title weight: got %d, want 21", got)
	}
}

func TestScore_PrecomposedBengaliNukta(t *testing.T) {
	// Vocabulary terms are NFC, where YYA is YA + NUKTA.
	decomposed := "রসায়ন"
	precomposed := "রসায়ন"
	got := Score(Fields{Subject: precomposed}, models.NewTermSet(decomposed))
	if got != 6 {
		t.Errorf("Score() = %d, want 6 for a precomposed subject", got)
	}
}
