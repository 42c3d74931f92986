package ranking

import (
	"reflect"
	"testing"

	"github.com/pathshala/pathshala/internal/models"
)

func titles(results []*models.ScoredRecord) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = models.Title(r.Record)
	}
	return out
}

func TestSortStable(t *testing.T) {
	results := []*models.ScoredRecord{
		{Record: &models.Note{Title: "A"}, Score: 5},
		{Record: &models.Note{Title: "B"}, Score: 5},
		{Record: &models.Note{Title: "C"}, Score: 9},
	}
	SortStable(results)
	if got := titles(results); !reflect.DeepEqual(got, []string{"C", "A", "B"}) {
		t.Errorf("SortStable order = %v, want [C A B]", got)
	}
	for i, r := range results {
		if r.Rank != i+1 {
			t.Errorf("rank[%d] = %d", i, r.Rank)
		}
	}
}

func TestRank_PreservesInputOrderOnTies(t *testing.T) {
	records := []models.Record{
		&models.Note{Title: "newest", Content: "physics"},
		&models.Note{Title: "Physics 2"},
		&models.Note{Title: "older", Content: "physics"},
		&models.Note{Title: "unrelated"},
	}
	got := titles(Rank(records, models.NewTermSet("physics")))
	want := []string{"Physics 2", "newest", "older", "unrelated"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rank() = %v, want %v", got, want)
	}
}

func TestPaginate(t *testing.T) {
	results := make([]*models.ScoredRecord, 5)
	for i := range results {
		results[i] = &models.ScoredRecord{Score: i}
	}
	tests := []struct {
		name          string
		offset, limit int
		want          int
	}{
		{"first page", 0, 2, 2},
		{"last partial page", 4, 2, 1},
		{"offset past end", 10, 2, 0},
		{"negative offset", -1, 3, 3},
		{"zero limit", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Paginate(results, tt.offset, tt.limit); len(got) != tt.want {
				t.Errorf("Paginate(%d, %d) returned %d, want %d", tt.offset, tt.limit, len(got), tt.want)
			}
		})
	}
}

func TestFilterByMinScore(t *testing.T) {
	results := []*models.ScoredRecord{{Score: 0}, {Score: 3}, {Score: 10}}
	if got := FilterByMinScore(results, 3); len(got) != 2 {
		t.Errorf("FilterByMinScore(3) kept %d, want 2", len(got))
	}
	if got := FilterByMinScore(results, 0); len(got) != 3 {
		t.Errorf("FilterByMinScore(0) kept %d, want 3", len(got))
	}
}
