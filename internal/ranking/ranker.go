package ranking

import (
	"sort"

	"github.com/pathshala/pathshala/internal/models"
)

// Rank scores records and returns them ordered by descending score. Records
// with equal scores keep their input order.
func (s *Scorer) Rank(records []models.Record, terms *models.TermSet) []*models.ScoredRecord {
	out := make([]*models.ScoredRecord, 0, len(records))
	for _, r := range records {
		out = append(out, &models.ScoredRecord{Record: r, Score: s.Score(FieldsOf(r), terms)})
	}
	SortStable(out)
	return out
}

// Rank ranks records with the default weights.
func Rank(records []models.Record, terms *models.TermSet) []*models.ScoredRecord {
	return defaultScorer.Rank(records, terms)
}

// SortStable orders results by descending score, preserving the relative
// order of ties, and assigns 1-based ranks.
func SortStable(results []*models.ScoredRecord) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	for i, r := range results {
		r.Rank = i + 1
	}
}

// FilterByMinScore drops results scoring below minScore.
func FilterByMinScore(results []*models.ScoredRecord, minScore int) []*models.ScoredRecord {
	if minScore <= 0 {
		return results
	}
	out := results[:0:0]
	for _, r := range results {
		if r.Score >= minScore {
			out = append(out, r)
		}
	}
	return out
}

// Paginate returns the page [offset, offset+limit) of results.
func Paginate(results []*models.ScoredRecord, offset, limit int) []*models.ScoredRecord {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(results) || limit <= 0 {
		return []*models.ScoredRecord{}
	}
	end := offset + limit
	if end > len(results) {
		end = len(results)
	}
	return results[offset:end]
}
