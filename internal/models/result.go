package models

import (
	"encoding/json"
	"fmt"
)

// ScoredRecord is a record annotated with its relevance score.
type ScoredRecord struct {
	Record Record `json:"record"`
	Score  int    `json:"score"`
	Rank   int    `json:"rank"`
}

type scoredRecordJSON struct {
	Category Category        `json:"category"`
	Record   json.RawMessage `json:"record"`
	Score    int             `json:"score"`
	Rank     int             `json:"rank"`
}

func (s ScoredRecord) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(s.Record)
	if err != nil {
		return nil, err
	}
	out := scoredRecordJSON{Record: data, Score: s.Score, Rank: s.Rank}
	if s.Record != nil {
		out.Category = s.Record.Category()
	}
	return json.Marshal(out)
}

func (s *ScoredRecord) UnmarshalJSON(data []byte) error {
	var in scoredRecordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	rec, err := DecodeRecord(in.Category, in.Record)
	if err != nil {
		return fmt.Errorf("failed to decode scored record: %w", err)
	}
	s.Record = rec
	s.Score = in.Score
	s.Rank = in.Rank
	return nil
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Query   string          `json:"query"`
	Terms   []string        `json:"terms"`
	Results []*ScoredRecord `json:"results"`
	// Total counts every scored match before pagination.
	Total     int   `json:"total"`
	QueryTime int64 `json:"query_time_ms"`
	// Suggestions holds "did you mean" terms, set only when nothing matched.
	Suggestions []string `json:"suggestions,omitempty"`
}
