package importer

import (
	"encoding/json"
	"fmt"

	"github.com/pathshala/pathshala/internal/models"
	"gopkg.in/yaml.v3"
)

// Bundle is a content file holding records of any category.
type Bundle struct {
	Textbooks []*models.Textbook `json:"textbooks,omitempty" yaml:"textbooks,omitempty"`
	Questions []*models.Question `json:"questions,omitempty" yaml:"questions,omitempty"`
	Papers    []*models.Paper    `json:"papers,omitempty" yaml:"papers,omitempty"`
	Notes     []*models.Note     `json:"notes,omitempty" yaml:"notes,omitempty"`
}

func parseBundle(content []byte, ext string) (*Bundle, error) {
	var b Bundle
	switch ext {
	case ".json":
		if err := json.Unmarshal(content, &b); err != nil {
			return nil, fmt.Errorf("parse JSON bundle: %w", err)
		}
	default:
		if err := yaml.Unmarshal(content, &b); err != nil {
			return nil, fmt.Errorf("parse YAML bundle: %w", err)
		}
	}
	return &b, nil
}

// Records flattens the bundle in category order, skipping nil entries.
func (b *Bundle) Records() []models.Record {
	var out []models.Record
	for _, r := range b.Textbooks {
		if r != nil {
			out = append(out, r)
		}
	}
	for _, r := range b.Questions {
		if r != nil {
			out = append(out, r)
		}
	}
	for _, r := range b.Papers {
		if r != nil {
			out = append(out, r)
		}
	}
	for _, r := range b.Notes {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
