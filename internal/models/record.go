package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Record is one piece of content. The concrete type is one of *Textbook,
// *Question, *Paper or *Note and always agrees with Category.
type Record interface {
	Meta() *Base
	Category() Category
	// SearchFields returns the record's text fields keyed by their JSON names.
	SearchFields() map[string]string
	// Sanitize rewrites every free-text field through clean.
	Sanitize(clean func(string) string)
}

// Base holds the fields every record carries.
type Base struct {
	ID        string    `json:"id" yaml:"id"`
	Source    string    `json:"source,omitempty" yaml:"source,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Meta returns the shared record fields.
func (b *Base) Meta() *Base { return b }

// Textbook is a board textbook.
type Textbook struct {
	Base        `yaml:",inline"`
	Title       string `json:"title" yaml:"title"`
	Subject     string `json:"subject" yaml:"subject"`
	ClassLevel  string `json:"class_level,omitempty" yaml:"class_level,omitempty"`
	Author      string `json:"author,omitempty" yaml:"author,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	FileURL     string `json:"file_url,omitempty" yaml:"file_url,omitempty"`
}

func (t *Textbook) Category() Category { return CategoryTextbook }

func (t *Textbook) SearchFields() map[string]string {
	return map[string]string{
		"title":       t.Title,
		"subject":     t.Subject,
		"class_level": t.ClassLevel,
		"author":      t.Author,
		"description": t.Description,
	}
}

func (t *Textbook) Sanitize(clean func(string) string) {
	t.Title = clean(t.Title)
	t.Subject = clean(t.Subject)
	t.ClassLevel = clean(t.ClassLevel)
	t.Author = clean(t.Author)
	t.Description = clean(t.Description)
}

// Question is a multiple-choice question from the question bank.
type Question struct {
	Base        `yaml:",inline"`
	Question    string   `json:"question" yaml:"question"`
	Options     []string `json:"options,omitempty" yaml:"options,omitempty"`
	Answer      string   `json:"answer,omitempty" yaml:"answer,omitempty"`
	Explanation string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Subject     string   `json:"subject" yaml:"subject"`
	Chapter     string   `json:"chapter,omitempty" yaml:"chapter,omitempty"`
	Board       string   `json:"board,omitempty" yaml:"board,omitempty"`
	Year        int      `json:"year,omitempty" yaml:"year,omitempty"`
}

func (q *Question) Category() Category { return CategoryQuestion }

func (q *Question) SearchFields() map[string]string {
	return map[string]string{
		"question":    q.Question,
		"subject":     q.Subject,
		"chapter":     q.Chapter,
		"board":       q.Board,
		"explanation": q.Explanation,
	}
}

func (q *Question) Sanitize(clean func(string) string) {
	q.Question = clean(q.Question)
	for i := range q.Options {
		q.Options[i] = clean(q.Options[i])
	}
	q.Answer = clean(q.Answer)
	q.Explanation = clean(q.Explanation)
	q.Subject = clean(q.Subject)
	q.Chapter = clean(q.Chapter)
	q.Board = clean(q.Board)
}

// Paper is a past exam paper.
type Paper struct {
	Base     `yaml:",inline"`
	Title    string `json:"title" yaml:"title"`
	Subject  string `json:"subject" yaml:"subject"`
	Board    string `json:"board,omitempty" yaml:"board,omitempty"`
	ExamType string `json:"exam_type,omitempty" yaml:"exam_type,omitempty"`
	Year     int    `json:"year,omitempty" yaml:"year,omitempty"`
	FileURL  string `json:"file_url,omitempty" yaml:"file_url,omitempty"`
}

func (p *Paper) Category() Category { return CategoryPaper }

func (p *Paper) SearchFields() map[string]string {
	year := ""
	if p.Year > 0 {
		year = strconv.Itoa(p.Year)
	}
	return map[string]string{
		"title":     p.Title,
		"subject":   p.Subject,
		"board":     p.Board,
		"exam_type": p.ExamType,
		"year":      year,
	}
}

func (p *Paper) Sanitize(clean func(string) string) {
	p.Title = clean(p.Title)
	p.Subject = clean(p.Subject)
	p.Board = clean(p.Board)
	p.ExamType = clean(p.ExamType)
}

// Note is a study note written by an instructor or student.
type Note struct {
	Base    `yaml:",inline"`
	Title   string `json:"title" yaml:"title"`
	Subject string `json:"subject" yaml:"subject"`
	Chapter string `json:"chapter,omitempty" yaml:"chapter,omitempty"`
	Content string `json:"content" yaml:"content"`
	Author  string `json:"author,omitempty" yaml:"author,omitempty"`
}

func (n *Note) Category() Category { return CategoryNote }

func (n *Note) SearchFields() map[string]string {
	return map[string]string{
		"title":   n.Title,
		"subject": n.Subject,
		"chapter": n.Chapter,
		"content": n.Content,
		"author":  n.Author,
	}
}

func (n *Note) Sanitize(clean func(string) string) {
	n.Title = clean(n.Title)
	n.Subject = clean(n.Subject)
	n.Chapter = clean(n.Chapter)
	n.Content = clean(n.Content)
	n.Author = clean(n.Author)
}

// NewRecord returns an empty record of the given category.
func NewRecord(c Category) (Record, error) {
	switch c {
	case CategoryTextbook:
		return &Textbook{}, nil
	case CategoryQuestion:
		return &Question{}, nil
	case CategoryPaper:
		return &Paper{}, nil
	case CategoryNote:
		return &Note{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
}

// DecodeRecord unmarshals the JSON form of a record of category c.
func DecodeRecord(c Category, data []byte) (Record, error) {
	rec, err := NewRecord(c)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("failed to decode %s record: %w", c, err)
	}
	return rec, nil
}

// Title returns the record's display title. Questions use the question text.
func Title(r Record) string {
	if q, ok := r.(*Question); ok {
		return q.Question
	}
	return r.SearchFields()["title"]
}
