package chat

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/pathshala/pathshala/internal/models"
	"github.com/pathshala/pathshala/pkg/utils"
)

// Roles a Turn can have.
const (
	RoleStudent   = "student"
	RoleAssistant = "assistant"
)

// Turn is one earlier message in the conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// PromptInput is everything BuildPrompt needs.
type PromptInput struct {
	System  string
	Context []*models.ScoredRecord
	History []Turn
	Message string
	// HistoryTurns keeps only the last N turns; 0 keeps all.
	HistoryTurns int
	// MaxContextChars caps the study material block in runes; 0 means no cap.
	MaxContextChars int
}

// bodyRunes caps the body excerpt of a single context line.
const bodyRunes = 300

var strict = bluemonday.StrictPolicy()

// clean strips markup and collapses whitespace. StrictPolicy escapes the
// text it keeps, so entities are decoded again for the plain-text prompt.
func clean(s string) string {
	return utils.CollapseSpace(html.UnescapeString(strict.Sanitize(s)))
}

// BuildPrompt renders the system instructions, the study material block,
// the recent history and the student's message, in that order.
func BuildPrompt(in PromptInput) string {
	var b strings.Builder
	if s := strings.TrimSpace(in.System); s != "" {
		b.WriteString(s)
		b.WriteString("\n\n")
	}

	if block := contextBlock(in.Context, in.MaxContextChars); block != "" {
		b.WriteString("Relevant study material:\n")
		b.WriteString(block)
		b.WriteString("\n")
	}

	history := in.History
	if in.HistoryTurns > 0 && len(history) > in.HistoryTurns {
		history = history[len(history)-in.HistoryTurns:]
	}
	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, t := range history {
			content := clean(t.Content)
			if content == "" {
				continue
			}
			fmt.Fprintf(&b, "%s: %s\n", roleLabel(t.Role), content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Student: %s\nAssistant:", clean(in.Message))
	return b.String()
}

func roleLabel(role string) string {
	if role == RoleAssistant {
		return "Assistant"
	}
	return "Student"
}

func contextBlock(records []*models.ScoredRecord, maxChars int) string {
	var b strings.Builder
	used := 0
	for i, sr := range records {
		if sr == nil || sr.Record == nil {
			continue
		}
		line := fmt.Sprintf("%d. %s\n", i+1, describe(sr.Record))
		n := len([]rune(line))
		if maxChars > 0 && used+n > maxChars {
			break
		}
		used += n
		b.WriteString(line)
	}
	return b.String()
}

// describe renders one record as a single line.
func describe(r models.Record) string {
	parts := []string{"[" + r.Category().Label() + "]", clean(models.Title(r))}
	add := func(label, v string) {
		if v = clean(v); v != "" {
			parts = append(parts, label+": "+v)
		}
	}
	var body string
	switch rec := r.(type) {
	case *models.Textbook:
		add("subject", rec.Subject)
		add("class", rec.ClassLevel)
		body = rec.Description
	case *models.Question:
		add("subject", rec.Subject)
		add("chapter", rec.Chapter)
		add("board", rec.Board)
		if len(rec.Options) > 0 {
			add("options", strings.Join(rec.Options, " | "))
		}
		add("answer", rec.Answer)
		body = rec.Explanation
	case *models.Paper:
		add("subject", rec.Subject)
		add("board", rec.Board)
		add("exam", rec.ExamType)
		if rec.Year > 0 {
			add("year", fmt.Sprint(rec.Year))
		}
	case *models.Note:
		add("subject", rec.Subject)
		add("chapter", rec.Chapter)
		body = rec.Content
	}
	if body = clean(body); body != "" {
		parts = append(parts, "- "+utils.Truncate(body, bodyRunes))
	}
	return strings.Join(parts, " ")
}
