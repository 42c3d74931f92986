package chat

import (
	"strings"
	"testing"

	"github.com/pathshala/pathshala/internal/models"
	"github.com/stretchr/testify/assert"
)

func scored(r models.Record) *models.ScoredRecord {
	return &models.ScoredRecord{Record: r}
}

func TestBuildPrompt_Order(t *testing.T) {
	p := BuildPrompt(PromptInput{
		System: "You help students.",
		Context: []*models.ScoredRecord{
			scored(&models.Question{
				Question: "What is the unit of force?",
				Options:  []string{"Newton", "Joule"},
				Answer:   "Newton",
				Subject:  "Physics",
				Board:    "Dhaka",
			}),
			scored(&models.Note{Title: "Motion", Subject: "Physics", Content: "<p>Velocity is <b>speed</b> with direction.</p>"}),
		},
		History: []Turn{
			{Role: RoleStudent, Content: "hello"},
			{Role: RoleAssistant, Content: "Hi! What are you studying?"},
		},
		Message: "explain force",
	})

	sys := strings.Index(p, "You help students.")
	material := strings.Index(p, "Relevant study material:")
	history := strings.Index(p, "Conversation so far:")
	msg := strings.Index(p, "Student: explain force")
	assert.True(t, sys == 0 && sys < material && material < history && history < msg, p)
	assert.True(t, strings.HasSuffix(p, "Assistant:"))

	assert.Contains(t, p, "1. [MCQ] What is the unit of force? subject: Physics board: Dhaka options: Newton | Joule answer: Newton")
	assert.Contains(t, p, "2. [Note] Motion subject: Physics - Velocity is speed with direction.")
	assert.NotContains(t, p, "<b>")
	assert.Contains(t, p, "Assistant: Hi! What are you studying?")
}

func TestBuildPrompt_HistoryTrimmed(t *testing.T) {
	p := BuildPrompt(PromptInput{
		History: []Turn{
			{Role: RoleStudent, Content: "first"},
			{Role: RoleAssistant, Content: "second"},
			{Role: RoleStudent, Content: "third"},
		},
		HistoryTurns: 2,
		Message:      "now",
	})
	assert.NotContains(t, p, "first")
	assert.Contains(t, p, "Assistant: second")
	assert.Contains(t, p, "Student: third")
}

func TestBuildPrompt_ContextCap(t *testing.T) {
	var recs []*models.ScoredRecord
	for i := 0; i < 20; i++ {
		recs = append(recs, scored(&models.Textbook{Title: "Higher Math First Paper", Subject: "Math"}))
	}
	p := BuildPrompt(PromptInput{Context: recs, MaxContextChars: 120, Message: "x"})
	block := p[:strings.Index(p, "Student:")]
	assert.LessOrEqual(t, len([]rune(block)), 120+len("Relevant study material:\n\n"))
	assert.Contains(t, p, "1. [Textbook]")
	assert.NotContains(t, p, "20. [Textbook]")
}

func TestBuildPrompt_NoContext(t *testing.T) {
	p := BuildPrompt(PromptInput{Message: "  what is   osmosis? "})
	assert.Equal(t, "Student: what is osmosis?\nAssistant:", p)
}

func TestClean_DecodesEntities(t *testing.T) {
	assert.Equal(t, "Newton's law & motion", clean("<i>Newton's</i> law &amp; motion"))
}

func TestDescribe_TruncatesBody(t *testing.T) {
	long := strings.Repeat("অ", bodyRunes+50)
	line := describe(&models.Note{Title: "t", Content: long})
	assert.True(t, strings.HasSuffix(line, "..."))
	assert.Less(t, len([]rune(line)), bodyRunes+30)
}
