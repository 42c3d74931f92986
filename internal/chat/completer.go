// Package chat assembles study-material context for the assistant and
// sends the resulting prompt to a text-completion backend.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pathshala/pathshala/internal/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Completer turns a prompt into a reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenAICompleter talks to any OpenAI-compatible chat endpoint.
type OpenAICompleter struct {
	client      llms.Model
	temperature float64
}

// NewOpenAICompleter creates a completer from chat settings.
func NewOpenAICompleter(cfg config.ChatConfig) (*OpenAICompleter, error) {
	token := cfg.Token
	if token == "" {
		// local OpenAI-compatible servers accept any token
		token = "none"
	}
	client, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(token),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}
	return &OpenAICompleter{client: client, temperature: cfg.Temperature}, nil
}

func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, c.client, prompt, llms.WithTemperature(c.temperature))
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// MockCompleter returns canned replies and records every prompt it sees.
type MockCompleter struct {
	// Reply is returned when Fn is nil.
	Reply string
	Fn    func(prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

// ErrMockFailure is a convenience error for tests of failing completions.
var ErrMockFailure = errors.New("mock completion failure")

func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.Fn != nil {
		return m.Fn(prompt)
	}
	if m.Reply == "" {
		return "I could not find that in the study material.", nil
	}
	return m.Reply, nil
}

// Prompts returns a copy of the prompts received so far.
func (m *MockCompleter) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// NewCompleter builds the completer named by cfg.Provider.
func NewCompleter(cfg config.ChatConfig) (Completer, error) {
	switch cfg.Provider {
	case "mock":
		return &MockCompleter{}, nil
	case "openai", "":
		return NewOpenAICompleter(cfg)
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.Provider)
	}
}
