package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pathshala/pathshala/internal/config"
	"github.com/pathshala/pathshala/internal/metrics"
	"github.com/pathshala/pathshala/internal/models"
	"github.com/pathshala/pathshala/internal/ratelimit"
	"github.com/pathshala/pathshala/pkg/utils"
	"go.uber.org/zap"
)

var (
	// ErrEmptyMessage is returned for a message with no text.
	ErrEmptyMessage = errors.New("message must not be empty")
	// ErrRateLimited is matched by every *RateLimitedError.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// RateLimitedError reports how long the caller has to wait.
type RateLimitedError struct {
	RetryAfter time.Duration
	Decision   ratelimit.Decision
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s, retry after %s", ErrRateLimited, e.RetryAfter.Round(time.Second))
}

func (e *RateLimitedError) Is(target error) bool { return target == ErrRateLimited }

// Searcher finds study material for a message.
type Searcher interface {
	Search(ctx context.Context, q *models.SearchQuery) (*models.SearchResponse, error)
}

// Request is one student message.
type Request struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
	History []Turn `json:"history,omitempty"`
}

// Response is the assistant's reply and the material it was given.
type Response struct {
	Reply     string                 `json:"reply"`
	Sources   []*models.ScoredRecord `json:"sources"`
	Remaining int                    `json:"remaining"`
	Limit     int                    `json:"limit"`
}

// Assistant answers student messages using searched study material.
type Assistant struct {
	searcher  Searcher
	completer Completer
	limiter   *ratelimit.Limiter
	cfg       config.ChatConfig
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewAssistant wires an assistant. limiter and m may be nil.
func NewAssistant(
	searcher Searcher,
	completer Completer,
	limiter *ratelimit.Limiter,
	cfg config.ChatConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Assistant {
	return &Assistant{
		searcher:  searcher,
		completer: completer,
		limiter:   limiter,
		cfg:       cfg,
		metrics:   m,
		logger:    utils.OrNop(logger),
	}
}

// Reply checks the rate limit, gathers context, and completes the prompt.
func (a *Assistant) Reply(ctx context.Context, req Request) (*Response, error) {
	message := clean(req.Message)
	if message == "" {
		a.metrics.ObserveChat("invalid")
		return nil, ErrEmptyMessage
	}

	resp := &Response{Sources: []*models.ScoredRecord{}}
	if a.limiter != nil {
		key := strings.TrimSpace(req.UserID)
		if key == "" {
			key = "anonymous"
		}
		d, err := a.limiter.Allow(ctx, key)
		switch {
		case err != nil:
			a.logger.Warn("Rate limiter unavailable, allowing request", zap.Error(err))
		case !d.Allowed:
			a.metrics.ObserveChat("rate_limited")
			return nil, &RateLimitedError{RetryAfter: d.RetryAfter, Decision: d}
		default:
			resp.Remaining = d.Remaining
			resp.Limit = d.Limit
		}
	}

	if a.searcher != nil && a.cfg.ContextRecords > 0 {
		found, err := a.searcher.Search(ctx, &models.SearchQuery{Query: message, Limit: a.cfg.ContextRecords})
		if err != nil {
			a.logger.Warn("Context search failed, answering without material", zap.Error(err))
		} else {
			resp.Sources = found.Results
		}
	}

	prompt := BuildPrompt(PromptInput{
		System:          a.cfg.SystemPrompt,
		Context:         resp.Sources,
		History:         req.History,
		Message:         message,
		HistoryTurns:    a.cfg.HistoryTurns,
		MaxContextChars: a.cfg.MaxContextChars,
	})
	a.logger.Debug("Chat prompt built",
		zap.Int("sources", len(resp.Sources)),
		zap.Int("prompt_runes", len([]rune(prompt))))

	reply, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		a.metrics.ObserveChat("error")
		return nil, err
	}
	a.metrics.ObserveChat("ok")
	resp.Reply = reply
	return resp, nil
}
