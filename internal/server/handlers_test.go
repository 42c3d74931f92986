package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pathshala/pathshala/internal/auth"
	"github.com/pathshala/pathshala/internal/chat"
	"github.com/pathshala/pathshala/internal/config"
	"github.com/pathshala/pathshala/internal/metrics"
	"github.com/pathshala/pathshala/internal/models"
	"github.com/pathshala/pathshala/internal/ratelimit"
	"github.com/pathshala/pathshala/internal/search"
	"github.com/pathshala/pathshala/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	handler   http.Handler
	store     storage.Store
	completer *chat.MockCompleter
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Storage.DatabasePath = filepath.Join(dir, "content.db")
	config.ApplyDefaults(cfg)

	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, rec := range []models.Record{
		&models.Textbook{Base: models.Base{ID: "t1", CreatedAt: base}, Title: "Higher Math 1st Paper", Subject: "Higher Math", ClassLevel: "HSC"},
		&models.Question{Base: models.Base{ID: "q1", CreatedAt: base}, Question: "Solve x+2=4", Subject: "Math", Options: []string{"1", "2"}, Answer: "2"},
		&models.Note{Base: models.Base{ID: "n1", CreatedAt: base}, Title: "Optics", Subject: "Physics", Content: "Light bends."},
	} {
		require.NoError(t, store.Put(context.Background(), rec))
	}

	m := metrics.New(prometheus.NewRegistry())
	engine := search.NewEngine(nil, store, &cfg.Search, m, nil)
	completer := &chat.MockCompleter{Reply: "Here is how to solve it."}
	assistant := chat.NewAssistant(engine, completer, nil, cfg.Chat, m, nil)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	verifier, err := auth.NewVerifier("admin", string(hash))
	require.NoError(t, err)

	all := append([]Option{WithMetrics(m), WithAssistant(assistant), WithVerifier(verifier)}, opts...)
	srv := NewServer(engine, store, cfg, nil, all...)
	return &testEnv{handler: srv.Router(), store: store, completer: completer}
}

func (e *testEnv) do(t *testing.T, method, target string, body any, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.SetBasicAuth("admin", "s3cret")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out), rec.Body.String())
	return out
}

func TestHandleSearch(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/search", models.SearchQuery{Query: "math"}, false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[models.SearchResponse](t, rec)
	assert.Equal(t, 2, resp.Total)
	assert.Contains(t, resp.Terms, "গণিত")
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "t1", resp.Results[0].Record.Meta().ID)
	assert.Equal(t, 1, resp.Results[0].Rank)
}

func TestHandleSearchGet(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/search?q=math&category=mcq,note&limit=5", nil, false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[models.SearchResponse](t, rec)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, models.CategoryQuestion, resp.Results[0].Record.Category())

	rec = env.do(t, http.MethodGet, "/api/v1/search?q=math&limit=many", nil, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSearch_Errors(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/search", `{"query": `, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/search", models.SearchQuery{Query: "  "}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid query")

	rec = env.do(t, http.MethodGet, "/api/v1/search?q=math&category=poetry", nil, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSearch_RateLimited(t *testing.T) {
	limiter := ratelimit.New(ratelimit.NewMemoryStore(nil), 1, time.Hour)
	env := newTestEnv(t, WithSearchLimiter(limiter))

	rec := env.do(t, http.MethodGet, "/api/v1/search?q=math", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = env.do(t, http.MethodGet, "/api/v1/search?q=math", nil, false)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// other routes are not limited
	rec = env.do(t, http.MethodGet, "/api/v1/expand?q=math", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleExpand(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/expand?q=bangla+1st+paper", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[expandResponse](t, rec)
	assert.Equal(t, "bangla 1st paper", resp.Terms[0])
	assert.Contains(t, resp.Terms, "bangla prothom potro")
	assert.Contains(t, resp.Rules, "bangla_1st_paper")
	assert.Empty(t, resp.Suggestions)

	rec = env.do(t, http.MethodGet, "/api/v1/expand?q=phisics", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[expandResponse](t, rec)
	assert.Equal(t, []string{"phisics"}, resp.Terms)
	assert.Contains(t, resp.Suggestions, "physics")

	rec = env.do(t, http.MethodGet, "/api/v1/expand", nil, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleConditions(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/conditions", conditionsRequest{Category: "mcq", Terms: []string{"Math", "it's"}}, false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[conditionsResponse](t, rec)
	assert.Equal(t, models.CategoryQuestion, resp.Category)
	assert.Len(t, resp.Conditions, 8)
	assert.True(t, strings.HasPrefix(resp.Filter, "question.ilike.*math*,subject.ilike.*math*"), resp.Filter)
	assert.Contains(t, resp.Filter, "question.ilike.*its*")

	rec = env.do(t, http.MethodPost, "/api/v1/conditions", conditionsRequest{Category: "textbook", Query: "math"}, false)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[conditionsResponse](t, rec)
	assert.Contains(t, resp.Filter, "title.ilike.*গণিত*")

	rec = env.do(t, http.MethodPost, "/api/v1/conditions", conditionsRequest{Category: "poetry", Terms: []string{"x"}}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/conditions", conditionsRequest{Category: "note"}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleChat(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/chat", chat.Request{UserID: "u1", Message: "how do I solve x+2=4 in math?"}, false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[map[string]any](t, rec)
	assert.Equal(t, "Here is how to solve it.", resp["reply"])

	prompts := env.completer.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Solve x+2=4")

	rec = env.do(t, http.MethodPost, "/api/v1/chat", chat.Request{Message: " "}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleChat_RateLimited(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewSQLiteStore(filepath.Join(dir, "content.db"))
	require.NoError(t, err)
	defer store.Close()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	engine := search.NewEngine(nil, store, &cfg.Search, nil, nil)
	limiter := ratelimit.New(ratelimit.NewMemoryStore(nil), 1, time.Hour)
	assistant := chat.NewAssistant(engine, &chat.MockCompleter{Reply: "ok"}, limiter, cfg.Chat, nil, nil)
	h := NewServer(engine, store, cfg, nil, WithAssistant(assistant)).Router()

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"user_id":"u1","message":"hi"}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}
	rec := send()
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = send()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")
}

func TestHandleChat_Disabled(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	h := NewServer(nil, nil, cfg, nil).Router()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"message":"hi"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleRecords(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/records/mcq/q1", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	q := decode[models.Question](t, rec)
	assert.Equal(t, "Solve x+2=4", q.Question)

	rec = env.do(t, http.MethodGet, "/api/v1/records/mcq/missing", nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/records/poetry/q1", nil, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAdminRecords(t *testing.T) {
	env := newTestEnv(t)

	note := map[string]any{"title": "<b>Waves</b>", "subject": "Physics", "content": "Sound is a wave."}
	rec := env.do(t, http.MethodPost, "/api/v1/admin/records/note", note, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/admin/records/note", note, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Note](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Waves", created.Title)
	assert.False(t, created.CreatedAt.IsZero())

	rec = env.do(t, http.MethodPost, "/api/v1/admin/records/note", map[string]any{"id": created.ID, "title": "Waves and sound"}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	got, err := env.store.Get(context.Background(), models.CategoryNote, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Waves and sound", got.(*models.Note).Title)

	rec = env.do(t, http.MethodPost, "/api/v1/admin/records/note", map[string]any{"subject": "Physics"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/admin/records/note/"+created.ID, nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/v1/admin/records/note/"+created.ID, nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleAdmin_NotConfigured(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	h := NewServer(nil, nil, cfg, nil).Router()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/records/note/x", nil)
	req.SetBasicAuth("admin", "anything")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleStatus(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/status", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[map[string]any](t, rec)
	assert.EqualValues(t, 3, resp["total_records"])
	assert.Equal(t, "sqlite", resp["storage_driver"])
	assert.Equal(t, true, resp["chat_enabled"])
	records := resp["records"].(map[string]any)
	assert.EqualValues(t, 1, records["mcq"])
	assert.Greater(t, resp["disk_usage_bytes"], 0.0)
}

func TestHandleHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	env.do(t, http.MethodGet, "/api/v1/search?q=math", nil, false)
	rec = env.do(t, http.MethodGet, "/metrics", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `pathshala_search_requests_total{status="ok"} 1`)
	assert.Contains(t, body, `route="/api/v1/search"`)
}

func TestErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, errorStatus(storage.ErrNotFound))
	assert.Equal(t, http.StatusTooManyRequests, errorStatus(&chat.RateLimitedError{RetryAfter: time.Minute}))
	assert.Equal(t, http.StatusBadRequest, errorStatus(models.ErrUnknownCategory))
	assert.Equal(t, http.StatusBadRequest, errorStatus(chat.ErrEmptyMessage))
	assert.Equal(t, http.StatusInternalServerError, errorStatus(assert.AnError))
}
