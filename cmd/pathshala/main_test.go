package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pathshala/pathshala/internal/chat"
	"github.com/pathshala/pathshala/internal/expand"
	"github.com/pathshala/pathshala/internal/models"
)

func TestSearchArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after query are moved first",
			args:     []string{"physics 1st paper", "-limit", "5"},
			expected: []string{"-limit", "5", "physics 1st paper"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-limit", "5", "physics 1st paper"},
			expected: []string{"-limit", "5", "physics 1st paper"},
		},
		{
			name:     "query only returns unchanged",
			args:     []string{"গণিত"},
			expected: []string{"গণিত"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"bangla", "prothom", "potro", "-category", "paper"},
			expected: []string{"-category", "paper", "bangla", "prothom", "potro"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := searchArgsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("searchArgsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"physics"}, "physics"},
		{"multiple words", []string{"bangla", "1st", "paper"}, "bangla 1st paper"},
		{"single quoted phrase", []string{"bangla 1st paper"}, "bangla 1st paper"},
		{"bangla words", []string{"বাংলা", "১ম", "পত্র"}, "বাংলা ১ম পত্র"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSearchQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildSearchQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestParseCategories(t *testing.T) {
	tests := []struct {
		in   string
		want []models.Category
	}{
		{"", nil},
		{"mcq", []models.Category{"mcq"}},
		{"mcq, note ,,paper", []models.Category{"mcq", "note", "paper"}},
	}
	for _, tt := range tests {
		if got := parseCategories(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseCategories(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExpandReport(t *testing.T) {
	ex := expand.New()

	report := expandReport(ex, "bangla 1st paper")
	if report.Terms[0] != "bangla 1st paper" {
		t.Errorf("first term = %q, want the normalized query", report.Terms[0])
	}
	if !contains(report.Rules, "bangla_1st_paper") {
		t.Errorf("rules = %v, want bangla_1st_paper", report.Rules)
	}
	if len(report.Suggestions) != 0 {
		t.Errorf("suggestions = %v, want none for a recognized query", report.Suggestions)
	}

	report = expandReport(ex, "phisics")
	if !contains(report.Suggestions, "physics") {
		t.Errorf("suggestions = %v, want physics", report.Suggestions)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestSearchViaHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/search" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var q models.SearchQuery
		_ = json.NewDecoder(r.Body).Decode(&q)
		if q.Query == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid query: query cannot be empty"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(models.SearchResponse{Query: q.Query, Terms: []string{q.Query}, Total: 0})
	}))
	defer srv.Close()

	resp, err := searchViaHTTP(srv.Client(), srv.URL, &models.SearchQuery{Query: "physics"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Query != "physics" {
		t.Errorf("query = %q, want physics", resp.Query)
	}

	_, err = searchViaHTTP(srv.Client(), srv.URL, &models.SearchQuery{})
	if err == nil || !strings.Contains(err.Error(), "400: invalid query") {
		t.Errorf("expected 400 error with API message, got %v", err)
	}
}

func TestChatViaHTTP_rateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limit exceeded, retry after 2m0s"}`))
	}))
	defer srv.Close()

	_, err := chatViaHTTP(srv.Client(), srv.URL, chat.Request{Message: "hi"})
	if err == nil {
		t.Fatal("expected error")
	}
	for _, sub := range []string{"429", "rate limit exceeded", "retry after 120s"} {
		if !strings.Contains(err.Error(), sub) {
			t.Errorf("error %q missing %q", err, sub)
		}
	}
}

func TestStatusViaHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"records":{"mcq":4,"note":1},"total_records":5,"chat_enabled":true,"storage_driver":"sqlite"}`))
	}))
	defer srv.Close()

	status, err := statusViaHTTP(srv.Client(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if status.TotalRecords != 5 || status.Records[models.CategoryQuestion] != 4 || !status.ChatEnabled {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	t.Setenv("PATHSHALA_CONFIG", "")
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
storage:
  database_path: "test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWd) })

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s (canon %s), want %s (canon %s)", resolved, resolvedCanon, configPath, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
}

func TestLoadConfig_envOverridesDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "env.yaml")
	if err := os.WriteFile(configPath, []byte("server:\n  port: 9100\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATHSHALA_CONFIG", configPath)

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath || cfg.Server.Port != 9100 {
		t.Errorf("resolved %s port %d, want %s port 9100", resolved, cfg.Server.Port, configPath)
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	t.Setenv("PATHSHALA_CONFIG", "/nonexistent/ignored.yaml")
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "./test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.DatabasePath != filepath.Join(dir, "test.db") {
		t.Errorf("database_path = %s, want it resolved against the config dir", cfg.Storage.DatabasePath)
	}
}
