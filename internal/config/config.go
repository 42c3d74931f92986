// Package config provides configuration loading and structs for the pathshala server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pathshala/pathshala/internal/ranking"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the file.
const (
	EnvConfigPath = "PATHSHALA_CONFIG"
	EnvChatToken  = "PATHSHALA_CHAT_TOKEN"
	EnvDSN        = "PATHSHALA_DATABASE_DSN"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Search    SearchConfig    `yaml:"search"`
	Chat      ChatConfig      `yaml:"chat"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Admin     AdminConfig     `yaml:"admin"`
	Importer  ImporterConfig  `yaml:"importer"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBleve    = "bleve"
)

// StorageConfig selects and configures the record store.
type StorageConfig struct {
	Driver          string        `yaml:"driver"`
	DatabasePath    string        `yaml:"database_path"`
	DSN             string        `yaml:"dsn"`
	BleveIndexPath  string        `yaml:"bleve_index_path"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// SearchConfig holds search orchestration and ranking settings.
type SearchConfig struct {
	DefaultLimit     int             `yaml:"default_limit"`
	MaxLimit         int             `yaml:"max_limit"`
	PerCategoryLimit int             `yaml:"per_category_limit"`
	MaxConcurrency   int             `yaml:"max_concurrency"`
	MinScore         int             `yaml:"min_score"`
	SelectTimeout    time.Duration   `yaml:"select_timeout"`
	Categories       []string        `yaml:"categories"`
	Weights          ranking.Weights `yaml:"weights"`
}

// ChatConfig holds the study assistant settings.
type ChatConfig struct {
	Enabled         bool    `yaml:"enabled"`
	Provider        string  `yaml:"provider"` // openai or mock
	BaseURL         string  `yaml:"base_url"`
	Model           string  `yaml:"model"`
	Token           string  `yaml:"token"`
	Temperature     float64 `yaml:"temperature"`
	SystemPrompt    string  `yaml:"system_prompt"`
	ContextRecords  int     `yaml:"context_records"`
	MaxContextChars int     `yaml:"max_context_chars"`
	HistoryTurns    int     `yaml:"history_turns"`
}

// RateLimitConfig holds the fixed-window limiter settings for chat.
type RateLimitConfig struct {
	Backend       string        `yaml:"backend"` // memory or redis
	Limit         int           `yaml:"limit"`
	Window        time.Duration `yaml:"window"`
	SearchLimit   int           `yaml:"search_limit"` // per client IP and window; 0 disables
	KeyPrefix     string        `yaml:"key_prefix"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
}

// AdminConfig holds the admin credential. PasswordHash is a bcrypt hash.
type AdminConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

// ImporterConfig holds content import settings.
type ImporterConfig struct {
	Workers    int      `yaml:"workers"`
	Extensions []string `yaml:"extensions"`
}

// WatchConfig holds content directory watch settings.
type WatchConfig struct {
	Directories []string      `yaml:"directories"`
	Recursive   *bool         `yaml:"recursive"`
	Debounce    time.Duration `yaml:"debounce"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, applies
// environment overrides and defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnv(&cfg)
	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite, DriverBleve:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("invalid config: storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid config: unknown storage driver %q", c.Storage.Driver)
	}
	switch c.RateLimit.Backend {
	case "memory":
	case "redis":
		if c.RateLimit.RedisAddr == "" {
			return fmt.Errorf("invalid config: ratelimit.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid config: unknown ratelimit backend %q", c.RateLimit.Backend)
	}
	switch c.Chat.Provider {
	case "openai", "mock":
	default:
		return fmt.Errorf("invalid config: unknown chat provider %q", c.Chat.Provider)
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("invalid config: search.default_limit %d exceeds max_limit %d", c.Search.DefaultLimit, c.Search.MaxLimit)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvChatToken); v != "" {
		cfg.Chat.Token = v
	}
	if v := os.Getenv(EnvDSN); v != "" {
		cfg.Storage.DSN = v
	}
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
