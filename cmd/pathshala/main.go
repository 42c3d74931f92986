// Package main is the pathshala CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pathshala/pathshala/internal/auth"
	"github.com/pathshala/pathshala/internal/chat"
	"github.com/pathshala/pathshala/internal/cli"
	"github.com/pathshala/pathshala/internal/config"
	"github.com/pathshala/pathshala/internal/expand"
	"github.com/pathshala/pathshala/internal/importer"
	"github.com/pathshala/pathshala/internal/metrics"
	"github.com/pathshala/pathshala/internal/models"
	"github.com/pathshala/pathshala/internal/ratelimit"
	"github.com/pathshala/pathshala/internal/search"
	"github.com/pathshala/pathshala/internal/server"
	"github.com/pathshala/pathshala/internal/storage"
	"github.com/pathshala/pathshala/internal/watcher"
	"github.com/pathshala/pathshala/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/pathshala/config.yaml"

// loadConfig loads config from path. When path is the default, PATHSHALA_CONFIG
// wins, then config.yaml in the current directory (for development), then the
// default itself. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if env := os.Getenv(config.EnvConfigPath); env != "" {
			path = env
		} else if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				path = fallback
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "expand":
		runExpand()
	case "import":
		runImport()
	case "watch":
		runWatch()
	case "chat":
		runChat()
	case "status":
		runStatus()
	case "hash-password":
		runHashPassword()
	case "version", "--version", "-v":
		fmt.Printf("pathshala version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	noWatch := fs.Bool("no-watch", false, "do not watch content directories")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fail("Failed to load config: %v", err)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fail("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.Bool("debug", debugMode),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New(prometheus.DefaultRegisterer)
	components, err := initializeComponents(ctx, cfg, m, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	opts := []server.Option{server.WithMetrics(m)}
	if cfg.Chat.Enabled {
		assistant, err := components.newAssistant(ctx, cfg, m, logger)
		if err != nil {
			logger.Fatal("Failed to initialize chat", zap.Error(err))
		}
		opts = append(opts, server.WithAssistant(assistant))
		logger.Info("chat enabled",
			zap.String("provider", cfg.Chat.Provider),
			zap.String("model", cfg.Chat.Model),
			zap.String("ratelimit_backend", cfg.RateLimit.Backend))
	}
	verifier, err := auth.NewVerifier(cfg.Admin.Username, cfg.Admin.PasswordHash)
	switch {
	case errors.Is(err, auth.ErrNoCredentials):
		logger.Info("admin routes disabled: no admin.password_hash configured")
	case err != nil:
		logger.Fatal("Invalid admin credentials", zap.Error(err))
	default:
		opts = append(opts, server.WithVerifier(verifier))
	}
	if cfg.RateLimit.SearchLimit > 0 {
		store, err := components.limiterStore(ctx, cfg)
		if err != nil {
			logger.Fatal("Failed to initialize search rate limiter", zap.Error(err))
		}
		opts = append(opts, server.WithSearchLimiter(ratelimit.New(store, cfg.RateLimit.SearchLimit, cfg.RateLimit.Window,
			ratelimit.WithPrefix(strings.TrimSuffix(cfg.RateLimit.KeyPrefix, ":chat")+":search"))))
	}

	var watchSvc *watcher.Watcher
	if len(cfg.Watch.Directories) > 0 && !*noWatch {
		watchSvc = watcher.New(cfg.Watch.Directories, cfg.Watch.RecursiveOrDefault(), components.Importer,
			watcher.WithLogger(logger), watcher.WithDebounce(cfg.Watch.Debounce))
		if err := watchSvc.Start(ctx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		go func() {
			files, records, err := watchSvc.SyncExisting(ctx)
			if err != nil {
				logger.Warn("initial content sync finished with errors", zap.Error(err))
			}
			logger.Info("initial content sync done", zap.Int("files", files), zap.Int("records", records))
		}()
	}

	srv := server.NewServer(components.Engine, components.Store, cfg, logger, opts...)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if watchSvc != nil {
		watchSvc.Stop()
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: pathshala search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
The query is expanded across Bangla, English and phonetic spellings before matching,
so "gonit", "math" and "গণিত" find the same material.

Examples:
  pathshala search physics 1st paper
  pathshala search -category mcq,note "newton's laws"
  pathshala search -format json বাংলা ১ম পত্র
  pathshala search -server http://localhost:8080 chemistry
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "pathshala search physics -limit 5"
// would otherwise leave -limit unparsed.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// parseCategories splits a comma separated -category value. Names are
// validated later by SearchQuery.Validate.
func parseCategories(s string) []models.Category {
	var out []models.Category
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, models.Category(part))
		}
	}
	return out
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = read storage directly)")
	categories := fs.String("category", "", "comma separated categories: textbook, mcq, paper, note (default all)")
	limit := fs.Int("limit", 0, "number of results (default from config)")
	offset := fs.Int("offset", 0, "results to skip")
	outputFormat := fs.String("format", "text", "output format: text or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}
	query := &models.SearchQuery{
		Query:      queryStr,
		Categories: parseCategories(*categories),
		Limit:      *limit,
		Offset:     *offset,
	}

	var response *models.SearchResponse
	if *serverURL != "" {
		var err error
		response, err = searchViaHTTP(http.DefaultClient, *serverURL, query)
		if err != nil {
			fail("Search failed: %v", err)
		}
	} else {
		_, logger, components := openDirect(*configPath, *debug)
		defer logger.Sync()
		defer components.Close()
		var err error
		response, err = components.Engine.Search(context.Background(), query)
		if err != nil {
			fail("Search failed: %v", err)
		}
	}
	if err := cli.WriteSearchResults(os.Stdout, response, cli.ParseFormat(*outputFormat)); err != nil {
		fail("Output failed: %v", err)
	}
}

func searchViaHTTP(client *http.Client, serverURL string, query *models.SearchQuery) (*models.SearchResponse, error) {
	var response models.SearchResponse
	if err := postJSON(client, serverURL+"/api/v1/search", query, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func runExpand() {
	fs := flag.NewFlagSet("expand", flag.ExitOnError)
	outputFormat := fs.String("format", "text", "output format: text or json")
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	query := buildSearchQuery(fs.Args())
	if query == "" {
		fmt.Println("Usage: pathshala expand [flags] <query>")
		os.Exit(1)
	}
	if err := cli.WriteTerms(os.Stdout, expandReport(expand.New(), query), cli.ParseFormat(*outputFormat)); err != nil {
		fail("Output failed: %v", err)
	}
}

func expandReport(ex *expand.Expander, query string) *cli.TermsReport {
	entries, rules := ex.Matched(query)
	report := &cli.TermsReport{
		Query:   query,
		Terms:   ex.Expand(query).Terms(),
		Entries: entries,
		Rules:   rules,
	}
	if len(entries) == 0 && len(rules) == 0 {
		report.Suggestions = ex.Suggest(query)
	}
	return report
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	recursive := fs.Bool("recursive", true, "descend into subdirectories")
	remove := fs.Bool("remove", false, "remove the records imported from the given file instead")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Println("Usage: pathshala import [flags] <file-or-directory>...")
		os.Exit(1)
	}
	_, logger, components := openDirect(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	ctx := context.Background()
	failed := false
	for _, path := range fs.Args() {
		if *remove {
			n, err := components.Importer.RemoveFile(ctx, path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Remove failed for %s: %v\n", path, err)
				failed = true
				continue
			}
			fmt.Printf("Removed %d record(s) from %s\n", n, path)
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to stat path: %v\n", err)
			failed = true
			continue
		}
		if info.IsDir() {
			res, err := components.Importer.ImportDirectory(ctx, path, *recursive)
			fmt.Printf("Imported %d record(s) from %d file(s) in %s (%d failed)\n", res.Records, res.Files, path, res.Failed)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
				failed = true
			}
			continue
		}
		n, err := components.Importer.ImportFile(ctx, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Import failed for %s: %v\n", path, err)
			failed = true
			continue
		}
		fmt.Printf("Imported %d record(s) from %s\n", n, path)
	}
	if failed {
		os.Exit(1)
	}
}

// runWatch imports the configured (or given) directories and keeps them in
// sync until interrupted, without serving HTTP.
func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolved, err := loadConfig(*configPath)
	if err != nil {
		fail("Failed to load config: %v", err)
	}
	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fail("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	dirs := cfg.Watch.Directories
	if fs.NArg() > 0 {
		dirs = fs.Args()
	}
	if len(dirs) == 0 {
		fail("No directories to watch: pass them as arguments or set watch.directories in %s", resolved)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	components, err := initializeComponents(ctx, cfg, nil, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	w := watcher.New(dirs, cfg.Watch.RecursiveOrDefault(), components.Importer,
		watcher.WithLogger(logger), watcher.WithDebounce(cfg.Watch.Debounce))
	if err := w.Start(ctx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	defer w.Stop()
	files, records, err := w.SyncExisting(ctx)
	if err != nil {
		logger.Warn("initial content sync finished with errors", zap.Error(err))
	}
	fmt.Printf("Synced %d record(s) from %d file(s); watching %s\n", records, files, strings.Join(w.Roots(), ", "))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
}

func runChat() {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = answer locally)")
	user := fs.String("user", "", "user ID for rate limiting (default: local user name)")
	outputFormat := fs.String("format", "text", "output format: text or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	message := buildSearchQuery(fs.Args())
	if message == "" {
		fmt.Println("Usage: pathshala chat [flags] <message>")
		os.Exit(1)
	}
	req := chat.Request{UserID: *user, Message: message}
	if req.UserID == "" {
		req.UserID = os.Getenv("USER")
	}

	var resp *chat.Response
	if *serverURL != "" {
		var err error
		resp, err = chatViaHTTP(http.DefaultClient, *serverURL, req)
		if err != nil {
			fail("Chat failed: %v", err)
		}
	} else {
		cfg, logger, components := openDirect(*configPath, *debug)
		defer logger.Sync()
		defer components.Close()
		assistant, err := components.newAssistant(context.Background(), cfg, nil, logger)
		if err != nil {
			fail("Failed to initialize chat: %v", err)
		}
		resp, err = assistant.Reply(context.Background(), req)
		if err != nil {
			fail("Chat failed: %v", err)
		}
	}

	if cli.ParseFormat(*outputFormat) == cli.OutputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(resp)
		return
	}
	fmt.Println(resp.Reply)
	if len(resp.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, src := range resp.Sources {
			fmt.Printf("  [%s] %s\n", src.Record.Category().Label(), utils.Truncate(models.Title(src.Record), 80))
		}
	}
	if resp.Limit > 0 {
		fmt.Printf("\n(%d of %d messages left in this window)\n", resp.Remaining, resp.Limit)
	}
}

func chatViaHTTP(client *http.Client, serverURL string, req chat.Request) (*chat.Response, error) {
	var resp chat.Response
	if err := postJSON(client, serverURL+"/api/v1/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// statusResponse is the shape of GET /api/v1/status.
type statusResponse struct {
	Records        map[models.Category]int64 `json:"records"`
	TotalRecords   int64                     `json:"total_records"`
	ChatEnabled    bool                      `json:"chat_enabled"`
	AdminEnabled   bool                      `json:"admin_enabled"`
	StorageDriver  string                    `json:"storage_driver,omitempty"`
	DiskUsageBytes int64                     `json:"disk_usage_bytes,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = read storage directly)")
	outputFormat := fs.String("format", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status *statusResponse
	if *serverURL != "" {
		var err error
		status, err = statusViaHTTP(http.DefaultClient, *serverURL)
		if err != nil {
			fail("Status failed: %v", err)
		}
	} else {
		cfg, logger, components := openDirect(*configPath, false)
		defer logger.Sync()
		defer components.Close()
		ctx := context.Background()
		status = &statusResponse{Records: make(map[models.Category]int64), StorageDriver: cfg.Storage.Driver}
		for _, c := range models.Categories() {
			n, err := components.Store.Count(ctx, c)
			if err != nil {
				fail("Count %s failed: %v", c, err)
			}
			status.Records[c] = n
			status.TotalRecords += n
		}
		if n, err := storage.DiskUsageBytes(storage.Paths(cfg.Storage)...); err == nil {
			status.DiskUsageBytes = n
		}
	}

	format := cli.ParseFormat(*outputFormat)
	if format == cli.OutputText && status.StorageDriver != "" {
		fmt.Printf("%-12s %s\n", "Storage:", status.StorageDriver)
	}
	if err := cli.WriteStatus(os.Stdout, status.Records, status.DiskUsageBytes, format); err != nil {
		fail("Output failed: %v", err)
	}
}

func statusViaHTTP(client *http.Client, serverURL string) (*statusResponse, error) {
	resp, err := client.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func runHashPassword() {
	fs := flag.NewFlagSet("hash-password", flag.ExitOnError)
	_ = fs.Parse(os.Args[2:])

	password := fs.Arg(0)
	if password == "" {
		data, err := io.ReadAll(io.LimitReader(os.Stdin, 1024))
		if err != nil {
			fail("Failed to read password: %v", err)
		}
		password = strings.TrimRight(string(data), "\r\n")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		fail("Hashing failed: %v", err)
	}
	fmt.Println(hash)
}

func postJSON(client *http.Client, endpoint string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	resp, err := client.Post(endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		msg := strings.TrimSpace(string(b))
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(b, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		if retry := resp.Header.Get("Retry-After"); retry != "" {
			msg += " (retry after " + retry + "s)"
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, msg)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// openDirect loads config and opens storage for a one-shot command, exiting on failure.
func openDirect(configPath string, debug bool) (*config.Config, *zap.Logger, *Components) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fail("Failed to load config: %v", err)
	}
	logger, err := utils.NewCLILogger(cfg.Debug || debug)
	if err != nil {
		fail("Failed to create logger: %v", err)
	}
	components, err := initializeComponents(context.Background(), cfg, nil, logger)
	if err != nil {
		fail("Failed to initialize: %v", err)
	}
	return cfg, logger, components
}

// Components holds initialized services.
type Components struct {
	Store    storage.Store
	Engine   *search.Engine
	Importer *importer.Importer

	limiter ratelimit.Store
	closers []io.Closer
}

func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i].Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) (*Components, error) {
	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	engine := search.NewEngine(expand.New(), store, &cfg.Search, m, logger)
	imp := importer.New(store, cfg.Importer, m, logger)
	return &Components{Store: store, Engine: engine, Importer: imp}, nil
}

// limiterStore returns the shared counter store, dialing Redis on first use.
func (c *Components) limiterStore(ctx context.Context, cfg *config.Config) (ratelimit.Store, error) {
	if c.limiter != nil {
		return c.limiter, nil
	}
	switch cfg.RateLimit.Backend {
	case "redis":
		rdb, err := ratelimit.DialRedis(ctx, cfg.RateLimit.RedisAddr, cfg.RateLimit.RedisPassword, cfg.RateLimit.RedisDB)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, rdb)
		c.limiter = ratelimit.NewRedisStore(rdb)
	default:
		mem := ratelimit.NewMemoryStore(nil)
		go mem.RunSweeper(ctx, cfg.RateLimit.Window)
		c.limiter = mem
	}
	return c.limiter, nil
}

func (c *Components) newAssistant(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) (*chat.Assistant, error) {
	completer, err := chat.NewCompleter(cfg.Chat)
	if err != nil {
		return nil, err
	}
	store, err := c.limiterStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	limiter := ratelimit.New(store, cfg.RateLimit.Limit, cfg.RateLimit.Window, ratelimit.WithPrefix(cfg.RateLimit.KeyPrefix))
	return chat.NewAssistant(c.Engine, completer, limiter, cfg.Chat, m, logger), nil
}

func printUsage() {
	fmt.Println(`pathshala - Bangla/English study material search and assistant

Usage:
  pathshala server [flags]              Start the HTTP server
  pathshala search [flags] <query>      Search textbooks, MCQs, exam papers and notes
  pathshala expand [flags] <query>      Show the terms a query expands to
  pathshala import [flags] <path>...    Import content files or directories
  pathshala watch [flags] [dir...]      Import and keep directories in sync
  pathshala chat [flags] <message>      Ask the study assistant
  pathshala status [flags]              Show record counts and disk usage
  pathshala hash-password [password]    Print a bcrypt hash for admin.password_hash
  pathshala version                     Show version
  pathshala help                        Show this help

Common Flags:
  --config string    Config file path (default: $PATHSHALA_CONFIG, ./config.yaml, then /usr/local/etc/pathshala/config.yaml)
  --debug            Enable debug logging

Server Flags:
  --no-watch         Do not watch watch.directories

Search Flags:
  --server string    Server URL; empty reads storage directly (default: "")
  --category string  Comma separated categories: textbook, mcq, paper, note
  --limit int        Number of results (default from config)
  --offset int       Results to skip
  --format string    Output format: text or json (default: text)

Import Flags:
  --recursive        Descend into subdirectories (default: true)
  --remove           Remove records imported from the given files

Chat Flags:
  --server string    Server URL; empty answers locally
  --user string      User ID for rate limiting

Examples:
  pathshala server
  pathshala search physics 1st paper
  pathshala search --category mcq --format json "গণিত"
  pathshala expand bangla prothom potro
  pathshala import ./content/hsc
  pathshala chat --server http://localhost:8080 "explain newton's second law"
  pathshala hash-password s3cret`)
}
