// Package server provides the HTTP API for Pathshala.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pathshala/pathshala/internal/auth"
	"github.com/pathshala/pathshala/internal/chat"
	"github.com/pathshala/pathshala/internal/config"
	"github.com/pathshala/pathshala/internal/metrics"
	"github.com/pathshala/pathshala/internal/ratelimit"
	"github.com/pathshala/pathshala/internal/search"
	"github.com/pathshala/pathshala/internal/storage"
	"github.com/pathshala/pathshala/pkg/utils"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Server is the HTTP server for the Pathshala API.
type Server struct {
	engine        *search.Engine
	store         storage.Store
	assistant     *chat.Assistant
	verifier      *auth.Verifier
	searchLimiter *ratelimit.Limiter
	metrics       *metrics.Metrics
	config        *config.Config
	logger        *zap.Logger
	policy        *bluemonday.Policy
	now           func() time.Time
	server        *http.Server
}

// Option configures optional server dependencies.
type Option func(*Server)

// WithAssistant enables POST /api/v1/chat.
func WithAssistant(a *chat.Assistant) Option {
	return func(s *Server) { s.assistant = a }
}

// WithVerifier enables the admin routes. Without it they answer 503.
func WithVerifier(v *auth.Verifier) Option {
	return func(s *Server) { s.verifier = v }
}

// WithSearchLimiter limits search requests per client IP.
func WithSearchLimiter(l *ratelimit.Limiter) Option {
	return func(s *Server) { s.searchLimiter = l }
}

// WithMetrics records request metrics and serves /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *search.Engine,
	store storage.Store,
	cfg *config.Config,
	logger *zap.Logger,
	opts ...Option,
) *Server {
	s := &Server{
		engine: engine,
		store:  store,
		config: cfg,
		logger: utils.OrNop(logger),
		policy: bluemonday.StrictPolicy(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP handler with every route mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Use(middleware.Timeout(s.requestTimeout()))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if s.searchLimiter != nil {
				r.Use(ratelimit.Middleware(s.searchLimiter, clientIP, s.onLimiterError))
			}
			r.Post("/search", s.handleSearch)
			r.Get("/search", s.handleSearchGet)
		})
		r.Get("/expand", s.handleExpand)
		r.Post("/conditions", s.handleConditions)
		r.Post("/chat", s.handleChat)
		r.Get("/records/{category}/{id}", s.handleGetRecord)
		r.Get("/status", s.handleStatus)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.Middleware(s.verifier))
			r.Post("/records/{category}", s.handlePutRecord)
			r.Delete("/records/{category}/{id}", s.handleDeleteRecord)
		})
	})
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())
	return r
}

func (s *Server) requestTimeout() time.Duration {
	if s.config != nil && s.config.Server.RequestTimeout > 0 {
		return s.config.Server.RequestTimeout
	}
	return 60 * time.Second
}

// observe records per-route request metrics.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.ObserveHTTP(r.Method, route, status, time.Since(start))
		if status == http.StatusTooManyRequests && route != "/api/v1/chat" {
			s.metrics.ObserveRejection()
		}
	})
}

func (s *Server) onLimiterError(err error) {
	s.logger.Warn("Search rate limiter unavailable, allowing request", zap.Error(err))
}

// clientIP keys per-client limits. RealIP has already rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
