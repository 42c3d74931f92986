package server

import (
	"encoding/json"
	"errors"
	"html"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pathshala/pathshala/internal/chat"
	"github.com/pathshala/pathshala/internal/conditions"
	"github.com/pathshala/pathshala/internal/models"
	"github.com/pathshala/pathshala/internal/ratelimit"
	"github.com/pathshala/pathshala/internal/storage"
	"github.com/pathshala/pathshala/pkg/utils"
	"go.uber.org/zap"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := decodeBody(w, r, &query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.search(w, r, &query)
}

// handleSearchGet accepts q, category (repeated or comma separated), limit and offset.
func (s *Server) handleSearchGet(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	query := models.SearchQuery{Query: params.Get("q")}
	for _, v := range params["category"] {
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				query.Categories = append(query.Categories, models.Category(c))
			}
		}
	}
	var err error
	if query.Limit, err = intParam(params.Get("limit")); err != nil {
		s.respondError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	if query.Offset, err = intParam(params.Get("offset")); err != nil {
		s.respondError(w, http.StatusBadRequest, "offset must be an integer")
		return
	}
	s.search(w, r, &query)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, query *models.SearchQuery) {
	s.logger.Debug("Search request", zap.String("query", query.Query), zap.Int("limit", query.Limit))
	response, err := s.engine.Search(r.Context(), query)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

type expandResponse struct {
	Query       string   `json:"query"`
	Terms       []string `json:"terms"`
	Entries     []string `json:"entries"`
	Rules       []string `json:"rules"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	ex := s.engine.Expander()
	terms := ex.Expand(q)
	entries, rules := ex.Matched(q)
	resp := expandResponse{
		Query:   q,
		Terms:   terms.Terms(),
		Entries: nonNil(entries),
		Rules:   nonNil(rules),
	}
	if len(entries) == 0 && len(rules) == 0 {
		resp.Suggestions = ex.Suggest(q)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type conditionsRequest struct {
	Category string   `json:"category"`
	Terms    []string `json:"terms,omitempty"`
	// Query is expanded when Terms is empty.
	Query string `json:"query,omitempty"`
}

type conditionsResponse struct {
	Category   models.Category `json:"category"`
	Conditions conditions.List `json:"conditions"`
	Filter     string          `json:"filter"`
}

func (s *Server) handleConditions(w http.ResponseWriter, r *http.Request) {
	var req conditionsRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	category, err := models.ParseCategory(req.Category)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	terms := models.NewTermSet(req.Terms...)
	if terms.Len() == 0 {
		if strings.TrimSpace(req.Query) == "" {
			s.respondError(w, http.StatusBadRequest, "terms or query is required")
			return
		}
		terms = s.engine.Expander().Expand(req.Query)
	}
	list := conditions.Build(terms, category)
	if list == nil {
		list = conditions.List{}
	}
	s.respondJSON(w, http.StatusOK, conditionsResponse{Category: category, Conditions: list, Filter: list.String()})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.assistant == nil {
		s.respondError(w, http.StatusServiceUnavailable, "chat is disabled")
		return
	}
	var req chat.Request
	if err := decodeBody(w, r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		req.UserID = clientIP(r)
	}
	resp, err := s.assistant.Reply(r.Context(), req)
	if err != nil {
		var limited *chat.RateLimitedError
		if errors.As(err, &limited) {
			ratelimit.SetHeaders(w, limited.Decision)
		}
		s.respondErr(w, err)
		return
	}
	if resp.Limit > 0 {
		ratelimit.SetHeaders(w, ratelimit.Decision{Allowed: true, Limit: resp.Limit, Remaining: resp.Remaining})
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	category, err := models.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	rec, err := s.store.Get(r.Context(), category, chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

// handlePutRecord creates or replaces a record. A missing ID gets a new UUID.
func (s *Server) handlePutRecord(w http.ResponseWriter, r *http.Request) {
	category, err := models.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := models.DecodeRecord(category, body)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec.Sanitize(s.clean)
	meta := rec.Meta()
	status := http.StatusOK
	if meta.ID == "" {
		meta.ID = uuid.NewString()
		status = http.StatusCreated
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = s.now().UTC()
	}
	if models.Title(rec) == "" {
		s.respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	if err := s.store.Put(r.Context(), rec); err != nil {
		s.respondErr(w, err)
		return
	}
	s.logger.Info("Record saved", zap.String("category", string(category)), zap.String("id", meta.ID))
	s.respondJSON(w, status, rec)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	category, err := models.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), category, id); err != nil {
		s.respondErr(w, err)
		return
	}
	s.logger.Info("Record deleted", zap.String("category", string(category)), zap.String("id", id))
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	counts := make(map[models.Category]int64)
	var total int64
	for _, c := range models.Categories() {
		n, err := s.store.Count(ctx, c)
		if err != nil {
			s.logger.Error("Status: count failed", zap.String("category", string(c)), zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		counts[c] = n
		total += n
	}
	resp := map[string]any{
		"records":       counts,
		"total_records": total,
		"chat_enabled":  s.assistant != nil,
		"admin_enabled": s.verifier != nil,
	}
	if s.config != nil {
		resp["storage_driver"] = s.config.Storage.Driver
		if paths := storage.Paths(s.config.Storage); len(paths) > 0 {
			if n, err := storage.DiskUsageBytes(paths...); err == nil {
				resp["disk_usage_bytes"] = n
			}
		}
		resp["watch_directories"] = nonNil(s.config.Watch.Directories)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// clean strips markup from admin-submitted text and brings it to NFC.
func (s *Server) clean(v string) string {
	return utils.NFC(strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v))))
}

// errorStatus maps sentinel errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, chat.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, models.ErrUnknownCategory),
		errors.Is(err, models.ErrInvalidQuery),
		errors.Is(err, chat.ErrEmptyMessage):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) respondErr(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
