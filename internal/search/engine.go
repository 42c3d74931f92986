// Package search runs an expanded query against every requested category
// and ranks the merged matches.
package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/pathshala/pathshala/internal/conditions"
	"github.com/pathshala/pathshala/internal/config"
	"github.com/pathshala/pathshala/internal/expand"
	"github.com/pathshala/pathshala/internal/metrics"
	"github.com/pathshala/pathshala/internal/models"
	"github.com/pathshala/pathshala/internal/ranking"
	"github.com/pathshala/pathshala/internal/storage"
	"github.com/pathshala/pathshala/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Engine expands queries, fans them out over the store, and ranks the results.
type Engine struct {
	expander *expand.Expander
	store    storage.Store
	scorer   *ranking.Scorer
	metrics  *metrics.Metrics
	config   *config.SearchConfig
	logger   *zap.Logger
	group    singleflight.Group
}

// NewEngine creates a search engine with the given dependencies. m and
// logger may be nil.
func NewEngine(
	expander *expand.Expander,
	store storage.Store,
	cfg *config.SearchConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Engine {
	if expander == nil {
		expander = expand.New()
	}
	return &Engine{
		expander: expander,
		store:    store,
		scorer:   ranking.NewScorer(cfg.Weights),
		metrics:  m,
		config:   cfg,
		logger:   utils.OrNop(logger),
	}
}

// Expander returns the expander used for queries.
func (e *Engine) Expander() *expand.Expander { return e.expander }

type categoryResult struct {
	records []models.Record
	err     error
}

// Search validates query, expands it, selects candidates from every
// category concurrently, then scores, sorts and paginates them. Categories
// that fail are skipped unless all of them fail.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	if err := e.prepare(query); err != nil {
		e.metrics.ObserveSearch("invalid", time.Since(startTime), 0)
		return nil, err
	}

	terms := e.expander.Expand(query.Query)
	results := make([]categoryResult, len(query.Categories))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, e.config.MaxConcurrency))
	for i, category := range query.Categories {
		i, category := i, category
		conds := conditions.Build(terms, category)
		g.Go(func() error {
			records, err := e.selectCategory(gctx, category, conds)
			results[i] = categoryResult{records: records, err: err}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		e.metrics.ObserveSearch("error", time.Since(startTime), terms.Len())
		return nil, err
	}

	var (
		candidates []models.Record
		errs       []error
	)
	for i, r := range results {
		if r.err != nil {
			e.logger.Warn("Category search failed",
				zap.String("category", string(query.Categories[i])),
				zap.Error(r.err))
			errs = append(errs, r.err)
			continue
		}
		candidates = append(candidates, r.records...)
	}
	if len(errs) > 0 && len(errs) == len(results) {
		e.metrics.ObserveSearch("error", time.Since(startTime), terms.Len())
		return nil, fmt.Errorf("search failed: %w", errors.Join(errs...))
	}

	ranked := ranking.FilterByMinScore(e.scorer.Rank(candidates, terms), e.config.MinScore)
	ranking.SortStable(ranked)

	response := &models.SearchResponse{
		Query:   query.Query,
		Terms:   terms.Terms(),
		Results: ranking.Paginate(ranked, query.Offset, query.Limit),
		Total:   len(ranked),
	}
	status := "ok"
	if response.Total == 0 {
		status = "empty"
		response.Suggestions = e.expander.Suggest(query.Query)
	}
	response.QueryTime = time.Since(startTime).Milliseconds()
	e.metrics.ObserveSearch(status, time.Since(startTime), terms.Len())
	e.logger.Debug("Search complete",
		zap.String("query", query.Query),
		zap.Int("terms", terms.Len()),
		zap.Int("candidates", len(candidates)),
		zap.Int("total", response.Total))
	return response, nil
}

// prepare applies configured limits and category defaults before validation.
func (e *Engine) prepare(query *models.SearchQuery) error {
	if query.Limit <= 0 && e.config.DefaultLimit > 0 {
		query.Limit = e.config.DefaultLimit
	}
	if len(query.Categories) == 0 && len(e.config.Categories) > 0 {
		for _, c := range e.config.Categories {
			query.Categories = append(query.Categories, models.Category(c))
		}
	}
	if err := query.Validate(); err != nil {
		return err
	}
	if e.config.MaxLimit > 0 && query.Limit > e.config.MaxLimit {
		query.Limit = e.config.MaxLimit
	}
	return nil
}

// selectCategory queries one category. Identical concurrent selects share
// a single store round-trip. The shared call is detached from any one
// caller's cancellation; each caller only stops waiting on its own ctx.
func (e *Engine) selectCategory(ctx context.Context, category models.Category, conds conditions.List) ([]models.Record, error) {
	if len(conds) == 0 {
		return nil, nil
	}
	limit := e.config.PerCategoryLimit
	key := string(category) + "|" + strconv.Itoa(limit) + "|" + conds.String()
	ch := e.group.DoChan(key, func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.selectTimeout())
		defer cancel()
		start := time.Now()
		records, err := e.store.Select(sctx, category, conds, limit)
		e.metrics.ObserveSelect(string(category), time.Since(start))
		if err != nil {
			return nil, fmt.Errorf("select %s: %w", category, err)
		}
		return records, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]models.Record), nil
	}
}

func (e *Engine) selectTimeout() time.Duration {
	if e.config.SelectTimeout > 0 {
		return e.config.SelectTimeout
	}
	return config.DefaultSelectTimeout
}
