// Package metrics defines the Prometheus collectors for search, chat and
// import, and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors. A nil *Metrics records nothing.
type Metrics struct {
	SearchRequestsTotal *prometheus.CounterVec
	SearchDuration      prometheus.Histogram
	SearchExpandedTerms prometheus.Histogram
	StoreSelectDuration *prometheus.HistogramVec
	ChatRequestsTotal   *prometheus.CounterVec
	RateLimitRejections prometheus.Counter
	ImportRecordsTotal  *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	gatherer            prometheus.Gatherer
}

// New creates the collectors and registers them on reg. A nil reg uses a
// fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		SearchRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pathshala_search_requests_total",
				Help: "Total search requests by status (ok, empty, invalid, error).",
			},
			[]string{"status"},
		),
		SearchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pathshala_search_duration_seconds",
				Help:    "Search latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
		),
		SearchExpandedTerms: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pathshala_search_expanded_terms",
				Help:    "Number of terms a query expanded to.",
				Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
			},
		),
		StoreSelectDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pathshala_store_select_duration_seconds",
				Help:    "Store select latency in seconds by category.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"category"},
		),
		ChatRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pathshala_chat_requests_total",
				Help: "Total chat requests by result (ok, rate_limited, invalid, error).",
			},
			[]string{"result"},
		),
		RateLimitRejections: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pathshala_ratelimit_rejections_total",
				Help: "Total requests rejected by a rate limiter.",
			},
		),
		ImportRecordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pathshala_import_records_total",
				Help: "Total records imported by category.",
			},
			[]string{"category"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pathshala_http_requests_total",
				Help: "Total HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pathshala_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
	}

	reg.MustRegister(
		m.SearchRequestsTotal,
		m.SearchDuration,
		m.SearchExpandedTerms,
		m.StoreSelectDuration,
		m.ChatRequestsTotal,
		m.RateLimitRejections,
		m.ImportRecordsTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Handler returns the scrape handler for the registry the metrics live in.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveSearch records one search outcome.
func (m *Metrics) ObserveSearch(status string, d time.Duration, terms int) {
	if m == nil {
		return
	}
	m.SearchRequestsTotal.WithLabelValues(status).Inc()
	m.SearchDuration.Observe(d.Seconds())
	if terms > 0 {
		m.SearchExpandedTerms.Observe(float64(terms))
	}
}

// ObserveSelect records one store select for category.
func (m *Metrics) ObserveSelect(category string, d time.Duration) {
	if m == nil {
		return
	}
	m.StoreSelectDuration.WithLabelValues(category).Observe(d.Seconds())
}

// ObserveChat records one chat outcome.
func (m *Metrics) ObserveChat(result string) {
	if m == nil {
		return
	}
	m.ChatRequestsTotal.WithLabelValues(result).Inc()
	if result == "rate_limited" {
		m.RateLimitRejections.Inc()
	}
}

// ObserveRejection records a rate limiter rejection outside chat.
func (m *Metrics) ObserveRejection() {
	if m == nil {
		return
	}
	m.RateLimitRejections.Inc()
}

// ObserveImport records n imported records of category.
func (m *Metrics) ObserveImport(category string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ImportRecordsTotal.WithLabelValues(category).Add(float64(n))
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, statusClass(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
