// Package metrics defines the Prometheus collectors for scraping and serving.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	BoardsScraped  *prometheus.CounterVec
	JobsUpserted   *prometheus.CounterVec
	ScrapeDuration *prometheus.HistogramVec
	LastScrape     prometheus.Gauge
	Evaluations    *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		BoardsScraped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freshapply_boards_scraped_total",
				Help: "Board fetches by platform and result",
			},
			[]string{"platform", "result"},
		),
		JobsUpserted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freshapply_jobs_upserted_total",
				Help: "Stored postings by upsert outcome",
			},
			[]string{"outcome"},
		),
		ScrapeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "freshapply_board_fetch_duration_seconds",
				Help:    "Duration of a single board fetch in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"platform"},
		),
		LastScrape: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "freshapply_last_scrape_timestamp_seconds",
				Help: "Unix time of the last completed scrape run",
			},
		),
		Evaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freshapply_evaluations_total",
				Help: "Evaluated postings by tier",
			},
			[]string{"tier"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freshapply_http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "freshapply_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveBoard records one board fetch.
func (m *Metrics) ObserveBoard(platform string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.BoardsScraped.WithLabelValues(platform, result).Inc()
	m.ScrapeDuration.WithLabelValues(platform).Observe(elapsed.Seconds())
}

// ObserveUpsert records one store outcome.
func (m *Metrics) ObserveUpsert(outcome string) {
	if m == nil {
		return
	}
	m.JobsUpserted.WithLabelValues(outcome).Inc()
}

// ObserveRun records a completed scrape run.
func (m *Metrics) ObserveRun(finished time.Time) {
	if m == nil {
		return
	}
	m.LastScrape.Set(float64(finished.Unix()))
}

// ObserveEvaluation records one evaluated posting.
func (m *Metrics) ObserveEvaluation(tier string) {
	if m == nil {
		return
	}
	m.Evaluations.WithLabelValues(tier).Inc()
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
