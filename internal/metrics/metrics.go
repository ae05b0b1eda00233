// Package metrics defines the Prometheus collectors for the engine and
// exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the engine. All recording
// methods are safe on a nil receiver, so components can take an optional
// *Metrics without guarding every call site.
type Metrics struct {
	registry *prometheus.Registry

	RecordsImportedTotal   prometheus.Counter
	DuplicatesSkippedTotal prometheus.Counter
	EmptyLinesSkippedTotal prometheus.Counter
	ImportBatchesTotal     prometheus.Counter
	ImportDuration         prometheus.Histogram
	SearchQueriesTotal     *prometheus.CounterVec
	SearchLatency          *prometheus.HistogramVec
	SearchResultsCount     prometheus.Histogram
	CacheHitsTotal         prometheus.Counter
	CacheMissesTotal       prometheus.Counter
}

// New creates and registers all collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RecordsImportedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "records_imported_total",
			Help: "Total number of records committed to the store.",
		}),
		DuplicatesSkippedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "duplicates_skipped_total",
			Help: "Total number of records dropped by in-run deduplication.",
		}),
		EmptyLinesSkippedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "empty_lines_skipped_total",
			Help: "Total number of empty input lines skipped.",
		}),
		ImportBatchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "import_batches_total",
			Help: "Total number of batches submitted to the store.",
		}),
		ImportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "import_duration_seconds",
			Help:    "Wall time of complete import runs in seconds.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		}),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by result type (hit, zero_result, error).",
			},
			[]string{"result_type"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "Search query latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		SearchResultsCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "search_results_count",
			Help:    "Number of results returned per search query.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of search cache hits.",
		}),
		CacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of search cache misses.",
		}),
	}

	m.registry.MustRegister(
		m.RecordsImportedTotal,
		m.DuplicatesSkippedTotal,
		m.EmptyLinesSkippedTotal,
		m.ImportBatchesTotal,
		m.ImportDuration,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	)
	return m
}

// Handler returns an HTTP handler serving the scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// AddImported records committed records. Nil-safe.
func (m *Metrics) AddImported(n int) {
	if m == nil {
		return
	}
	m.RecordsImportedTotal.Add(float64(n))
}

// AddDuplicates records deduplicated records. Nil-safe.
func (m *Metrics) AddDuplicates(n int) {
	if m == nil {
		return
	}
	m.DuplicatesSkippedTotal.Add(float64(n))
}

// AddEmptyLines records skipped empty lines. Nil-safe.
func (m *Metrics) AddEmptyLines(n int) {
	if m == nil {
		return
	}
	m.EmptyLinesSkippedTotal.Add(float64(n))
}

// IncBatch records a submitted batch. Nil-safe.
func (m *Metrics) IncBatch() {
	if m == nil {
		return
	}
	m.ImportBatchesTotal.Inc()
}

// ObserveImport records the wall time of a completed import run. Nil-safe.
func (m *Metrics) ObserveImport(seconds float64) {
	if m == nil {
		return
	}
	m.ImportDuration.Observe(seconds)
}

// ObserveSearch records one search query outcome. Nil-safe.
func (m *Metrics) ObserveSearch(resultType, cacheStatus string, seconds float64, results int) {
	if m == nil {
		return
	}
	m.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	m.SearchLatency.WithLabelValues(cacheStatus).Observe(seconds)
	m.SearchResultsCount.Observe(float64(results))
}

// IncCacheHit records a search cache hit. Nil-safe.
func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// IncCacheMiss records a search cache miss. Nil-safe.
func (m *Metrics) IncCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMissesTotal.Inc()
}
