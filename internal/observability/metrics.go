package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the paper aggregator.
// Metrics are organized by subsystem: searches, sources, papers, graphs,
// storage, events and HTTP.
type Metrics struct {
	// SearchesTotal counts aggregated searches that reached the providers.
	SearchesTotal prometheus.Counter

	// SearchesRejected counts searches short-circuited because the query was too short.
	SearchesRejected prometheus.Counter

	// SearchDuration observes end-to-end aggregated search duration in seconds.
	SearchDuration prometheus.Histogram

	// SourceSearchesStarted counts provider searches initiated, labeled by source.
	SourceSearchesStarted *prometheus.CounterVec

	// SourceSearchesCompleted counts successful provider searches, labeled by source.
	SourceSearchesCompleted *prometheus.CounterVec

	// SourceSearchesFailed counts provider searches whose results were ignored, labeled by source.
	SourceSearchesFailed *prometheus.CounterVec

	// SourceSearchDuration observes provider search duration in seconds, labeled by source.
	SourceSearchDuration *prometheus.HistogramVec

	// PapersPerSearch observes the number of raw records per provider search, labeled by source.
	PapersPerSearch *prometheus.HistogramVec

	// SourceTimeouts counts provider searches that exceeded their deadline, labeled by source.
	SourceTimeouts *prometheus.CounterVec

	// SourceRateLimited counts rate-limited responses from providers, labeled by source.
	SourceRateLimited *prometheus.CounterVec

	// PapersReturned counts ranked papers returned to callers.
	PapersReturned prometheus.Counter

	// PapersDuplicate counts records collapsed into a higher-trust duplicate.
	PapersDuplicate prometheus.Counter

	// PapersUntitled counts records dropped for lacking a title.
	PapersUntitled prometheus.Counter

	// GraphsBuilt counts relationship graph builds.
	GraphsBuilt prometheus.Counter

	// GraphEdges counts directed edges emitted by graph builds.
	GraphEdges prometheus.Counter

	// GraphBuildDuration observes graph build duration in seconds.
	GraphBuildDuration prometheus.Histogram

	// StoreErrors counts persistence failures, labeled by operation.
	StoreErrors *prometheus.CounterVec

	// EventsPublished counts domain events delivered, labeled by event type.
	EventsPublished *prometheus.CounterVec

	// EventsFailed counts domain events that could not be delivered, labeled by event type.
	EventsFailed *prometheus.CounterVec

	// HTTPRequests counts HTTP requests, labeled by method, route and status code.
	HTTPRequests *prometheus.CounterVec

	// HTTPRequestDuration observes HTTP request duration in seconds, labeled by method and route.
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a Metrics instance registered with the default
// Prometheus registry. The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates a Metrics instance registered with reg.
// A nil reg creates unregistered collectors.
func NewMetricsWithRegistry(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// Searches
		SearchesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of aggregated searches",
		}),
		SearchesRejected: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_rejected_total",
			Help:      "Total number of searches rejected for a short query",
		}),
		SearchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of aggregated searches in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30},
		}),

		// Sources
		SourceSearchesStarted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_searches_started_total",
			Help:      "Total number of provider searches started by source",
		}, []string{"source"}),
		SourceSearchesCompleted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_searches_completed_total",
			Help:      "Total number of provider searches completed by source",
		}, []string{"source"}),
		SourceSearchesFailed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_searches_failed_total",
			Help:      "Total number of provider searches that failed by source",
		}, []string{"source"}),
		SourceSearchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_search_duration_seconds",
			Help:      "Duration of provider searches in seconds by source",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20},
		}, []string{"source"}),
		PapersPerSearch: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "papers_per_search",
			Help:      "Number of records returned per provider search by source",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 200},
		}, []string{"source"}),
		SourceTimeouts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_timeouts_total",
			Help:      "Total number of provider searches that timed out by source",
		}, []string{"source"}),
		SourceRateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_rate_limited_total",
			Help:      "Total number of rate limit responses from providers",
		}, []string{"source"}),

		// Papers
		PapersReturned: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_returned_total",
			Help:      "Total number of ranked papers returned",
		}),
		PapersDuplicate: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_duplicate_total",
			Help:      "Total number of duplicate records collapsed",
		}),
		PapersUntitled: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_untitled_total",
			Help:      "Total number of records dropped for a missing title",
		}),

		// Graphs
		GraphsBuilt: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graphs_built_total",
			Help:      "Total number of relationship graphs built",
		}),
		GraphEdges: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_edges_total",
			Help:      "Total number of directed graph edges emitted",
		}),
		GraphBuildDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graph_build_duration_seconds",
			Help:      "Duration of graph builds in seconds",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),

		// Storage
		StoreErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Total number of persistence failures by operation",
		}, []string{"operation"}),

		// Events
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of domain events published by type",
		}, []string{"event_type"}),
		EventsFailed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_failed_total",
			Help:      "Total number of domain events that failed to publish by type",
		}, []string{"event_type"}),

		// HTTP
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// RecordSearchRejected records a search short-circuited for a short query.
func (m *Metrics) RecordSearchRejected() {
	m.SearchesRejected.Inc()
}

// RecordSearchCompleted records an aggregated search and its dedup statistics.
func (m *Metrics) RecordSearchCompleted(returned, duplicates, untitled int, durationSeconds float64) {
	m.SearchesTotal.Inc()
	m.SearchDuration.Observe(durationSeconds)
	m.PapersReturned.Add(float64(returned))
	m.PapersDuplicate.Add(float64(duplicates))
	m.PapersUntitled.Add(float64(untitled))
}

// RecordSourceSearchStarted records that a provider search has started.
func (m *Metrics) RecordSourceSearchStarted(source string) {
	m.SourceSearchesStarted.WithLabelValues(source).Inc()
}

// RecordSourceSearchCompleted records that a provider search has completed.
func (m *Metrics) RecordSourceSearchCompleted(source string, paperCount int, durationSeconds float64) {
	m.SourceSearchesCompleted.WithLabelValues(source).Inc()
	m.SourceSearchDuration.WithLabelValues(source).Observe(durationSeconds)
	m.PapersPerSearch.WithLabelValues(source).Observe(float64(paperCount))
}

// RecordSourceSearchFailed records that a provider search has failed.
func (m *Metrics) RecordSourceSearchFailed(source string, durationSeconds float64) {
	m.SourceSearchesFailed.WithLabelValues(source).Inc()
	m.SourceSearchDuration.WithLabelValues(source).Observe(durationSeconds)
}

// RecordSourceTimeout records a provider search that exceeded its deadline.
func (m *Metrics) RecordSourceTimeout(source string) {
	m.SourceTimeouts.WithLabelValues(source).Inc()
}

// RecordSourceRateLimited records a rate limit response from a source.
func (m *Metrics) RecordSourceRateLimited(source string) {
	m.SourceRateLimited.WithLabelValues(source).Inc()
}

// RecordGraphBuilt records a graph build and the number of edges it emitted.
func (m *Metrics) RecordGraphBuilt(edges int, durationSeconds float64) {
	m.GraphsBuilt.Inc()
	m.GraphEdges.Add(float64(edges))
	m.GraphBuildDuration.Observe(durationSeconds)
}

// RecordStoreError records a failed persistence operation.
func (m *Metrics) RecordStoreError(operation string) {
	m.StoreErrors.WithLabelValues(operation).Inc()
}

// RecordEventPublished records a delivered domain event.
func (m *Metrics) RecordEventPublished(eventType string) {
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

// RecordEventFailed records a domain event that could not be delivered.
func (m *Metrics) RecordEventFailed(eventType string) {
	m.EventsFailed.WithLabelValues(eventType).Inc()
}

// RecordHTTPRequest records a served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}
