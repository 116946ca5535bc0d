// Package observability provides logging, metrics, and context helpers for
// the paper aggregator.
//
// # Overview
//
// The observability package provides:
//
//   - Structured logging with zerolog
//   - Prometheus metrics for searches, providers, graphs and events
//   - Context helpers for propagating request identifiers
//
// # Logging
//
// Create a logger from configuration:
//
//	cfg := observability.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	}
//
//	logger := observability.NewLogger(cfg)
//	logger.Info().Str("search_id", id).Msg("search started")
//
// Add search context to a logger:
//
//	logger = observability.WithSearchContext(logger, query, "scholar_graph")
//
// # Metrics
//
// Metrics register with the default Prometheus registry unless a registerer
// is supplied:
//
//	metrics := observability.NewMetrics("paper_aggregator")
//	metrics.RecordSourceSearchCompleted("work_index", 42, 0.8)
//
// # Standard Fields
//
// Common fields used across the service:
//
//   - request_id: HTTP request identifier
//   - search_id: Aggregated search identifier
//   - query: Free-text search query
//   - source: Provider (scholar_graph, work_index, citation_registry, preprint_archive)
//   - paper_uid: Stable paper identifier
//   - trace_id: Distributed trace identifier
//
// All components are safe for concurrent use from multiple goroutines.
package observability
