// Package papersources provides interfaces and types for bibliographic provider clients.
//
// Each provider (ScholarGraph, WorkIndex, CitationRegistry, PreprintArchive)
// implements the PaperSource interface and maps its own payload shape into
// domain.PaperRecord. The Registry fans a single query out to every enabled
// source concurrently and isolates per-provider failures.
//
// Example usage:
//
//	registry := papersources.NewRegistry()
//	registry.Register(scholargraph.New(cfg))
//	papers := registry.SearchAll(ctx, "graph neural networks", 10)
package papersources

import (
	"context"
	"time"

	"github.com/helixir/paper-aggregator/internal/domain"
)

// SearchParams defines the parameters for a provider search.
type SearchParams struct {
	// Query is the free-text search query (required).
	Query string

	// MaxResults limits the number of papers requested from the provider.
	// Providers clamp this to their own page size limit.
	// A value of 0 uses the provider's default.
	MaxResults int
}

// SearchResult contains the results from a single provider search.
type SearchResult struct {
	// Papers contains the mapped records. May be empty; zero results is not an error.
	Papers []domain.PaperRecord

	// TotalResults is the provider-reported match count, when available.
	TotalResults int

	// Source identifies which provider produced these results.
	Source domain.SourceType

	// SearchDuration covers network latency and response parsing.
	SearchDuration time.Duration
}

// PaperSource defines the interface that all provider clients must implement.
type PaperSource interface {
	// Search issues one outbound query and maps the response into records.
	// Transport failures, non-2xx responses and malformed payloads are returned
	// as errors; the Registry downgrades them to an empty contribution.
	// Implementations must honour context cancellation and must not retry.
	Search(ctx context.Context, params SearchParams) (*SearchResult, error)

	// SourceType returns the type identifier for this provider.
	SourceType() domain.SourceType

	// Name returns a human-readable name for logging and metrics.
	Name() string

	// IsEnabled returns whether this provider takes part in searches.
	IsEnabled() bool

	// TrustWeight is the static ranking weight of this provider.
	TrustWeight() float64
}
