package aggregator

import (
	"github.com/rs/zerolog"

	"github.com/helixir/paper-aggregator/internal/config"
	"github.com/helixir/paper-aggregator/internal/dedup"
	"github.com/helixir/paper-aggregator/internal/graph"
	"github.com/helixir/paper-aggregator/internal/papersources"
	"github.com/helixir/paper-aggregator/internal/papersources/citationregistry"
	"github.com/helixir/paper-aggregator/internal/papersources/preprintarchive"
	"github.com/helixir/paper-aggregator/internal/papersources/scholargraph"
	"github.com/helixir/paper-aggregator/internal/papersources/workindex"
)

// NewRegistryFromConfig registers every enabled provider in a fixed order:
// ScholarGraph, WorkIndex, CitationRegistry, PreprintArchive. That order is
// the concatenation order of fan-out results and therefore the dedup tie-break.
func NewRegistryFromConfig(cfg *config.Config, logger zerolog.Logger) *papersources.Registry {
	registry := papersources.NewRegistryWithConfig(papersources.RegistryConfig{
		ProviderTimeout: cfg.Aggregator.ProviderTimeout,
		MinQueryLength:  cfg.Aggregator.MinQueryLength,
	}, logger)

	sources := cfg.PaperSources

	if sg := sources.ScholarGraph; sg.Enabled {
		registry.Register(scholargraph.NewClient(scholargraph.Config{
			BaseURL:     sg.BaseURL,
			APIKey:      sg.APIKey,
			Timeout:     sg.Timeout,
			RateLimit:   sg.RateLimit,
			BurstSize:   sg.BurstSize,
			TrustWeight: sg.TrustWeight,
			Enabled:     true,
		}, nil))
		logger.Info().Bool("api_key", sg.APIKey != "").Msg("registered paper source: ScholarGraph")
	}

	if wi := sources.WorkIndex; wi.Enabled {
		registry.Register(workindex.New(workindex.Config{
			BaseURL:     wi.BaseURL,
			Email:       wi.Mailto,
			Timeout:     wi.Timeout,
			RateLimit:   wi.RateLimit,
			BurstSize:   wi.BurstSize,
			TrustWeight: wi.TrustWeight,
			Enabled:     true,
		}))
		logger.Info().Msg("registered paper source: WorkIndex")
	}

	if cr := sources.CitationRegistry; cr.Enabled {
		registry.Register(citationregistry.New(citationregistry.Config{
			BaseURL:     cr.BaseURL,
			Email:       cr.Mailto,
			Timeout:     cr.Timeout,
			RateLimit:   cr.RateLimit,
			BurstSize:   cr.BurstSize,
			TrustWeight: cr.TrustWeight,
			Enabled:     true,
		}))
		logger.Info().Msg("registered paper source: CitationRegistry")
	}

	if pa := sources.PreprintArchive; pa.Enabled {
		registry.Register(preprintarchive.New(preprintarchive.Config{
			BaseURL:     pa.BaseURL,
			Timeout:     pa.Timeout,
			RateLimit:   pa.RateLimit,
			BurstSize:   pa.BurstSize,
			TrustWeight: pa.TrustWeight,
			Enabled:     true,
		}))
		logger.Info().Msg("registered paper source: PreprintArchive")
	}

	return registry
}

// NewScorerFromConfig builds the relationship scorer from graph settings.
func NewScorerFromConfig(cfg config.GraphConfig) *graph.Scorer {
	return graph.NewScorer(graph.Config{
		Embedder:  graph.NewHashEmbedder(cfg.VectorDimensions),
		Threshold: cfg.EdgeThreshold,
	})
}

// NewServiceFromConfig wires a Service over registry. The ranker takes its
// trust table from the registered providers.
func NewServiceFromConfig(cfg *config.Config, registry *papersources.Registry, logger zerolog.Logger, opts ...Option) *Service {
	ranker := dedup.NewRanker(dedup.Config{
		Trust:         registry.TrustTable(),
		SearchURLBase: cfg.Aggregator.SearchURLBase,
	})

	return NewService(Config{
		DefaultLimit:   cfg.Aggregator.DefaultLimit,
		MaxLimit:       cfg.Aggregator.MaxLimit,
		MinQueryLength: cfg.Aggregator.MinQueryLength,
	}, registry, ranker, NewScorerFromConfig(cfg.Graph), logger, opts...)
}
