package aggregator

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/helixir/paper-aggregator/internal/domain"
	"github.com/helixir/paper-aggregator/internal/graph"
	"github.com/helixir/paper-aggregator/internal/observability"
)

// GraphResult is a built graph together with its build id.
type GraphResult struct {
	GraphID   string      `json:"graph_id"`
	Graph     graph.Graph `json:"graph"`
	Persisted bool        `json:"persisted"`
}

// BuildGraph scores every pair of papers and returns the node and edge view.
// Edges are upserted when an EdgeStore is configured; a store failure is
// logged and leaves Persisted false.
func (s *Service) BuildGraph(ctx context.Context, papers []domain.PaperRecord) (*GraphResult, error) {
	start := time.Now()
	graphID := uuid.New().String()
	logger := observability.LoggerFromContext(ctx, s.logger).With().Str("graph_id", graphID).Logger()

	g := s.scorer.Build(papers)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordGraphBuilt(len(g.Edges), time.Since(start).Seconds())
	}

	result := &GraphResult{GraphID: graphID, Graph: g}

	if s.edges != nil && len(g.Edges) > 0 {
		res, err := s.edges.UpsertEdges(ctx, g.Edges)
		if err != nil {
			logger.Error().Err(err).Int("edges", len(g.Edges)).Msg("failed to persist edges")
			if s.metrics != nil {
				s.metrics.RecordStoreError("edges_upsert")
			}
		} else {
			result.Persisted = true
			logger.Debug().Int("inserted", res.Inserted).Int("updated", res.Updated).Msg("edges persisted")
		}
	}

	s.publish(ctx, logger, eventParams(ctx, graphID, domain.EventTypeGraphBuilt, domain.GraphBuiltPayload{
		GraphID: graphID,
		Nodes:   len(g.Nodes),
		Edges:   len(g.Edges),
	}))

	logger.Info().
		Int("papers", len(papers)).
		Int("nodes", len(g.Nodes)).
		Int("edges", len(g.Edges)).
		Dur("duration", time.Since(start)).
		Msg("graph built")

	return result, nil
}

// Neighbors returns the stored edges leaving paperUID, strongest first.
// It returns domain.ErrStoreDisabled when no EdgeStore is configured.
func (s *Service) Neighbors(ctx context.Context, paperUID string, limit int) ([]domain.GraphEdge, error) {
	if s.edges == nil {
		return nil, domain.ErrStoreDisabled
	}
	edges, err := s.edges.Neighbors(ctx, paperUID, limit)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordStoreError("edges_neighbors")
		}
		return nil, err
	}
	return edges, nil
}
