package repository

import (
	"context"

	"github.com/helixir/paper-aggregator/internal/domain"
)

// EdgeRepository persists directed graph edges between papers.
type EdgeRepository interface {
	// UpsertEdges writes edges in one batch round trip, keyed by (FromID, ToID).
	// An existing edge takes the incoming weight and relation.
	// Returns domain.ErrInvalidInput for self edges, blank ids or unknown relations.
	UpsertEdges(ctx context.Context, edges []domain.GraphEdge) (UpsertResult, error)

	// Neighbors returns the outgoing edges of paperUID, strongest first.
	// limit <= 0 selects the default; values above the maximum are capped.
	Neighbors(ctx context.Context, paperUID string, limit int) ([]domain.GraphEdge, error)
}
