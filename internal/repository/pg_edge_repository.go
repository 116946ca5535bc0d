package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helixir/paper-aggregator/internal/domain"
)

// PgEdgeRepository implements EdgeRepository using PostgreSQL.
type PgEdgeRepository struct {
	db DBTX
}

// NewPgEdgeRepository creates a new PostgreSQL edge repository.
func NewPgEdgeRepository(db DBTX) *PgEdgeRepository {
	return &PgEdgeRepository{db: db}
}

var _ EdgeRepository = (*PgEdgeRepository)(nil)

const upsertEdgeQuery = `
	INSERT INTO paper_edges (from_id, to_id, weight, relation_type, created_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (from_id, to_id) DO UPDATE SET
		weight = EXCLUDED.weight,
		relation_type = EXCLUDED.relation_type
	RETURNING (xmax = 0) AS inserted`

// UpsertEdges writes all edges in a single batch.
func (r *PgEdgeRepository) UpsertEdges(ctx context.Context, edges []domain.GraphEdge) (UpsertResult, error) {
	var result UpsertResult
	if len(edges) == 0 {
		return result, nil
	}

	for i, e := range edges {
		if e.FromID == "" || e.ToID == "" {
			return result, domain.NewValidationError("edge", fmt.Sprintf("edge at index %d has a blank endpoint", i))
		}
		if e.FromID == e.ToID {
			return result, domain.NewValidationError("edge", fmt.Sprintf("edge at index %d is a self edge", i))
		}
		if !e.RelationType.IsValid() {
			return result, domain.NewValidationError("relation_type", fmt.Sprintf("edge at index %d has unknown relation %q", i, e.RelationType))
		}
	}

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, e := range edges {
		createdAt := e.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		batch.Queue(upsertEdgeQuery, e.FromID, e.ToID, e.Weight, string(e.RelationType), createdAt)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for i := range edges {
		var inserted bool
		if err := br.QueryRow().Scan(&inserted); err != nil {
			return result, fmt.Errorf("failed to upsert edge at index %d: %w", i, err)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	return result, nil
}

// Neighbors returns the strongest outgoing edges of a paper.
func (r *PgEdgeRepository) Neighbors(ctx context.Context, paperUID string, limit int) ([]domain.GraphEdge, error) {
	if paperUID == "" {
		return nil, domain.NewValidationError("paper_uid", "paper_uid is required")
	}

	query := `
		SELECT from_id, to_id, weight, relation_type, created_at
		FROM paper_edges
		WHERE from_id = $1
		ORDER BY weight DESC, to_id
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, paperUID, clampNeighborLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query neighbors: %w", err)
	}
	defer rows.Close()

	edges := make([]domain.GraphEdge, 0)
	for rows.Next() {
		var (
			e        domain.GraphEdge
			relation string
		)
		if err := rows.Scan(&e.FromID, &e.ToID, &e.Weight, &relation, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		e.RelationType = domain.RelationType(relation)
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating edges: %w", err)
	}

	return edges, nil
}
