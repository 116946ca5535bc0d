// Package repository persists ranked papers and graph edges in PostgreSQL.
//
// The aggregation pipeline itself never touches a datastore. These adapters
// are the caller-owned upsert routines it hands results to:
//
//   - PaperRepository: papers keyed by paper_uid
//   - EdgeRepository: directed paper_edges keyed by (from_id, to_id)
//
// Upserts never alter paper_uid, title or source of an existing paper.
//
// All implementations accept DBTX, so they run against the pool, inside a
// pgx.Tx, or against pgxmock in tests:
//
//	db, _ := database.New(ctx, &cfg.Database, logger)
//	papers := repository.NewPgPaperRepository(db)
//	edges := repository.NewPgEdgeRepository(db)
package repository

import (
	"github.com/helixir/paper-aggregator/internal/database"
)

// DBTX is the database interface supporting both pool and transaction contexts.
type DBTX = database.DBTX

// Filter pagination defaults and limits.
const (
	defaultFilterLimit = 100
	maxFilterLimit     = 1000
)

// Neighbor lookup defaults and limits.
const (
	defaultNeighborLimit = 20
	maxNeighborLimit     = 100
)

// applyPaginationDefaults normalizes limit and offset values for filter queries.
// It clamps limit to [1, maxFilterLimit] and ensures offset >= 0.
func applyPaginationDefaults(limit, offset *int) {
	if *limit <= 0 {
		*limit = defaultFilterLimit
	}
	if *limit > maxFilterLimit {
		*limit = maxFilterLimit
	}
	if *offset < 0 {
		*offset = 0
	}
}

// clampNeighborLimit maps limit into [1, maxNeighborLimit].
func clampNeighborLimit(limit int) int {
	if limit <= 0 {
		return defaultNeighborLimit
	}
	if limit > maxNeighborLimit {
		return maxNeighborLimit
	}
	return limit
}

// UpsertResult counts how a batch upsert landed.
type UpsertResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

// Total returns the number of rows written.
func (r UpsertResult) Total() int {
	return r.Inserted + r.Updated
}
