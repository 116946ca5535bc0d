package repository

import (
	"context"

	"github.com/helixir/paper-aggregator/internal/domain"
)

// PaperRepository persists ranked paper records.
type PaperRepository interface {
	// BulkUpsert writes records in one batch round trip, keyed by PaperUID.
	// On conflict the abstract, url, authors, year and venue are refreshed when
	// the incoming value is informative; paper_uid, title and source are kept.
	// Returns domain.ErrInvalidInput if any record has no PaperUID or title.
	BulkUpsert(ctx context.Context, records []domain.PaperRecord) (UpsertResult, error)

	// GetByUID retrieves a single paper.
	// Returns domain.ErrNotFound if no matching paper exists.
	GetByUID(ctx context.Context, paperUID string) (*domain.PaperRecord, error)

	// GetByUIDs retrieves the papers that exist among uids, ordered by paper_uid.
	// Missing uids are skipped. Returns an empty slice for empty input.
	GetByUIDs(ctx context.Context, uids []string) ([]domain.PaperRecord, error)

	// List retrieves papers matching the filter, newest first, with the total
	// number of matches for pagination.
	List(ctx context.Context, filter PaperFilter) ([]domain.PaperRecord, int64, error)
}

// PaperFilter specifies criteria for listing papers.
type PaperFilter struct {
	// Source filters to papers reported by one provider (optional).
	Source *domain.SourceType

	// Year filters to a single publication year (optional).
	Year *int

	// Limit specifies maximum number of results (default: 100, max: 1000).
	Limit int

	// Offset specifies the starting position for pagination.
	Offset int
}

// Validate normalizes pagination and rejects unknown sources.
func (f *PaperFilter) Validate() error {
	if f.Source != nil && !f.Source.IsValid() {
		return domain.NewValidationError("source", "unknown source "+string(*f.Source))
	}
	applyPaginationDefaults(&f.Limit, &f.Offset)
	return nil
}
