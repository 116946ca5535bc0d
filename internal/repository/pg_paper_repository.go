package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helixir/paper-aggregator/internal/domain"
)

// PgPaperRepository implements PaperRepository using PostgreSQL.
type PgPaperRepository struct {
	db DBTX
}

// NewPgPaperRepository creates a new PostgreSQL paper repository.
func NewPgPaperRepository(db DBTX) *PgPaperRepository {
	return &PgPaperRepository{db: db}
}

var _ PaperRepository = (*PgPaperRepository)(nil)

const paperColumns = `paper_uid, title, abstract, url, authors, COALESCE(year, 0), venue, source`

const upsertPaperQuery = `
	INSERT INTO papers (
		paper_uid, title, abstract, url, authors, year, venue, source,
		created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
	)
	ON CONFLICT (paper_uid) DO UPDATE SET
		abstract = CASE
			WHEN EXCLUDED.abstract = 'NOT_AVAILABLE' THEN papers.abstract
			ELSE EXCLUDED.abstract
		END,
		url = COALESCE(NULLIF(EXCLUDED.url, ''), papers.url),
		authors = CASE
			WHEN cardinality(EXCLUDED.authors) > 0 THEN EXCLUDED.authors
			ELSE papers.authors
		END,
		year = COALESCE(EXCLUDED.year, papers.year),
		venue = COALESCE(NULLIF(EXCLUDED.venue, ''), papers.venue),
		updated_at = EXCLUDED.updated_at
	RETURNING (xmax = 0) AS inserted`

// BulkUpsert writes all records in a single batch.
func (r *PgPaperRepository) BulkUpsert(ctx context.Context, records []domain.PaperRecord) (UpsertResult, error) {
	var result UpsertResult
	if len(records) == 0 {
		return result, nil
	}

	for i, rec := range records {
		if rec.PaperUID == "" {
			return result, domain.NewValidationError("paper_uid", fmt.Sprintf("paper at index %d has no paper_uid", i))
		}
		if strings.TrimSpace(rec.Title) == "" {
			return result, domain.NewValidationError("title", fmt.Sprintf("paper at index %d has no title", i))
		}
	}

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(upsertPaperQuery,
			rec.PaperUID,
			rec.Title,
			storedAbstract(rec.Abstract),
			rec.URL,
			storedAuthors(rec.Authors),
			nullableYear(rec.Year),
			rec.Venue,
			string(rec.Source),
			now,
			now,
		)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for i := range records {
		var inserted bool
		if err := br.QueryRow().Scan(&inserted); err != nil {
			return result, fmt.Errorf("failed to upsert paper at index %d: %w", i, err)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	return result, nil
}

// GetByUID retrieves a paper by its paper_uid.
func (r *PgPaperRepository) GetByUID(ctx context.Context, paperUID string) (*domain.PaperRecord, error) {
	if paperUID == "" {
		return nil, domain.NewValidationError("paper_uid", "paper_uid is required")
	}

	query := `SELECT ` + paperColumns + ` FROM papers WHERE paper_uid = $1`

	rec, err := scanPaper(r.db.QueryRow(ctx, query, paperUID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.PaperNotFoundError{PaperUID: paperUID}
		}
		return nil, fmt.Errorf("failed to get paper by uid: %w", err)
	}

	return rec, nil
}

// GetByUIDs retrieves multiple papers in one query.
func (r *PgPaperRepository) GetByUIDs(ctx context.Context, uids []string) ([]domain.PaperRecord, error) {
	if len(uids) == 0 {
		return []domain.PaperRecord{}, nil
	}

	query := `SELECT ` + paperColumns + ` FROM papers WHERE paper_uid = ANY($1) ORDER BY paper_uid`

	rows, err := r.db.Query(ctx, query, uids)
	if err != nil {
		return nil, fmt.Errorf("failed to get papers by uids: %w", err)
	}
	defer rows.Close()

	return collectPapers(rows)
}

// List retrieves papers matching the filter.
func (r *PgPaperRepository) List(ctx context.Context, filter PaperFilter) ([]domain.PaperRecord, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}

	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter.Source != nil {
		conditions = append(conditions, fmt.Sprintf("source = $%d", argIndex))
		args = append(args, string(*filter.Source))
		argIndex++
	}

	if filter.Year != nil {
		conditions = append(conditions, fmt.Sprintf("year = $%d", argIndex))
		args = append(args, *filter.Year)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM papers %s", whereClause)
	var totalCount int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count papers: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM papers
		%s
		ORDER BY created_at DESC, paper_uid
		LIMIT $%d OFFSET $%d`,
		paperColumns, whereClause, argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list papers: %w", err)
	}
	defer rows.Close()

	papers, err := collectPapers(rows)
	if err != nil {
		return nil, 0, err
	}

	return papers, totalCount, nil
}

// paperScanDest holds the destination values for scanning a paper row.
type paperScanDest struct {
	rec    domain.PaperRecord
	source string
}

func (d *paperScanDest) destinations() []interface{} {
	return []interface{}{
		&d.rec.PaperUID, &d.rec.Title, &d.rec.Abstract, &d.rec.URL,
		&d.rec.Authors, &d.rec.Year, &d.rec.Venue, &d.source,
	}
}

func (d *paperScanDest) finalize() domain.PaperRecord {
	d.rec.Source = domain.SourceType(d.source)
	if len(d.rec.Authors) == 0 {
		d.rec.Authors = nil
	}
	return d.rec
}

func scanPaper(row pgx.Row) (*domain.PaperRecord, error) {
	var dest paperScanDest
	if err := row.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	rec := dest.finalize()
	return &rec, nil
}

func collectPapers(rows pgx.Rows) ([]domain.PaperRecord, error) {
	papers := make([]domain.PaperRecord, 0)
	for rows.Next() {
		var dest paperScanDest
		if err := rows.Scan(dest.destinations()...); err != nil {
			return nil, fmt.Errorf("failed to scan paper: %w", err)
		}
		papers = append(papers, dest.finalize())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating papers: %w", err)
	}
	return papers, nil
}

// storedAbstract writes the sentinel for records that skipped ranking.
func storedAbstract(abstract string) string {
	if abstract == "" {
		return domain.AbstractNotAvailable
	}
	return abstract
}

func storedAuthors(authors []string) []string {
	if authors == nil {
		return []string{}
	}
	return authors
}

// nullableYear stores unknown years as NULL.
func nullableYear(year int) *int {
	if year <= 0 {
		return nil
	}
	return &year
}
