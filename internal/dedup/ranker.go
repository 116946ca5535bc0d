package dedup

import (
	"sort"
	"strings"

	"github.com/helixir/paper-aggregator/internal/domain"
)

// DefaultLimit is the result size used when the caller gives none.
const DefaultLimit = 10

// Config configures a Ranker.
type Config struct {
	// Trust maps sources to ranking weights. Nil uses domain.DefaultTrustTable.
	Trust domain.TrustTable

	// SearchURLBase is the web search used for records without a URL.
	SearchURLBase string
}

// Ranker deduplicates provider records and orders them by source trust.
// It holds no mutable state and is safe for concurrent use.
type Ranker struct {
	trust         domain.TrustTable
	searchURLBase string
}

// NewRanker creates a Ranker.
func NewRanker(cfg Config) *Ranker {
	if cfg.Trust == nil {
		cfg.Trust = domain.DefaultTrustTable()
	}
	if cfg.SearchURLBase == "" {
		cfg.SearchURLBase = DefaultSearchURLBase
	}
	return &Ranker{
		trust:         cfg.Trust,
		searchURLBase: cfg.SearchURLBase,
	}
}

// Stats describes what a DedupeAndRank pass did.
type Stats struct {
	Input      int
	Untitled   int
	Duplicates int
	Truncated  int
}

// DedupeAndRank returns at most limit records, one per normalized title.
//
// Within a title group the record from the most trusted source wins and
// replaces the others wholesale; on equal trust the earliest record wins.
// Survivors are stably sorted by trust descending, given a URL and abstract
// fallback and a PaperUID, then truncated. A non-positive limit uses DefaultLimit.
// The input slice is not modified.
func (r *Ranker) DedupeAndRank(records []domain.PaperRecord, limit int) []domain.PaperRecord {
	ranked, _ := r.Rank(records, limit)
	return ranked
}

// Rank is DedupeAndRank that also reports Stats.
func (r *Ranker) Rank(records []domain.PaperRecord, limit int) ([]domain.PaperRecord, Stats) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	stats := Stats{Input: len(records)}

	// Group slots keep first-seen key order even when a later record wins the slot.
	slot := make(map[string]int, len(records))
	kept := make([]domain.PaperRecord, 0, len(records))
	for _, rec := range records {
		key := NormalizeTitle(rec.Title)
		if key == "" {
			stats.Untitled++
			continue
		}

		i, seen := slot[key]
		if !seen {
			slot[key] = len(kept)
			kept = append(kept, rec)
			continue
		}

		stats.Duplicates++
		if r.trust.Weight(rec.Source) > r.trust.Weight(kept[i].Source) {
			kept[i] = rec
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return r.trust.Weight(kept[i].Source) > r.trust.Weight(kept[j].Source)
	})

	if len(kept) > limit {
		stats.Truncated = len(kept) - limit
		kept = kept[:limit]
	}

	for i := range kept {
		r.finalize(&kept[i])
	}
	return kept, stats
}

// finalize fills the URL and abstract fallbacks and assigns the uid.
// kept holds copies, so this never touches the caller's records.
func (r *Ranker) finalize(rec *domain.PaperRecord) {
	if strings.TrimSpace(rec.URL) == "" {
		rec.URL = SearchURL(r.searchURLBase, rec.Title)
	}
	rec.PaperUID = PaperUID(rec.Title, rec.Year, rec.Source)
	if strings.TrimSpace(rec.Abstract) == "" {
		rec.Abstract = domain.AbstractNotAvailable
	}
	if rec.Authors != nil {
		rec.Authors = append([]string(nil), rec.Authors...)
	}
}
