package aggregator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/helixir/paper-aggregator/internal/dedup"
	"github.com/helixir/paper-aggregator/internal/domain"
	"github.com/helixir/paper-aggregator/internal/events"
	"github.com/helixir/paper-aggregator/internal/graph"
	"github.com/helixir/paper-aggregator/internal/observability"
	"github.com/helixir/paper-aggregator/internal/papersources"
	"github.com/helixir/paper-aggregator/internal/repository"
)

// Search limits used when Config leaves them unset.
const (
	DefaultLimit    = dedup.DefaultLimit
	DefaultMaxLimit = 50
)

// PaperSearcher fans a query out to providers.
// *papersources.Registry satisfies it.
type PaperSearcher interface {
	SearchSources(ctx context.Context, params papersources.SearchParams, sourceTypes []domain.SourceType) []papersources.SourceResult
}

// PaperStore persists ranked papers. repository.PaperRepository satisfies it.
type PaperStore interface {
	BulkUpsert(ctx context.Context, records []domain.PaperRecord) (repository.UpsertResult, error)
}

// EdgeStore persists and reads graph edges. repository.EdgeRepository satisfies it.
type EdgeStore interface {
	UpsertEdges(ctx context.Context, edges []domain.GraphEdge) (repository.UpsertResult, error)
	Neighbors(ctx context.Context, paperUID string, limit int) ([]domain.GraphEdge, error)
}

// Config holds pipeline limits.
type Config struct {
	// DefaultLimit applies when the caller passes limit <= 0.
	DefaultLimit int
	// MaxLimit caps the caller's limit.
	MaxLimit int
	// MinQueryLength is the shortest trimmed query that is searched.
	MinQueryLength int
}

func (c *Config) applyDefaults() {
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = DefaultLimit
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = DefaultMaxLimit
	}
	if c.DefaultLimit > c.MaxLimit {
		c.DefaultLimit = c.MaxLimit
	}
	if c.MinQueryLength <= 0 {
		c.MinQueryLength = papersources.MinQueryLength
	}
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithPaperStore persists every ranked search result.
func WithPaperStore(store PaperStore) Option {
	return func(s *Service) { s.papers = store }
}

// WithEdgeStore persists built graph edges and enables Neighbors.
func WithEdgeStore(store EdgeStore) Option {
	return func(s *Service) { s.edges = store }
}

// WithPublisher publishes pipeline events.
func WithPublisher(publisher events.Publisher, emitter *events.Emitter) Option {
	return func(s *Service) {
		s.publisher = publisher
		if emitter != nil {
			s.emitter = emitter
		}
	}
}

// WithMetrics records pipeline metrics.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(s *Service) { s.metrics = metrics }
}

// Service is the paper aggregation pipeline. It is safe for concurrent use.
type Service struct {
	cfg       Config
	searcher  PaperSearcher
	ranker    *dedup.Ranker
	scorer    *graph.Scorer
	papers    PaperStore
	edges     EdgeStore
	publisher events.Publisher
	emitter   *events.Emitter
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

// NewService creates a pipeline over searcher. Nil ranker or scorer use defaults.
func NewService(cfg Config, searcher PaperSearcher, ranker *dedup.Ranker, scorer *graph.Scorer, logger zerolog.Logger, opts ...Option) *Service {
	cfg.applyDefaults()
	if ranker == nil {
		ranker = dedup.NewRanker(dedup.Config{})
	}
	if scorer == nil {
		scorer = graph.NewScorer(graph.Config{})
	}

	s := &Service{
		cfg:       cfg,
		searcher:  searcher,
		ranker:    ranker,
		scorer:    scorer,
		publisher: events.NoopPublisher{},
		emitter:   events.NewEmitter(""),
		logger:    logger.With().Str("component", "aggregator").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchResult is the outcome of one pipeline run.
type SearchResult struct {
	SearchID   string                 `json:"search_id"`
	Query      string                 `json:"query"`
	Limit      int                    `json:"limit"`
	Papers     []domain.PaperRecord   `json:"papers"`
	Sources    []domain.SourceOutcome `json:"sources"`
	RawCount   int                    `json:"raw_count"`
	Duplicates int                    `json:"duplicates"`
	Persisted  bool                   `json:"persisted"`
	Duration   time.Duration          `json:"duration_ns"`
}

// ClampLimit maps a caller limit into [1, MaxLimit], using DefaultLimit for limit <= 0.
func (s *Service) ClampLimit(limit int) int {
	if limit <= 0 {
		return s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		return s.cfg.MaxLimit
	}
	return limit
}

// Search runs the full pipeline for query.
//
// A trimmed query shorter than MinQueryLength yields an empty result without
// contacting any provider. Provider failures only shrink the result; the
// per-source outcomes report why. The returned error is non-nil only when
// ctx is cancelled before ranking.
func (s *Service) Search(ctx context.Context, query string, limit int) (*SearchResult, error) {
	start := time.Now()
	searchID := uuid.New().String()
	ctx = observability.WithSearchIDContext(ctx, searchID)

	query = strings.TrimSpace(query)
	result := &SearchResult{
		SearchID: searchID,
		Query:    query,
		Limit:    s.ClampLimit(limit),
		Papers:   []domain.PaperRecord{},
		Sources:  []domain.SourceOutcome{},
	}

	logger := observability.WithSearchID(observability.WithSearchContext(
		observability.LoggerFromContext(ctx, s.logger), query, ""), searchID)

	if utf8.RuneCountInString(query) < s.cfg.MinQueryLength {
		logger.Debug().Int("min_length", s.cfg.MinQueryLength).Msg("query too short, skipping providers")
		if s.metrics != nil {
			s.metrics.RecordSearchRejected()
		}
		return result, nil
	}

	results := s.searcher.SearchSources(ctx, papersources.SearchParams{
		Query:      query,
		MaxResults: result.Limit,
	}, nil)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchCancelled, err)
	}

	for _, sr := range results {
		result.Sources = append(result.Sources, s.recordSource(sr))
	}

	raw := papersources.Concat(results)
	ranked, stats := s.ranker.Rank(raw, result.Limit)

	result.Papers = ranked
	result.RawCount = stats.Input
	result.Duplicates = stats.Duplicates
	result.Duration = time.Since(start)

	if s.metrics != nil {
		s.metrics.RecordSearchCompleted(len(ranked), stats.Duplicates, stats.Untitled, result.Duration.Seconds())
	}

	result.Persisted = s.persistPapers(ctx, logger, ranked)
	s.publishSearched(ctx, logger, result)

	logger.Info().
		Int("raw", stats.Input).
		Int("duplicates", stats.Duplicates).
		Int("untitled", stats.Untitled).
		Int("returned", len(ranked)).
		Int("sources", len(results)).
		Dur("duration", result.Duration).
		Msg("search completed")

	return result, nil
}

func (s *Service) recordSource(sr papersources.SourceResult) domain.SourceOutcome {
	outcome := domain.SourceOutcome{
		Source:   sr.Source,
		Count:    len(sr.Papers),
		Duration: sr.Duration,
	}
	if sr.Err != nil {
		outcome.Error = sr.Err.Error()
	}

	if s.metrics == nil {
		return outcome
	}

	name := string(sr.Source)
	s.metrics.RecordSourceSearchStarted(name)
	if !sr.Ignored() {
		s.metrics.RecordSourceSearchCompleted(name, len(sr.Papers), sr.Duration.Seconds())
		return outcome
	}

	s.metrics.RecordSourceSearchFailed(name, sr.Duration.Seconds())
	if sr.TimedOut() {
		s.metrics.RecordSourceTimeout(name)
	}
	if isRateLimited(sr.Err) {
		s.metrics.RecordSourceRateLimited(name)
	}
	return outcome
}

func isRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}

func (s *Service) persistPapers(ctx context.Context, logger zerolog.Logger, papers []domain.PaperRecord) bool {
	if s.papers == nil || len(papers) == 0 {
		return false
	}

	res, err := s.papers.BulkUpsert(ctx, papers)
	if err != nil {
		logger.Error().Err(err).Int("papers", len(papers)).Msg("failed to persist papers")
		if s.metrics != nil {
			s.metrics.RecordStoreError("papers_upsert")
		}
		return false
	}

	logger.Debug().
		Int("inserted", res.Inserted).
		Int("updated", res.Updated).
		Msg("papers persisted")
	return true
}

func (s *Service) publishSearched(ctx context.Context, logger zerolog.Logger, result *SearchResult) {
	uids := make([]string, len(result.Papers))
	for i, p := range result.Papers {
		uids[i] = p.PaperUID
	}

	s.publish(ctx, logger, eventParams(ctx, result.SearchID, domain.EventTypePapersSearched, domain.PapersSearchedPayload{
		SearchID:   result.SearchID,
		Query:      result.Query,
		Limit:      result.Limit,
		RawCount:   result.RawCount,
		PaperCount: len(result.Papers),
		PaperUIDs:  uids,
		Sources:    result.Sources,
		Duration:   result.Duration,
	}))
}

func eventParams(ctx context.Context, aggregateID, eventType string, payload interface{}) events.EmitParams {
	traceID, _ := observability.TraceSpanFromContext(ctx)
	return events.EmitParams{
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
		CorrelationID: observability.RequestIDFromContext(ctx),
		TraceID:       traceID,
	}
}

// publish emits and sends one event. Failures are logged and counted only.
func (s *Service) publish(ctx context.Context, logger zerolog.Logger, params events.EmitParams) {
	event, err := s.emitter.Emit(params)
	if err == nil {
		err = s.publisher.Publish(ctx, event)
	}
	if err != nil {
		logger.Warn().Err(err).Str("event_type", params.EventType).Msg("failed to publish event")
		if s.metrics != nil {
			s.metrics.RecordEventFailed(params.EventType)
		}
		return
	}
	if s.metrics != nil {
		s.metrics.RecordEventPublished(params.EventType)
	}
}
