package papersources

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/helixir/paper-aggregator/internal/domain"
)

// MinQueryLength is the shortest trimmed query that reaches any provider.
const MinQueryLength = 3

var (
	// ErrProviderPanic wraps a panic recovered from a provider call.
	ErrProviderPanic = errors.New("provider panicked")

	// ErrProviderTimeout marks a provider that did not finish inside its timeout.
	ErrProviderTimeout = errors.New("provider timed out")
)

// SourceResult is the outcome of one provider call during a fan-out.
//
// A failed provider contributes no papers. Err records why; it is reported
// for diagnostics and never propagated to the caller of SearchAll.
type SourceResult struct {
	// Source identifies which provider produced the result.
	Source domain.SourceType

	// Papers holds the mapped records. Always nil when Err is set.
	Papers []domain.PaperRecord

	// TotalResults is the provider-reported match count.
	TotalResults int

	// Err is the reason this provider's contribution was ignored.
	Err error

	// Duration is how long the call took, including a timeout.
	Duration time.Duration
}

// Ignored reports whether the provider's contribution was dropped.
func (r SourceResult) Ignored() bool {
	return r.Err != nil
}

// TimedOut reports whether the provider exceeded its per-call timeout.
func (r SourceResult) TimedOut() bool {
	return errors.Is(r.Err, ErrProviderTimeout)
}

// RegistryConfig configures fan-out behaviour.
type RegistryConfig struct {
	// ProviderTimeout bounds each provider call. Zero uses DefaultProviderTimeout.
	ProviderTimeout time.Duration

	// MinQueryLength is the shortest trimmed query searched. Zero uses MinQueryLength.
	MinQueryLength int

	// MaxConcurrency caps simultaneous provider calls. Zero means no cap.
	MaxConcurrency int
}

func (c *RegistryConfig) applyDefaults() {
	if c.ProviderTimeout <= 0 {
		c.ProviderTimeout = DefaultProviderTimeout
	}
	if c.MinQueryLength <= 0 {
		c.MinQueryLength = MinQueryLength
	}
}

// Registry owns the configured provider clients and coordinates fan-out searches.
// Sources keep their registration order, which fixes the order results are
// concatenated in regardless of which provider finishes first.
type Registry struct {
	mu      sync.RWMutex
	sources []PaperSource
	config  RegistryConfig
	logger  zerolog.Logger
}

// NewRegistry creates a registry with default fan-out settings and no logging.
func NewRegistry() *Registry {
	return NewRegistryWithConfig(RegistryConfig{}, zerolog.Nop())
}

// NewRegistryWithConfig creates a registry with the given settings.
func NewRegistryWithConfig(cfg RegistryConfig, logger zerolog.Logger) *Registry {
	cfg.applyDefaults()
	return &Registry{
		config: cfg,
		logger: logger.With().Str("component", "papersources.registry").Logger(),
	}
}

// Register appends a source to the registry.
// A source with the same type replaces the earlier one in its original position.
func (r *Registry) Register(source PaperSource) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.sources {
		if s.SourceType() == source.SourceType() {
			r.sources[i] = source
			return
		}
	}
	r.sources = append(r.sources, source)
}

// Get returns a source by type, or nil if not found.
func (r *Registry) Get(sourceType domain.SourceType) PaperSource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.sources {
		if s.SourceType() == sourceType {
			return s
		}
	}
	return nil
}

// AllSources returns a snapshot of all registered sources in registration order.
func (r *Registry) AllSources() []PaperSource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]PaperSource, len(r.sources))
	copy(sources, r.sources)
	return sources
}

// EnabledSources returns a snapshot of the enabled sources in registration order.
func (r *Registry) EnabledSources() []PaperSource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]PaperSource, 0, len(r.sources))
	for _, source := range r.sources {
		if source.IsEnabled() {
			sources = append(sources, source)
		}
	}
	return sources
}

// TrustTable returns the trust weight of every registered source.
func (r *Registry) TrustTable() domain.TrustTable {
	r.mu.RLock()
	defer r.mu.RUnlock()

	table := make(domain.TrustTable, len(r.sources))
	for _, s := range r.sources {
		table[s.SourceType()] = s.TrustWeight()
	}
	return table
}

// SearchAll runs query against every enabled source and returns the raw,
// not yet deduplicated records concatenated in registration order.
// A trimmed query shorter than the minimum length returns an empty slice
// without contacting any provider. Provider failures are dropped.
func (r *Registry) SearchAll(ctx context.Context, query string, limit int) []domain.PaperRecord {
	results := r.SearchSources(ctx, SearchParams{Query: query, MaxResults: limit}, nil)
	return Concat(results)
}

// Concat flattens per-source results in order, skipping ignored ones.
func Concat(results []SourceResult) []domain.PaperRecord {
	total := 0
	for _, res := range results {
		total += len(res.Papers)
	}

	papers := make([]domain.PaperRecord, 0, total)
	for _, res := range results {
		if res.Ignored() {
			continue
		}
		papers = append(papers, res.Papers...)
	}
	return papers
}

// SearchSources searches specific sources concurrently.
// If sourceTypes is empty, all enabled sources are searched.
// The returned slice has one entry per searched source, in registration order.
// It returns nil when the query is too short or no source matches.
func (r *Registry) SearchSources(ctx context.Context, params SearchParams, sourceTypes []domain.SourceType) []SourceResult {
	params.Query = strings.TrimSpace(params.Query)
	if utf8.RuneCountInString(params.Query) < r.config.MinQueryLength {
		return nil
	}

	sources := r.selectSources(sourceTypes)
	if len(sources) == 0 {
		return nil
	}

	// Each goroutine owns one slot, so no locking is needed while collecting.
	results := make([]SourceResult, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	if r.config.MaxConcurrency > 0 {
		g.SetLimit(r.config.MaxConcurrency)
	}
	for i, source := range sources {
		g.Go(func() error {
			results[i] = r.searchOne(gctx, source, params)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (r *Registry) selectSources(sourceTypes []domain.SourceType) []PaperSource {
	if len(sourceTypes) == 0 {
		return r.EnabledSources()
	}

	wanted := make(map[domain.SourceType]bool, len(sourceTypes))
	for _, st := range sourceTypes {
		wanted[st] = true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]PaperSource, 0, len(sourceTypes))
	for _, s := range r.sources {
		if wanted[s.SourceType()] {
			sources = append(sources, s)
		}
	}
	return sources
}

// searchOne calls a single provider under its own timeout. Errors, timeouts
// and panics become an ignored SourceResult.
func (r *Registry) searchOne(ctx context.Context, source PaperSource, params SearchParams) (res SourceResult) {
	start := time.Now()
	res.Source = source.SourceType()

	defer func() {
		if p := recover(); p != nil {
			res.Papers = nil
			res.TotalResults = 0
			res.Err = fmt.Errorf("%w: %s: %v", ErrProviderPanic, source.Name(), p)
		}
		res.Duration = time.Since(start)
		r.logResult(res, source.Name())
	}()

	callCtx, cancel := context.WithTimeout(ctx, r.config.ProviderTimeout)
	defer cancel()

	result, err := source.Search(callCtx, params)

	// A provider that outlived its deadline contributes nothing even if it returned data.
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		res.Err = fmt.Errorf("%w after %s", ErrProviderTimeout, r.config.ProviderTimeout)
		return res
	}
	if err != nil {
		res.Err = err
		return res
	}
	if result != nil {
		res.Papers = result.Papers
		res.TotalResults = result.TotalResults
	}
	return res
}

func (r *Registry) logResult(res SourceResult, name string) {
	if res.Ignored() {
		r.logger.Warn().
			Err(res.Err).
			Str("source", string(res.Source)).
			Str("source_name", name).
			Dur("duration", res.Duration).
			Msg("provider search ignored")
		return
	}
	r.logger.Debug().
		Str("source", string(res.Source)).
		Int("papers", len(res.Papers)).
		Dur("duration", res.Duration).
		Msg("provider search completed")
}
