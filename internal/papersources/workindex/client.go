package workindex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/helixir/paper-aggregator/internal/domain"
	"github.com/helixir/paper-aggregator/internal/papersources"
)

const (
	// DefaultBaseURL is the default WorkIndex API base URL.
	DefaultBaseURL = "https://api.openalex.org"

	// DefaultRateLimit is the default rate limit for requests per second.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 10

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = papersources.DefaultProviderTimeout

	// DefaultMaxResults is the default page size.
	DefaultMaxResults = 10

	// MaxPageSize is the API's per_page ceiling.
	MaxPageSize = 200

	// maxAbstractWords guards against oversized inverted indexes.
	maxAbstractWords = 100_000

	sourceName = "WorkIndex"
)

// Config holds configuration for the WorkIndex client.
type Config struct {
	// BaseURL is the API base URL.
	BaseURL string

	// Email is the contact address sent as mailto for the polite pool.
	Email string

	// Timeout is the request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// MaxResults is the page size used when the search has no limit.
	MaxResults int

	// TrustWeight overrides the default ranking weight when positive.
	TrustWeight float64

	// Enabled indicates whether this source is enabled for searches.
	Enabled bool
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BurstSize == 0 {
		c.BurstSize = DefaultBurstSize
	}
	if c.MaxResults == 0 {
		c.MaxResults = DefaultMaxResults
	}
	if c.TrustWeight <= 0 {
		c.TrustWeight = domain.TrustWorkIndex
	}
}

// Client implements the papersources.PaperSource interface for WorkIndex.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
}

// Ensure Client implements PaperSource interface.
var _ papersources.PaperSource = (*Client)(nil)

// New creates a new WorkIndex client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	userAgent := papersources.DefaultUserAgent
	if cfg.Email != "" {
		userAgent += " (mailto:" + cfg.Email + ")"
	}

	return &Client{
		config: cfg,
		httpClient: papersources.NewHTTPClient(papersources.HTTPClientConfig{
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			BurstSize: cfg.BurstSize,
			UserAgent: userAgent,
		}),
	}
}

// NewWithHTTPClient creates a new WorkIndex client with a custom HTTP client.
func NewWithHTTPClient(cfg Config, httpClient *papersources.HTTPClient) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// Search queries WorkIndex for works matching the given parameters.
func (c *Client) Search(ctx context.Context, params papersources.SearchParams) (*papersources.SearchResult, error) {
	startTime := time.Now()

	searchURL, err := c.buildSearchURL(params)
	if err != nil {
		return nil, fmt.Errorf("building search URL: %w", err)
	}

	resp, err := c.httpClient.Get(ctx, searchURL, "application/json")
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if err := papersources.CheckResponse(resp, domain.SourceTypeWorkIndex, nil); err != nil {
		return nil, err
	}

	var searchResp SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, papersources.MaxResponseSize)).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	papers := make([]domain.PaperRecord, 0, len(searchResp.Results))
	for i := range searchResp.Results {
		papers = append(papers, workToRecord(&searchResp.Results[i]))
	}

	return &papersources.SearchResult{
		Papers:         papers,
		TotalResults:   searchResp.Meta.Count,
		Source:         domain.SourceTypeWorkIndex,
		SearchDuration: time.Since(startTime),
	}, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypeWorkIndex
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is currently enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// TrustWeight returns the ranking weight of this source.
func (c *Client) TrustWeight() float64 {
	return c.config.TrustWeight
}

func (c *Client) buildSearchURL(params papersources.SearchParams) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	worksURL := baseURL.JoinPath("works")

	query := url.Values{}
	query.Set("search", params.Query)
	query.Set("per_page", strconv.Itoa(papersources.ClampLimit(params.MaxResults, c.config.MaxResults, MaxPageSize)))
	if c.config.Email != "" {
		query.Set("mailto", c.config.Email)
	}

	worksURL.RawQuery = query.Encode()
	return worksURL.String(), nil
}

// workToRecord maps a work to a paper record. The landing page is preferred
// over the DOI link as the record URL.
func workToRecord(work *Work) domain.PaperRecord {
	title := work.DisplayName
	if strings.TrimSpace(title) == "" {
		title = work.Title
	}

	record := domain.PaperRecord{
		Title:    papersources.TitleOrUntitled(title),
		Abstract: reconstructAbstract(work.AbstractInvertedIndex),
		URL:      work.DOI,
		Year:     work.PublicationYear,
		Source:   domain.SourceTypeWorkIndex,
		PaperID:  work.ID,
	}

	if loc := work.PrimaryLocation; loc != nil {
		if loc.LandingPageURL != "" {
			record.URL = loc.LandingPageURL
		}
		if loc.Source != nil {
			record.Venue = loc.Source.DisplayName
		}
	}

	names := make([]string, 0, len(work.Authorships))
	for _, a := range work.Authorships {
		names = append(names, a.Author.DisplayName)
	}
	record.Authors = papersources.CompactStrings(names)

	return record
}

// reconstructAbstract rebuilds plain text from an inverted index. Each
// position holds one word; a later entry overwrites an earlier one.
func reconstructAbstract(index InvertedIndex) string {
	totalPairs := 0
	for _, entry := range index {
		totalPairs += len(entry.Positions)
	}
	if totalPairs == 0 || totalPairs > maxAbstractWords {
		return ""
	}

	byPos := make(map[int]string, totalPairs)
	for _, entry := range index {
		for _, pos := range entry.Positions {
			byPos[pos] = entry.Word
		}
	}

	positions := make([]int, 0, len(byPos))
	for pos := range byPos {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	words := make([]string, len(positions))
	for i, pos := range positions {
		words[i] = byPos[pos]
	}
	return strings.Join(words, " ")
}
