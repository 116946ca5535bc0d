package scholargraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/helixir/paper-aggregator/internal/domain"
	"github.com/helixir/paper-aggregator/internal/papersources"
)

const (
	// DefaultBaseURL is the default base URL for the ScholarGraph API.
	DefaultBaseURL = "https://api.semanticscholar.org/graph/v1"

	// DefaultRateLimit is the default rate limit for unauthenticated requests.
	DefaultRateLimit = 1.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 5

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = papersources.DefaultProviderTimeout

	// DefaultMaxResults is the page size used when the caller gives no limit.
	DefaultMaxResults = 10

	// MaxPageSize is the largest page the search endpoint accepts.
	MaxPageSize = 100

	// apiKeyHeader is the header name for the API key.
	apiKeyHeader = "x-api-key"

	// paperFields is the list of fields to request from the API.
	paperFields = "title,url,authors,year,venue,abstract"

	// sourceName is the human-readable name for this source.
	sourceName = "ScholarGraph"
)

// Config contains configuration options for the ScholarGraph client.
type Config struct {
	// BaseURL is the base URL for the API.
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// APIKey is the optional API key for authenticated requests.
	APIKey string

	// Timeout is the HTTP request timeout.
	// Defaults to DefaultTimeout if zero.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// MaxResults is the page size used when the search has no limit.
	MaxResults int

	// TrustWeight overrides the default ranking weight when positive.
	TrustWeight float64

	// Enabled indicates whether this source is enabled.
	Enabled bool
}

// Client implements the papersources.PaperSource interface for ScholarGraph.
type Client struct {
	httpClient *papersources.HTTPClient
	config     Config
}

// Compile-time check that Client implements papersources.PaperSource.
var _ papersources.PaperSource = (*Client)(nil)

// NewClient creates a new ScholarGraph client with the given configuration.
// If httpClient is nil, a new one will be created with the configuration settings.
func NewClient(cfg Config, httpClient *papersources.HTTPClient) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = DefaultBurstSize
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.TrustWeight <= 0 {
		cfg.TrustWeight = domain.TrustScholarGraph
	}

	if httpClient == nil {
		httpClient = papersources.NewHTTPClient(papersources.HTTPClientConfig{
			Timeout:      cfg.Timeout,
			RateLimit:    cfg.RateLimit,
			BurstSize:    cfg.BurstSize,
			APIKey:       cfg.APIKey,
			APIKeyHeader: apiKeyHeader,
		})
	}

	return &Client{
		httpClient: httpClient,
		config:     cfg,
	}
}

// Search queries ScholarGraph for papers matching the given parameters.
func (c *Client) Search(ctx context.Context, params papersources.SearchParams) (*papersources.SearchResult, error) {
	start := time.Now()

	searchURL, err := c.buildSearchURL(params)
	if err != nil {
		return nil, fmt.Errorf("building search URL: %w", err)
	}

	resp, err := c.httpClient.Get(ctx, searchURL, "application/json")
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if err := papersources.CheckResponse(resp, domain.SourceTypeScholarGraph, errorMessage); err != nil {
		return nil, err
	}

	var searchResp SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, papersources.MaxResponseSize)).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &papersources.SearchResult{
		Papers:         convertToRecords(searchResp.Data),
		TotalResults:   searchResp.Total,
		Source:         domain.SourceTypeScholarGraph,
		SearchDuration: time.Since(start),
	}, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypeScholarGraph
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

// buildSearchURL constructs the search API URL with query parameters.
func (c *Client) buildSearchURL(params papersources.SearchParams) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	searchURL := baseURL.JoinPath("paper", "search")

	q := searchURL.Query()
	q.Set("query", params.Query)
	q.Set("limit", strconv.Itoa(papersources.ClampLimit(params.MaxResults, c.config.MaxResults, MaxPageSize)))
	q.Set("fields", paperFields)

	searchURL.RawQuery = q.Encode()
	return searchURL.String(), nil
}

// errorMessage reads the message out of a JSON error body.
func errorMessage(body []byte) string {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return ""
	}
	if errResp.Error != "" {
		return errResp.Error
	}
	return errResp.Message
}

// convertToRecords maps API results to paper records.
func convertToRecords(results []PaperResult) []domain.PaperRecord {
	papers := make([]domain.PaperRecord, 0, len(results))
	for _, r := range results {
		names := make([]string, 0, len(r.Authors))
		for _, a := range r.Authors {
			names = append(names, a.Name)
		}

		papers = append(papers, domain.PaperRecord{
			Title:    papersources.TitleOrUntitled(r.Title),
			Abstract: r.Abstract,
			URL:      r.URL,
			Authors:  papersources.CompactStrings(names),
			Year:     r.Year,
			Venue:    r.Venue,
			Source:   domain.SourceTypeScholarGraph,
			PaperID:  r.PaperID,
		})
	}
	return papers
}
