package citationregistry

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/helixir/paper-aggregator/internal/domain"
	"github.com/helixir/paper-aggregator/internal/papersources"
)

const (
	// DefaultBaseURL is the default CitationRegistry API base URL.
	DefaultBaseURL = "https://api.crossref.org"

	// DefaultRateLimit is the default rate limit for requests per second.
	DefaultRateLimit = 5.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 5

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = papersources.DefaultProviderTimeout

	// DefaultMaxResults is the default number of rows requested.
	DefaultMaxResults = 10

	// MaxPageSize is the API's rows ceiling.
	MaxPageSize = 1000

	sourceName = "CitationRegistry"
)

var (
	markupPattern     = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Config holds configuration for the CitationRegistry client.
type Config struct {
	// BaseURL is the API base URL.
	BaseURL string

	// Email is sent as mailto to join the polite pool.
	Email string

	// Timeout is the request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// MaxResults is the rows value used when the search has no limit.
	MaxResults int

	// TrustWeight overrides the default ranking weight when positive.
	TrustWeight float64

	// Enabled indicates whether this source is enabled for searches.
	Enabled bool
}

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
		c.TrustWeight = domain.TrustCitationRegistry
	}
}

// Client implements the papersources.PaperSource interface for CitationRegistry.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
}

var _ papersources.PaperSource = (*Client)(nil)

// New creates a new CitationRegistry client.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	return NewWithHTTPClient(cfg, papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
	}))
}

// NewWithHTTPClient creates a new CitationRegistry client with a custom HTTP client.
func NewWithHTTPClient(cfg Config, httpClient *papersources.HTTPClient) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// Search queries the works endpoint.
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

	if err := papersources.CheckResponse(resp, domain.SourceTypeCitationRegistry, nil); err != nil {
		return nil, err
	}

	var searchResp SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, papersources.MaxResponseSize)).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	papers := make([]domain.PaperRecord, 0, len(searchResp.Message.Items))
	for i := range searchResp.Message.Items {
		papers = append(papers, itemToRecord(&searchResp.Message.Items[i]))
	}

	return &papersources.SearchResult{
		Papers:         papers,
		TotalResults:   searchResp.Message.TotalResults,
		Source:         domain.SourceTypeCitationRegistry,
		SearchDuration: time.Since(startTime),
	}, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypeCitationRegistry
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
	query.Set("query", params.Query)
	query.Set("rows", strconv.Itoa(papersources.ClampLimit(params.MaxResults, c.config.MaxResults, MaxPageSize)))
	if c.config.Email != "" {
		query.Set("mailto", c.config.Email)
	}

	worksURL.RawQuery = query.Encode()
	return worksURL.String(), nil
}

// itemToRecord maps a registered work to a paper record. Contributors
// without a family name (e.g. consortia) are skipped.
func itemToRecord(item *Item) domain.PaperRecord {
	record := domain.PaperRecord{
		Title:    papersources.TitleOrUntitled(first(item.Title)),
		Abstract: stripMarkup(item.Abstract),
		URL:      item.URL,
		Venue:    strings.TrimSpace(first(item.ContainerTitle)),
		Year:     item.Issued.Year(),
		Source:   domain.SourceTypeCitationRegistry,
		PaperID:  item.DOI,
	}
	if record.Year == 0 {
		record.Year = item.Published.Year()
	}
	if record.URL == "" && item.DOI != "" {
		record.URL = "https://doi.org/" + item.DOI
	}

	names := make([]string, 0, len(item.Author))
	for _, a := range item.Author {
		if strings.TrimSpace(a.Family) == "" {
			continue
		}
		names = append(names, strings.TrimSpace(a.Given+" "+a.Family))
	}
	record.Authors = papersources.CompactStrings(names)

	return record
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// stripMarkup removes JATS tags and collapses whitespace.
func stripMarkup(s string) string {
	if s == "" {
		return ""
	}
	s = markupPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}
