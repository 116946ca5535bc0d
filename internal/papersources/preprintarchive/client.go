package preprintarchive

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/helixir/paper-aggregator/internal/domain"
	"github.com/helixir/paper-aggregator/internal/papersources"
)

const (
	// DefaultBaseURL is the default PreprintArchive API base URL.
	DefaultBaseURL = "http://export.arxiv.org/api"

	// DefaultRateLimit follows the archive's one request every three seconds.
	DefaultRateLimit = 0.33

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 1

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = papersources.DefaultProviderTimeout

	// DefaultMaxResults is the default number of entries requested.
	DefaultMaxResults = 10

	// MaxPageSize is the largest max_results the endpoint serves in one page.
	MaxPageSize = 2000

	// Venue is the venue label attached to every preprint.
	Venue = "arXiv"

	sourceName = "PreprintArchive"
)

// Config holds configuration for the PreprintArchive client.
type Config struct {
	// BaseURL is the API base URL; the client appends /query.
	BaseURL string

	// Timeout is the request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// MaxResults is used when the search has no limit.
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
		c.TrustWeight = domain.TrustPreprintArchive
	}
}

// Client implements the papersources.PaperSource interface for PreprintArchive.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
}

var _ papersources.PaperSource = (*Client)(nil)

// New creates a new PreprintArchive client.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	return NewWithHTTPClient(cfg, papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
	}))
}

// NewWithHTTPClient creates a new PreprintArchive client with a custom HTTP client.
func NewWithHTTPClient(cfg Config, httpClient *papersources.HTTPClient) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// Search queries the archive's Atom endpoint.
func (c *Client) Search(ctx context.Context, params papersources.SearchParams) (*papersources.SearchResult, error) {
	startTime := time.Now()

	searchURL, err := c.buildSearchURL(params)
	if err != nil {
		return nil, fmt.Errorf("building search URL: %w", err)
	}

	resp, err := c.httpClient.Get(ctx, searchURL, "application/atom+xml")
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if err := papersources.CheckResponse(resp, domain.SourceTypePreprintArchive, nil); err != nil {
		return nil, err
	}

	var feed Feed
	if err := xml.NewDecoder(io.LimitReader(resp.Body, papersources.MaxResponseSize)).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	papers := make([]domain.PaperRecord, 0, len(feed.Entries))
	for i := range feed.Entries {
		papers = append(papers, entryToRecord(&feed.Entries[i]))
	}

	return &papersources.SearchResult{
		Papers:         papers,
		TotalResults:   feed.TotalResults,
		Source:         domain.SourceTypePreprintArchive,
		SearchDuration: time.Since(startTime),
	}, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypePreprintArchive
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

	baseURL.Path = strings.TrimRight(baseURL.Path, "/") + "/query"

	query := url.Values{}
	query.Set("search_query", "all:"+params.Query)
	query.Set("start", "0")
	query.Set("max_results", strconv.Itoa(papersources.ClampLimit(params.MaxResults, c.config.MaxResults, MaxPageSize)))

	baseURL.RawQuery = query.Encode()
	return baseURL.String(), nil
}

// entryToRecord maps a feed entry. The alternate link is the record URL,
// falling back to the entry id which is itself the abstract page.
func entryToRecord(entry *Entry) domain.PaperRecord {
	record := domain.PaperRecord{
		Title:    papersources.TitleOrUntitled(normalizeWhitespace(entry.Title)),
		Abstract: normalizeWhitespace(entry.Summary),
		URL:      strings.TrimSpace(entry.ID),
		Year:     parseYear(entry.Published),
		Venue:    Venue,
		Source:   domain.SourceTypePreprintArchive,
		PaperID:  strings.TrimSpace(entry.ID),
	}

	for _, link := range entry.Links {
		if link.Rel == "alternate" && link.Href != "" {
			record.URL = link.Href
			break
		}
	}

	names := make([]string, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		names = append(names, normalizeWhitespace(a.Name))
	}
	record.Authors = papersources.CompactStrings(names)

	return record
}

// parseYear reads the leading four-digit year of an Atom timestamp.
func parseYear(published string) int {
	published = strings.TrimSpace(published)
	if len(published) < 4 {
		return 0
	}
	year, err := strconv.Atoi(published[:4])
	if err != nil {
		return 0
	}
	return year
}

// normalizeWhitespace trims and collapses whitespace runs, including newlines.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
