package papersources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/helixir/paper-aggregator/internal/domain"
)

const (
	// DefaultProviderTimeout bounds a single provider call.
	DefaultProviderTimeout = 20 * time.Second

	// MaxResponseSize caps how much of a provider response body is decoded.
	MaxResponseSize = 10 << 20

	// DefaultUserAgent is sent when a provider config does not override it.
	DefaultUserAgent = "Helixir-PaperAggregator/1.0"

	maxErrorBodySize = 1024
)

// HTTPClientConfig configures the HTTP client.
type HTTPClientConfig struct {
	// Timeout is the request timeout for HTTP operations.
	Timeout time.Duration

	// RateLimit is the maximum requests per second. Zero uses the default.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string

	// APIKey is an optional API key for authentication.
	APIKey string

	// APIKeyHeader is the header name for the API key (e.g., "x-api-key").
	APIKeyHeader string
}

// HTTPClient wraps http.Client with rate limiting and default headers.
// Every request is a single attempt; nothing is retried.
// It is safe for concurrent use.
type HTTPClient struct {
	client      *http.Client
	rateLimiter *RateLimiter
	config      HTTPClientConfig
}

// NewHTTPClient creates a new HTTP client with rate limiting.
func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultProviderTimeout
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 10
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = 10
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: NewRateLimiter(cfg.RateLimit, cfg.BurstSize),
		config:      cfg,
	}
}

// Do executes a request after waiting for the rate limiter.
// It sets the User-Agent and optional API key headers.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	if c.config.APIKey != "" && c.config.APIKeyHeader != "" {
		req.Header.Set(c.config.APIKeyHeader, c.config.APIKey)
	}

	if err := c.rateLimiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// Get issues a GET request for rawURL with the given Accept header.
func (c *HTTPClient) Get(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return c.Do(req)
}

// ErrorMessageFunc extracts a readable message from a provider error body.
// It returns "" when the body has no recognizable message.
type ErrorMessageFunc func(body []byte) string

// CheckResponse returns nil for 2xx responses. Otherwise it drains a short
// excerpt of the body and returns a *domain.ProviderError for source. A 429
// answer carries the Retry-After hint.
//
// When extract is non-nil it is tried first; the trimmed body and then the
// status text are the fallbacks.
func CheckResponse(resp *http.Response, source domain.SourceType, extract ErrorMessageFunc) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	var msg string
	if extract != nil {
		msg = strings.TrimSpace(extract(body))
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	err := domain.NewProviderError(source, resp.StatusCode, msg)
	if resp.StatusCode == http.StatusTooManyRequests {
		err.RetryAfter = retryAfter(resp)
	}
	return err
}

// retryAfter parses the Retry-After header as seconds or an HTTP date.
func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if seconds, err := strconv.ParseInt(v, 10, 64); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
