// Package fetch retrieves the remote source documents (question list,
// updates page, legislator directories) with rate limiting, bounded retry,
// and a persistent disk cache, so repeated builds do not hammer the
// government endpoints.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
)

// DefaultUserAgent is the default User-Agent header sent with requests.
const DefaultUserAgent = "civica-fetcher/1.0"

const (
	// DefaultRequestInterval is the minimum interval between requests.
	DefaultRequestInterval = 1 * time.Second

	// DefaultCacheTTL is how long fetched documents stay valid on disk.
	DefaultCacheTTL = 24 * time.Hour

	// defaultRetryAttempts bounds retries on transient failures.
	defaultRetryAttempts = 3
)

// Config holds configuration for a Client.
type Config struct {
	// RateLimit is the minimum interval between HTTP requests.
	// Default: 1 second.
	RateLimit time.Duration

	// CacheDir enables the disk cache when non-empty.
	CacheDir string

	// CacheTTL is the time-to-live for cached documents. Default: 24h.
	CacheTTL time.Duration

	// HTTPClient is the underlying HTTP client. If nil,
	// http.DefaultClient is used.
	HTTPClient *http.Client

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string

	// Logger receives fetch and cache events. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Client fetches source documents over HTTP.
type Client struct {
	httpClient *http.Client
	cache      *DiskCache
	userAgent  string
	logger     *slog.Logger

	mu          sync.Mutex
	interval    time.Duration
	lastRequest time.Time
}

// NewClient creates a Client from the given configuration. The disk cache
// directory is created if needed.
func NewClient(config Config) (*Client, error) {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	interval := config.RateLimit
	if interval == 0 {
		interval = DefaultRequestInterval
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := &Client{
		httpClient: httpClient,
		userAgent:  userAgent,
		logger:     logger,
		interval:   interval,
	}

	if config.CacheDir != "" {
		cacheTTL := config.CacheTTL
		if cacheTTL == 0 {
			cacheTTL = DefaultCacheTTL
		}
		cache, err := NewDiskCache(config.CacheDir, cacheTTL)
		if err != nil {
			return nil, err
		}
		client.cache = cache
	}

	return client, nil
}

// Get fetches the document at the given URL, serving from the disk cache
// when a fresh copy exists. Transient failures are retried with backoff;
// an HTTP status >= 400 on the final attempt is an error.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	return c.GetWithTTL(ctx, url, 0)
}

// GetWithTTL fetches like Get but caches the document under an
// entry-specific TTL, for sources that go stale faster or slower than the
// client default. A non-positive ttl uses the default.
func (c *Client) GetWithTTL(ctx context.Context, url string, ttl time.Duration) ([]byte, error) {
	if c.cache != nil {
		if body, ok := c.cache.Get(url); ok {
			c.logger.Debug("cache hit", "url", url)
			return body, nil
		}
	}

	var body []byte
	err := retry.Do(
		func() error {
			var fetchErr error
			body, fetchErr = c.fetchOnce(ctx, url)
			return fetchErr
		},
		retry.Context(ctx),
		retry.Attempts(defaultRetryAttempts),
		retry.Delay(500*time.Millisecond),
		retry.OnRetry(func(attempt uint, err error) {
			c.logger.Warn("retrying fetch", "url", url, "attempt", attempt+1, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}

	if c.cache != nil {
		if err := c.cache.SetWithTTL(url, body, ttl); err != nil {
			// A cache write failure is not a fetch failure.
			c.logger.Warn("cache write failed", "url", url, "error", err)
		}
	}

	c.logger.Info("fetched", "url", url, "bytes", len(body))
	return body, nil
}

// fetchOnce performs a single rate-limited GET.
func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	if err := c.waitTurn(ctx); err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	request.Header.Set("User-Agent", c.userAgent)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d", response.StatusCode)
	}

	return io.ReadAll(response.Body)
}

// waitTurn blocks until the rate-limit interval since the previous request
// has elapsed, or the context is cancelled.
func (c *Client) waitTurn(ctx context.Context) error {
	c.mu.Lock()
	wait := c.interval - time.Since(c.lastRequest)
	c.lastRequest = time.Now().Add(wait)
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
