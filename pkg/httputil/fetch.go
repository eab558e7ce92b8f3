package httputil

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/casetrace/linkboard/pkg/cache"
	"github.com/casetrace/linkboard/pkg/errors"
)

// DefaultMaxBodySize caps fetched documents at 32 MiB. An investigation
// export larger than that is almost certainly not a board document.
const DefaultMaxBodySize = 32 << 20

// DefaultFetchTimeout bounds a single fetch attempt.
const DefaultFetchTimeout = 30 * time.Second

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithCache stores successful responses in the given cache, keyed by
// [cache.Keyer.HTTPKey], for ttl.
func WithCache(store cache.Cache, keyer cache.Keyer, ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.cache = store
		c.keyer = keyer
		c.ttl = ttl
	}
}

// WithRetries sets the attempt count and initial backoff delay.
func WithRetries(attempts int, delay time.Duration) ClientOption {
	return func(c *Client) {
		c.attempts = attempts
		c.delay = delay
	}
}

// WithMaxBodySize caps the accepted response size in bytes.
func WithMaxBodySize(n int64) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// Client fetches remote board documents with retry and optional response
// caching.
type Client struct {
	http     *http.Client
	cache    cache.Cache
	keyer    cache.Keyer
	ttl      time.Duration
	attempts int
	delay    time.Duration
	maxBody  int64
	logger   *log.Logger
}

// NewClient builds a fetch client. Defaults: 30 second attempt timeout,
// 3 attempts with 1 second initial backoff, no caching.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:     &http.Client{Timeout: DefaultFetchTimeout},
		attempts: 3,
		delay:    time.Second,
		maxBody:  DefaultMaxBodySize,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache != nil && c.keyer == nil {
		c.keyer = cache.NewDefaultKeyer()
	}
	return c
}

// Fetch retrieves a remote document. Network failures, 5xx responses,
// and 429 responses retry with exponential backoff; any other non-OK
// status fails immediately. A cached response is served without touching
// the network.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	var key string
	if c.cache != nil {
		key = c.keyer.HTTPKey("source", url)
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			return data, nil
		}
	}

	var body []byte
	err := Retry(ctx, c.attempts, c.delay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "build request for %s", url)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", url)}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusTooManyRequests:
			return &RetryableError{Err: errors.New(errors.ErrCodeRateLimited, "fetch %s: %s", url, resp.Status)}
		case resp.StatusCode >= 500:
			return &RetryableError{Err: errors.New(errors.ErrCodeNetwork, "fetch %s: %s", url, resp.Status)}
		default:
			return errors.New(errors.ErrCodeNetwork, "fetch %s: %s", url, resp.Status)
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
		if err != nil {
			return &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "read %s", url)}
		}
		if int64(len(body)) > c.maxBody {
			return errors.New(errors.ErrCodeInvalidInput, "document at %s exceeds %d bytes", url, c.maxBody)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, body, c.ttl); err != nil {
			c.logger.Debug("response cache write failed", "url", url, "err", err)
		}
	}
	return body, nil
}

// Forget drops the cached response for url, so the next Fetch hits the
// network. A no-op without a cache.
func (c *Client) Forget(ctx context.Context, url string) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Delete(ctx, c.keyer.HTTPKey("source", url))
}
