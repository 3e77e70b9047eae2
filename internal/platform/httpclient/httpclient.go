// Package httpclient provides the HTTP transport shared by the fetch
// and LLM adapters: timeouts, rate limiting, optional proxy and
// response classification into the transient/permanent taxonomy.
//
// Retries are deliberately not handled here; the task layer owns the
// attempt budget and backoff.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"newsrake/internal/platform/errors"
	"newsrake/internal/platform/logx"
	"newsrake/internal/platform/rate"
)

// Client wraps http.Client with rate limiting and uniform headers.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      logx.Logger
	config      Config
}

// Config holds the configuration for the HTTP client.
type Config struct {
	// Timeout is the per-request timeout. Default: 20 seconds.
	Timeout time.Duration

	// UserAgent is the User-Agent header value.
	UserAgent string

	// ProxyURL routes all requests through an HTTP proxy when set.
	ProxyURL string

	// RateLimit is the maximum requests per second. 0 means no limit.
	RateLimit float64

	// RateLimitBurst is the burst size for rate limiting. Default: 1.
	RateLimitBurst int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:        20 * time.Second,
		UserAgent:      "NewsRake/1.0",
		RateLimitBurst: 1,
	}
}

// New creates a new HTTP client with the given configuration.
func New(config Config, logger logx.Logger) (*Client, error) {
	if config.Timeout == 0 {
		config.Timeout = 20 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "NewsRake/1.0"
	}
	if config.RateLimitBurst == 0 {
		config.RateLimitBurst = 1
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if config.ProxyURL != "" {
		proxy, err := url.Parse(config.ProxyURL)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid proxy url %q", config.ProxyURL)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		limiter = rate.New(config.RateLimit, config.RateLimitBurst)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
		rateLimiter: limiter,
		logger:      logger.With("component", "httpclient"),
		config:      config,
	}, nil
}

// Request performs a single HTTP request. Network failures come back
// classified as transient; HTTP status handling is the caller's job
// (or use CheckStatus).
func (c *Client) Request(ctx context.Context, method, rawURL string, body io.Reader, headers map[string]string) (*http.Response, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "rate limit wait failed")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, errors.Permanent(errors.Wrapf(err, "failed to build request for %s %s", method, rawURL))
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	c.logger.Debug("http request", "method", method, "url", rawURL)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("http request failed",
			"method", method,
			"url", rawURL,
			"error", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, errors.Classify(err)
	}

	c.logger.Debug("http response",
		"method", method,
		"url", rawURL,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) (*http.Response, error) {
	return c.Request(ctx, http.MethodGet, rawURL, nil, headers)
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, rawURL string, body io.Reader, headers map[string]string) (*http.Response, error) {
	return c.Request(ctx, http.MethodPost, rawURL, body, headers)
}

// PostJSON performs a POST with JSON content negotiation.
func (c *Client) PostJSON(ctx context.Context, rawURL string, body io.Reader) (*http.Response, error) {
	return c.Post(ctx, rawURL, body, map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	})
}

// FetchBody performs a GET, validates the status and returns the body.
func (c *Client) FetchBody(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	resp, err := c.Get(ctx, rawURL, headers)
	if err != nil {
		return nil, err
	}
	if err := CheckStatus(resp); err != nil {
		resp.Body.Close()
		return nil, errors.Wrapf(err, "request to %s failed", rawURL)
	}
	return ReadBody(resp)
}

// ReadBody reads the response body and closes it.
func ReadBody(resp *http.Response) ([]byte, error) {
	if resp == nil {
		return nil, errors.New("response is nil")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Transient(errors.Wrap(err, "failed to read response body"))
	}
	return body, nil
}

// CheckStatus maps an HTTP status to the error taxonomy. Rate limiting
// and upstream unavailability are transient; client errors are
// permanent.
func CheckStatus(resp *http.Response) error {
	if resp == nil {
		return errors.New("response is nil")
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return errors.Transient(errors.ErrRateLimit)
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusBadGateway:
		return errors.Transient(errors.ErrServiceUnavailable)
	case http.StatusNotFound:
		return errors.Permanent(errors.ErrNotFound)
	default:
		if resp.StatusCode >= 500 {
			return errors.Transient(errors.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status))
		}
		return errors.Permanent(errors.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status))
	}
}

// String returns a human-readable representation of the client configuration.
func (c *Client) String() string {
	return fmt.Sprintf("HTTPClient{timeout=%s, rate_limit=%.1f/s}", c.config.Timeout, c.config.RateLimit)
}
