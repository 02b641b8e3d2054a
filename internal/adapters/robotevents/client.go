// Package robotevents is the client for the RobotEvents v2 REST API.
//
// Every collection is fetched through FetchAll, which follows pagination,
// retries transient failures and degrades to the items gathered so far
// instead of failing the caller.
package robotevents

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/roboscout/internal/config"
	"github.com/okian/roboscout/pkg/logger"
	"github.com/okian/roboscout/pkg/metrics"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL     = "https://www.robotevents.com/api/v2"
	defaultPerPage     = 250
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 3
	defaultRetryAfter  = 5 * time.Second
	defaultRetryMax    = 5 * time.Minute
	defaultBackoff     = 2 * time.Second
	defaultBackoffMax  = 30 * time.Second

	maxBodyBytes = 16 << 20
)

// Client talks to the API. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	timeout    time.Duration
	perPage    int

	maxAttempts       int
	retryAfterDefault time.Duration
	retryAfterMax     time.Duration
	backoffInitial    time.Duration
	backoffMax        time.Duration

	limiter *rate.Limiter
	sleep   func(ctx context.Context, d time.Duration) error
	logger  logger.Logger
}

// New constructs a Client with defaults overridden by opts.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:           defaultBaseURL,
		timeout:           defaultTimeout,
		perPage:           defaultPerPage,
		maxAttempts:       defaultMaxAttempts,
		retryAfterDefault: defaultRetryAfter,
		retryAfterMax:     defaultRetryMax,
		backoffInitial:    defaultBackoff,
		backoffMax:        defaultBackoffMax,
		sleep:             sleepContext,
		logger:            logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// OptionsFromConfig maps the fetch-related settings of cfg to options.
func OptionsFromConfig(cfg *config.Config) []Option {
	return []Option{
		WithBaseURL(cfg.BaseURL),
		WithToken(cfg.APIToken),
		WithTimeout(cfg.RequestTimeout()),
		WithPerPage(cfg.PerPage),
		WithMaxAttempts(cfg.MaxAttempts),
		WithRetryAfterDefault(cfg.RetryAfterDefault()),
		WithRetryAfterMax(cfg.RetryAfterMax()),
		WithBackoff(cfg.BackoffInitial(), cfg.BackoffMax()),
		WithRequestsPerSecond(cfg.RequestsPerSecond),
	}
}

// BaseURL returns the API root the client sends requests to.
func (c *Client) BaseURL() string { return c.baseURL }

// Get requests a single resource and returns its raw body. It applies the
// same retry rules as FetchAll.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, Reason, error) {
	return c.get(ctx, path, query)
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, Reason, error) {
	resource := resourceOf(path)
	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, ReasonRequestFailed, fmt.Errorf("%w: %v", ErrRequestFailed, err)
			}
		}

		resp, err := c.do(ctx, resource, fullURL)
		status, body := resp.status, resp.body
		var (
			wait  time.Duration
			cause string
		)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ReasonRequestFailed, fmt.Errorf("%w: %v", ErrRequestFailed, ctx.Err())
			}
			lastErr = err
			wait = c.backoff(attempt)
			cause = "transport"
		case status >= 200 && status < 300:
			return body, ReasonOK, nil
		case status == http.StatusNotFound:
			return nil, ReasonNotFound, nil
		case status == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("status %d", status)
			wait = c.retryAfterDefault
			if d, ok := parseRetryAfter(resp.retryAfter, time.Now()); ok {
				wait = d
			}
			if wait > c.retryAfterMax {
				wait = c.retryAfterMax
			}
			cause = "rate_limit"
		case status >= 500:
			lastErr = fmt.Errorf("status %d: %s", status, abbreviate(body))
			wait = c.backoff(attempt)
			cause = "server_error"
		default:
			return nil, ReasonRequestFailed, fmt.Errorf("%w: %s status %d: %s", ErrRequestFailed, path, status, abbreviate(body))
		}

		if attempt == c.maxAttempts {
			break
		}
		metrics.RecordRetry(resource, cause)
		if cause == "rate_limit" {
			metrics.RecordRateLimitWait(wait.Seconds())
		}
		c.logger.Warn(ctx, "retrying request",
			logger.String("path", path),
			logger.Int("attempt", attempt),
			logger.String("cause", cause),
			logger.Duration("wait", wait),
			logger.Any("last_error", lastErr.Error()),
		)
		if err := c.sleep(ctx, wait); err != nil {
			return nil, ReasonRequestFailed, fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}
	}

	c.logger.Warn(ctx, "request gave up",
		logger.String("path", path),
		logger.Int("attempts", c.maxAttempts),
		logger.Any("last_error", lastErr.Error()),
	)
	return nil, ReasonRetriesExhausted, fmt.Errorf("%w: %s: %v", ErrRetriesExhausted, path, lastErr)
}

type response struct {
	status     int
	body       []byte
	retryAfter string
}

// do performs one round trip.
func (c *Client) do(ctx context.Context, resource, fullURL string) (response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return response{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		metrics.RecordAPIRequest(resource, 0, latency)
		return response{}, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.RecordAPIRequest(resource, resp.StatusCode, latency)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return response{}, fmt.Errorf("read response body: %w", err)
	}
	return response{
		status:     resp.StatusCode,
		body:       raw,
		retryAfter: strings.TrimSpace(resp.Header.Get("Retry-After")),
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// resourceOf names the collection a path addresses for metric labels:
// the last path segment that is not an identifier.
func resourceOf(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		p := parts[i]
		if p == "" || strings.IndexFunc(p, func(r rune) bool { return r < '0' || r > '9' }) < 0 {
			continue
		}
		return p
	}
	return "root"
}

func abbreviate(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
