package robotevents

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/okian/roboscout/pkg/logger"
	"golang.org/x/time/rate"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL sets the versioned API root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			c.baseURL = u
		}
	}
}

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds a single round trip.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithPerPage sets the page size requested from collections.
func WithPerPage(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// WithMaxAttempts sets how many times one page is requested before giving up.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithRetryAfterDefault sets the wait used for a 429 without Retry-After.
func WithRetryAfterDefault(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.retryAfterDefault = d
		}
	}
}

// WithRetryAfterMax caps the wait applied to any 429 response.
func WithRetryAfterMax(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryAfterMax = d
		}
	}
}

// WithBackoff sets the exponential backoff window for transient failures.
func WithBackoff(initial, maxInterval time.Duration) Option {
	return func(c *Client) {
		if initial >= 0 && maxInterval >= initial {
			c.backoffInitial = initial
			c.backoffMax = maxInterval
		}
	}
}

// WithRequestsPerSecond paces outgoing requests with a token bucket. Zero
// disables pacing.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithLogger sets the logger used for retry and failure diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSleeper replaces the wait used between attempts.
func WithSleeper(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}
