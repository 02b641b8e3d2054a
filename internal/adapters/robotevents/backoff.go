package robotevents

import (
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"
)

// backoff returns the wait before retrying after the given attempt
// (1-based): exponential from backoffInitial, capped at backoffMax, with
// full jitter.
func (c *Client) backoff(attempt int) time.Duration {
	if attempt <= 0 || c.backoffInitial <= 0 {
		return 0
	}
	base := c.backoffInitial
	for i := 1; i < attempt; i++ {
		base *= 2
		if base >= c.backoffMax {
			base = c.backoffMax
			break
		}
	}
	jitterMs := rand.Int64N(base.Milliseconds() + 1) // #nosec G404 -- non-cryptographic jitter
	return time.Duration(jitterMs) * time.Millisecond
}

// parseRetryAfter reads a Retry-After value given either as delay seconds
// or as an HTTP date. Dates in the past yield a zero wait.
func parseRetryAfter(v string, now time.Time) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(v); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		d := t.Sub(now)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}
