package robotevents

import "errors"

// Sentinel error kinds for this package. Result.Err wraps one of them.
var (
	ErrRequestFailed    = errors.New("request failed")
	ErrRetriesExhausted = errors.New("retries exhausted")
	ErrMalformed        = errors.New("malformed response")
	ErrTeamNotFound     = errors.New("team not found")
)
