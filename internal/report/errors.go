package report

import "errors"

// Sentinel error kinds for this package.
var (
	ErrUnknownSortKey = errors.New("unknown sort key")
	ErrWriteReport    = errors.New("write report failed")
	ErrMalformedCSV   = errors.New("malformed report csv")
)
