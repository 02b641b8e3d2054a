package api

import "errors"

// Sentinel kinds for status server errors.
var (
	ErrListen           = errors.New("status server listen failed")
	ErrMethodNotAllowed = errors.New("method not allowed")
)
