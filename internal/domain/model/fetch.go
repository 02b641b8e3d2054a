package model

// FetchReason annotates how a remote collection fetch ended, so callers can
// tell "legitimately nothing" from "lookup degraded".
type FetchReason string

const (
	FetchOK               FetchReason = "ok"
	FetchNotFound         FetchReason = "not_found"
	FetchRetriesExhausted FetchReason = "retries_exhausted"
	FetchRequestFailed    FetchReason = "request_failed"
	FetchMalformed        FetchReason = "malformed"
)

// Degraded reports whether the fetch stopped before the collection was
// exhausted.
func (r FetchReason) Degraded() bool {
	return r != FetchOK && r != FetchNotFound
}

// FetchOutcome describes a typed fetch: how it ended, how many pages were
// read and how many items were dropped as undecodable.
type FetchOutcome struct {
	Reason  FetchReason
	Pages   int
	Skipped int
	Err     error
}
