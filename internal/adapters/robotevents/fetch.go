package robotevents

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/okian/roboscout/internal/domain/model"
	"github.com/okian/roboscout/pkg/logger"
	"github.com/okian/roboscout/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Reason annotates how a fetch ended.
type Reason = model.FetchReason

const (
	// ReasonOK means every page was retrieved.
	ReasonOK = model.FetchOK
	// ReasonNotFound means the collection does not exist; not an error.
	ReasonNotFound = model.FetchNotFound
	// ReasonRetriesExhausted means a page kept failing transiently.
	ReasonRetriesExhausted = model.FetchRetriesExhausted
	// ReasonRequestFailed means a non-recoverable status or a cancelled
	// context stopped the fetch.
	ReasonRequestFailed = model.FetchRequestFailed
	// ReasonMalformed means a page body could not be decoded.
	ReasonMalformed = model.FetchMalformed
)

// RawItem is one undecoded element of a collection's data array.
type RawItem = jsoniter.RawMessage

// Result is the outcome of one logical collection request. Items gathered
// before a failure are always kept.
type Result struct {
	Items  []RawItem
	Reason Reason
	Pages  int
	Err    error
}

// Outcome strips the items from r.
func (r Result) Outcome() Outcome {
	return Outcome{Reason: r.Reason, Pages: r.Pages, Err: r.Err}
}

// Outcome describes a typed fetch.
type Outcome = model.FetchOutcome

type pageMeta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

type pageEnvelope struct {
	Meta *pageMeta `json:"meta"`
	Data []RawItem `json:"data"`
}

// FetchAll retrieves every page of the collection at path. The page and
// per_page parameters are managed here; any others in query are sent as is.
func (c *Client) FetchAll(ctx context.Context, path string, query url.Values) Result {
	resource := resourceOf(path)
	res := c.fetchAll(ctx, path, query)
	metrics.RecordFetchOutcome(resource, string(res.Reason))
	if res.Reason.Degraded() {
		c.logger.Warn(ctx, "collection fetch degraded",
			logger.String("path", path),
			logger.String("reason", string(res.Reason)),
			logger.Int("pages", res.Pages),
			logger.Int("items", len(res.Items)),
			logger.Error(res.Err),
		)
	}
	return res
}

func (c *Client) fetchAll(ctx context.Context, path string, query url.Values) Result {
	q := url.Values{}
	for k, v := range query {
		q[k] = append([]string(nil), v...)
	}
	q.Set("per_page", strconv.Itoa(c.perPage))

	var res Result
	page := 1
	for {
		q.Set("page", strconv.Itoa(page))
		body, reason, err := c.get(ctx, path, q)
		if reason != ReasonOK {
			res.Reason, res.Err = reason, err
			return res
		}

		var env pageEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			res.Reason = ReasonMalformed
			res.Err = fmt.Errorf("%w: %s page %d: %v", ErrMalformed, path, page, err)
			return res
		}
		res.Items = append(res.Items, env.Data...)
		res.Pages++
		metrics.RecordPageFetched()

		if env.Meta == nil || env.Meta.CurrentPage >= env.Meta.LastPage {
			break
		}
		next := env.Meta.CurrentPage + 1
		if next <= page {
			c.logger.Warn(ctx, "pagination did not advance",
				logger.String("path", path),
				logger.Int("requested", page),
				logger.Int("reported", env.Meta.CurrentPage),
			)
			break
		}
		page = next
	}
	res.Reason = ReasonOK
	return res
}
