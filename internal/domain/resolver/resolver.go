// Package resolver finds the matches a team played at an event, whatever
// shape the event is listed in.
package resolver

import (
	"context"
	"sort"

	"github.com/okian/roboscout/internal/domain/model"
	"github.com/okian/roboscout/pkg/logger"
)

// MatchSource lists matches and divisions of an event.
type MatchSource interface {
	EventMatches(ctx context.Context, eventID, teamID int64) ([]model.MatchRecord, model.FetchOutcome)
	EventDivisions(ctx context.Context, eventID int64) ([]model.DivisionRef, model.FetchOutcome)
	DivisionMatches(ctx context.Context, eventID, divisionID, teamID int64) ([]model.MatchRecord, model.FetchOutcome)
}

// Resolution is the unified match list of one event.
type Resolution struct {
	Matches   []model.MatchRecord
	Strategy  model.MatchStrategy
	Divisions int
	// Degraded is set when any listing used stopped early.
	Degraded bool
}

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithDivisionFallback enables or disables per-division listing.
func WithDivisionFallback(enabled bool) Option {
	return func(r *Resolver) {
		r.divisionFallback = enabled
	}
}

// WithLogger sets the logger used for empty-event diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// Resolver tries each listing strategy in turn; the first non-empty one wins.
type Resolver struct {
	source           MatchSource
	divisionFallback bool
	logger           logger.Logger
}

// New creates a Resolver over source with division traversal enabled.
func New(source MatchSource, opts ...Option) *Resolver {
	r := &Resolver{
		source:           source,
		divisionFallback: true,
		logger:           logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns team's matches at event. An event without matches yields
// StrategyNone and no error.
func (r *Resolver) Resolve(ctx context.Context, event model.EventRef, team model.TeamIdentity) Resolution {
	var res Resolution

	matches, o := r.source.EventMatches(ctx, event.ID, team.ID)
	res.Degraded = o.Reason.Degraded()
	if len(matches) > 0 {
		res.Matches = matches
		res.Strategy = model.StrategyFlat
		return res
	}

	if r.divisionFallback {
		divisions := r.divisions(ctx, event, &res)
		for _, d := range divisions {
			dm, o := r.source.DivisionMatches(ctx, event.ID, d.ID, team.ID)
			if o.Reason.Degraded() {
				res.Degraded = true
			}
			res.Matches = append(res.Matches, dm...)
		}
		res.Divisions = len(divisions)
		if len(res.Matches) > 0 {
			res.Strategy = model.StrategyDivisions
			return res
		}
	}

	res.Strategy = model.StrategyNone
	r.logger.Info(ctx, "no matches found for event",
		logger.String("team", team.Code),
		logger.Int64("event_id", event.ID),
		logger.String("event", event.Name),
		logger.Int("divisions", res.Divisions),
		logger.Bool("degraded", res.Degraded),
	)
	return res
}

// divisions lists the event's divisions from the API, falling back to the
// ones embedded in the event listing. The result is in division order.
func (r *Resolver) divisions(ctx context.Context, event model.EventRef, res *Resolution) []model.DivisionRef {
	divisions, o := r.source.EventDivisions(ctx, event.ID)
	if o.Reason.Degraded() {
		res.Degraded = true
	}
	if len(divisions) == 0 {
		divisions = append([]model.DivisionRef(nil), event.Divisions...)
	}
	sort.SliceStable(divisions, func(i, j int) bool {
		return divisions[i].Order < divisions[j].Order
	})
	return divisions
}
