package robotevents

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/roboscout/internal/domain/model"
	"github.com/okian/roboscout/pkg/metrics"
)

// decodeItems decodes every raw item with conv, dropping the ones that fail.
func decodeItems[W any, T any](items []RawItem, conv func(W) T) ([]T, int) {
	out := make([]T, 0, len(items))
	skipped := 0
	for _, item := range items {
		var w W
		if err := json.Unmarshal(item, &w); err != nil {
			skipped++
			continue
		}
		out = append(out, conv(w))
	}
	metrics.RecordSkipped("decode", skipped)
	return out, skipped
}

func fetchTyped[W any, T any](ctx context.Context, c *Client, path string, q url.Values, conv func(W) T) ([]T, Outcome) {
	res := c.FetchAll(ctx, path, q)
	out, skipped := decodeItems(res.Items, conv)
	o := res.Outcome()
	o.Skipped = skipped
	return out, o
}

func teamQuery(teamID int64) url.Values {
	q := url.Values{}
	if teamID != 0 {
		q.Set("team", strconv.FormatInt(teamID, 10))
	}
	return q
}

// FindTeam resolves a team number such as "90241A". An exact match on the
// number wins over the first listed team. ErrTeamNotFound is returned when
// nothing matches.
func (c *Client) FindTeam(ctx context.Context, code string) (model.TeamIdentity, error) {
	code = strings.TrimSpace(code)
	q := url.Values{}
	q.Set("number", code)
	teams, o := fetchTyped(ctx, c, "/teams", q, teamWire.toModel)
	if len(teams) == 0 {
		if o.Reason.Degraded() {
			return model.TeamIdentity{}, fmt.Errorf("%w: %s: %v", ErrTeamNotFound, code, o.Err)
		}
		return model.TeamIdentity{}, fmt.Errorf("%w: %s", ErrTeamNotFound, code)
	}
	for _, t := range teams {
		if strings.EqualFold(t.Code, code) && t.ID != 0 {
			return t, nil
		}
	}
	if teams[0].ID == 0 {
		return model.TeamIdentity{}, fmt.Errorf("%w: %s: listing has no id", ErrTeamNotFound, code)
	}
	return teams[0], nil
}

// TeamEvents lists the events a team attended in a season. A zero season
// lists every season.
func (c *Client) TeamEvents(ctx context.Context, teamID int64, season int) ([]model.EventRef, Outcome) {
	q := url.Values{}
	if season != 0 {
		q.Set("season[]", strconv.Itoa(season))
	}
	return fetchTyped(ctx, c, fmt.Sprintf("/teams/%d/events", teamID), q, eventWire.toModel)
}

// EventMatches lists an event's matches filtered by team.
func (c *Client) EventMatches(ctx context.Context, eventID, teamID int64) ([]model.MatchRecord, Outcome) {
	return fetchTyped(ctx, c, fmt.Sprintf("/events/%d/matches", eventID), teamQuery(teamID), matchWire.toModel)
}

// EventDivisions lists an event's divisions.
func (c *Client) EventDivisions(ctx context.Context, eventID int64) ([]model.DivisionRef, Outcome) {
	return fetchTyped(ctx, c, fmt.Sprintf("/events/%d/divisions", eventID), url.Values{}, divisionWire.toModel)
}

// DivisionMatches lists one division's matches filtered by team.
func (c *Client) DivisionMatches(ctx context.Context, eventID, divisionID, teamID int64) ([]model.MatchRecord, Outcome) {
	path := fmt.Sprintf("/events/%d/divisions/%d/matches", eventID, divisionID)
	return fetchTyped(ctx, c, path, teamQuery(teamID), matchWire.toModel)
}

// EventSkills lists a team's skills results at an event.
func (c *Client) EventSkills(ctx context.Context, eventID, teamID int64) ([]model.SkillsRecord, Outcome) {
	q := teamQuery(teamID)
	items, o := fetchTyped(ctx, c, fmt.Sprintf("/events/%d/skills", eventID), q, func(w skillWire) skillWire { return w })
	out := make([]model.SkillsRecord, 0, len(items))
	for _, w := range items {
		// Some listings ignore the team filter.
		if teamID != 0 && w.Team.ID != 0 && w.Team.ID != teamID {
			continue
		}
		out = append(out, w.toModel())
	}
	return out, o
}

// EventRankings lists a team's qualification ranking at an event.
func (c *Client) EventRankings(ctx context.Context, eventID, teamID int64) ([]model.RankingRecord, Outcome) {
	return fetchTyped(ctx, c, fmt.Sprintf("/events/%d/rankings", eventID), teamQuery(teamID), rankingWire.toModel)
}
