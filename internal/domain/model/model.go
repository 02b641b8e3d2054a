// Package model contains domain models passed between layers.
package model

import "time"

// ProgramRef identifies a competition program (VRC, VEXU, VIQRC, ...).
type ProgramRef struct {
	ID   int64
	Code string
	Name string
}

// TeamIdentity is a resolved team. It is immutable after resolution.
type TeamIdentity struct {
	ID      int64  // API identifier used by every team-scoped query
	Code    string // human-readable number, e.g. "90241A"
	Name    string
	Program ProgramRef
}

// DivisionRef is one partition of a divisioned event.
type DivisionRef struct {
	ID    int64
	Name  string
	Order int
}

// EventRef is one event a team attended in a season.
type EventRef struct {
	ID        int64
	SKU       string
	Name      string
	Start     time.Time
	End       time.Time
	Program   ProgramRef
	Divisions []DivisionRef // embedded in the event listing when present
}

// Alliance is one side of a match.
type Alliance struct {
	Color   string
	Score   int
	TeamIDs []int64
}

// Has reports whether teamID plays on the alliance.
func (a Alliance) Has(teamID int64) bool {
	for _, id := range a.TeamIDs {
		if id == teamID {
			return true
		}
	}
	return false
}

// MatchRecord is a single match as listed by the API.
type MatchRecord struct {
	ID        int64
	Round     int
	Instance  int
	MatchNum  int
	Alliances []Alliance
}

// RankingRecord is a team's qualification standing at one event.
type RankingRecord struct {
	Rank          int
	TeamID        int64
	Wins          int
	Losses        int
	Ties          int
	WP            int
	AP            int
	SP            int
	HighScore     int
	AveragePoints float64
	TotalPoints   int
}

// MatchStrategy names the resolver strategy that produced an event's matches.
type MatchStrategy string

const (
	StrategyFlat      MatchStrategy = "flat"
	StrategyDivisions MatchStrategy = "divisions"
	StrategyNone      MatchStrategy = "none"
)
