package model

// EventSummary is the per-event breakdown kept on a TeamAggregate.
type EventSummary struct {
	Event          EventRef
	Strategy       MatchStrategy
	Divisions      int // divisions traversed; 0 for flat listings
	QualCount      int
	ElimCount      int
	BestQual       int
	CombinedSkill  int
	HasSkill       bool
	Ranking        *RankingRecord
	SkippedMatches int
	SkippedSkills  int
}

// TeamAggregate accumulates one team's scores over a season.
//
// Sequences grow while the team's events are processed. Summary fields are
// zero until Finalize is called.
type TeamAggregate struct {
	Team TeamIdentity

	QualScores        []int
	ElimScores        []int
	DriverScores      []int
	ProgrammingScores []int
	CombinedSkills    []int

	BestEventName  string
	BestEventScore int
	Events         []EventSummary

	QualAverage  float64
	BestQual     int
	ElimAverage  float64
	SkillAverage float64

	finalized bool
}

// NewTeamAggregate returns an empty aggregate for team.
func NewTeamAggregate(team TeamIdentity) *TeamAggregate {
	return &TeamAggregate{Team: team}
}

// Code returns the team code the aggregate belongs to.
func (a *TeamAggregate) Code() string { return a.Team.Code }

// Finalize computes the summary fields. Calls after the first are no-ops.
func (a *TeamAggregate) Finalize() {
	if a.finalized {
		return
	}
	a.QualAverage = Average(a.QualScores)
	a.BestQual = Best(a.QualScores)
	a.ElimAverage = Average(a.ElimScores)
	a.SkillAverage = Average(a.CombinedSkills)
	a.finalized = true
}

// BestDriver returns the team's best driver run over the season.
func (a *TeamAggregate) BestDriver() int { return Best(a.DriverScores) }

// BestProgramming returns the team's best programming run over the season.
func (a *TeamAggregate) BestProgramming() int { return Best(a.ProgrammingScores) }

// Average returns the arithmetic mean of scores, or 0 when empty.
func Average(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum int64
	for _, s := range scores {
		sum += int64(s)
	}
	return float64(sum) / float64(len(scores))
}

// Best returns the maximum of scores, or 0 when empty.
func Best(scores []int) int {
	best := 0
	for i, s := range scores {
		if i == 0 || s > best {
			best = s
		}
	}
	return best
}
