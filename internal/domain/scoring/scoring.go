// Package scoring partitions raw match and skills records into the score
// buckets a team aggregate is built from.
package scoring

import "github.com/okian/roboscout/internal/domain/model"

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithRoundPolicy sets the round policy used for match classification.
func WithRoundPolicy(p RoundPolicy) Option {
	return func(c *Classifier) {
		if p == PolicySingle || p == PolicyDouble {
			c.policy = p
		}
	}
}

// Classifier binds a round policy to the classification functions.
type Classifier struct {
	policy RoundPolicy
}

// NewClassifier creates a Classifier using PolicySingle unless overridden.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{policy: PolicySingle}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the configured round policy.
func (c *Classifier) Policy() RoundPolicy { return c.policy }

// Matches classifies matches for teamID under the configured policy.
func (c *Classifier) Matches(matches []model.MatchRecord, teamID int64) (qual, elim []int, skipped int) {
	return ClassifyMatches(matches, teamID, c.policy)
}

// Skills classifies skills records by type.
func (c *Classifier) Skills(records []model.SkillsRecord) (driver, programming []int, skipped int) {
	return ClassifySkills(records)
}

// ClassifyMatches returns the scores of the alliance teamID played on,
// split by phase. A match is skipped when it does not have exactly two
// alliances, teamID is on neither, or its round number is invalid.
// Negative alliance scores count as 0.
func ClassifyMatches(matches []model.MatchRecord, teamID int64, policy RoundPolicy) (qual, elim []int, skipped int) {
	for i := range matches {
		m := &matches[i]
		if len(m.Alliances) != 2 {
			skipped++
			continue
		}
		side := -1
		for j, a := range m.Alliances {
			if a.Has(teamID) {
				side = j
				break
			}
		}
		if side < 0 {
			skipped++
			continue
		}
		score := m.Alliances[side].Score
		if score < 0 {
			score = 0
		}
		switch policy.Phase(m.Round) {
		case PhaseQualification:
			qual = append(qual, score)
		case PhaseElimination:
			elim = append(elim, score)
		default:
			skipped++
		}
	}
	return qual, elim, skipped
}

// ClassifySkills splits skills scores into driver and programming runs.
// Records of unknown type or with a negative score are skipped.
func ClassifySkills(records []model.SkillsRecord) (driver, programming []int, skipped int) {
	for _, r := range records {
		if r.Score < 0 {
			skipped++
			continue
		}
		switch r.Type {
		case model.SkillDriver:
			driver = append(driver, r.Score)
		case model.SkillProgramming:
			programming = append(programming, r.Score)
		default:
			skipped++
		}
	}
	return driver, programming, skipped
}

// Combined returns best driver plus best programming for one event. ok is
// false when both bests are zero, in which case no entry should be recorded.
func Combined(driver, programming []int) (int, bool) {
	total := model.Best(driver) + model.Best(programming)
	if total <= 0 {
		return 0, false
	}
	return total, true
}
