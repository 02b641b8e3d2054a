// Package report orders team aggregates and renders them as text rows, CSV
// and a console table.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/roboscout/internal/domain/model"
)

// SortKey selects the column rows are ordered by, descending.
type SortKey string

const (
	SortSkillAverage  SortKey = "skill_avg"
	SortQualAverage   SortKey = "qual_avg"
	SortBestQual      SortKey = "best_qual"
	SortQualThenSkill SortKey = "qual_then_skill"
)

// SortKeys lists the keys in menu order.
var SortKeys = []SortKey{SortSkillAverage, SortQualAverage, SortBestQual, SortQualThenSkill}

// ParseSortKey validates a configured key. Empty selects SortSkillAverage.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortSkillAverage, nil
	}
	for _, k := range SortKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
}

// Label is the human-readable name of the key.
func (k SortKey) Label() string {
	switch k {
	case SortQualAverage:
		return "qualification average"
	case SortBestQual:
		return "best qualification score"
	case SortQualThenSkill:
		return "qualification average, then skill average"
	default:
		return "skill average"
	}
}

func (k SortKey) less(a, b *model.TeamAggregate) bool {
	switch k {
	case SortQualAverage:
		return a.QualAverage > b.QualAverage
	case SortBestQual:
		return a.BestQual > b.BestQual
	case SortQualThenSkill:
		if a.QualAverage != b.QualAverage {
			return a.QualAverage > b.QualAverage
		}
		return a.SkillAverage > b.SkillAverage
	default:
		return a.SkillAverage > b.SkillAverage
	}
}

// Sort returns aggregates ordered descending by key. Equal keys keep their
// input order. The input slice is not modified.
func Sort(aggs []*model.TeamAggregate, key SortKey) []*model.TeamAggregate {
	out := make([]*model.TeamAggregate, len(aggs))
	copy(out, aggs)
	for _, a := range out {
		a.Finalize()
	}
	sort.SliceStable(out, func(i, j int) bool {
		return key.less(out[i], out[j])
	})
	return out
}

func avg(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// TextLine renders agg in the legacy spreadsheet layout: the four summary
// values followed by code/value pairs for each spreadsheet block.
func TextLine(agg *model.TeamAggregate) string {
	agg.Finalize()
	code := agg.Code()
	best := strconv.Itoa(agg.BestQual)
	qual, elim, skill := avg(agg.QualAverage), avg(agg.ElimAverage), avg(agg.SkillAverage)
	return strings.Join([]string{
		code, qual, best, elim, skill,
		code, best,
		code, best,
		code, elim,
		code, elim,
		code, skill,
		code, skill,
	}, " ")
}

// CSVHeader is the first record of the CSV report.
var CSVHeader = []string{
	"Team", "Qual Avg", "Best Qual", "Elims Avg", "Skill Avg",
	"Best Event", "Best Event Score", "Events", "Driver Skills", "Programming Skills",
}

// CSVRecord renders agg as one CSV record matching CSVHeader.
func CSVRecord(agg *model.TeamAggregate) []string {
	agg.Finalize()
	return []string{
		agg.Code(),
		avg(agg.QualAverage),
		strconv.Itoa(agg.BestQual),
		avg(agg.ElimAverage),
		avg(agg.SkillAverage),
		agg.BestEventName,
		strconv.Itoa(agg.BestEventScore),
		strconv.Itoa(len(agg.Events)),
		strconv.Itoa(agg.BestDriver()),
		strconv.Itoa(agg.BestProgramming()),
	}
}
