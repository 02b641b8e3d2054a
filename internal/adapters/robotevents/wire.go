package robotevents

import (
	"bytes"
	"fmt"
	"time"

	"github.com/okian/roboscout/internal/domain/model"
)

// Wire shapes of API items. Only the fields used downstream are declared.

type idRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type teamWire struct {
	ID       int64  `json:"id"`
	Number   string `json:"number"`
	TeamName string `json:"team_name"`
	Program  idRef  `json:"program"`
}

type divisionWire struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

type eventWire struct {
	ID        int64          `json:"id"`
	SKU       string         `json:"sku"`
	Name      string         `json:"name"`
	Start     string         `json:"start"`
	End       string         `json:"end"`
	Program   idRef          `json:"program"`
	Divisions []divisionWire `json:"divisions"`
}

// allianceTeam accepts {"id": N} as well as {"team": {"id": N}}.
type allianceTeam struct {
	ID int64
}

func (t *allianceTeam) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID   int64  `json:"id"`
		Team *idRef `json:"team"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	t.ID = raw.ID
	if raw.Team != nil && raw.Team.ID != 0 {
		t.ID = raw.Team.ID
	}
	return nil
}

type allianceWire struct {
	Color string         `json:"color"`
	Score int            `json:"score"`
	Teams []allianceTeam `json:"teams"`
}

type matchWire struct {
	ID        int64          `json:"id"`
	Round     int            `json:"round"`
	Instance  int            `json:"instance"`
	MatchNum  int            `json:"matchnum"`
	Alliances []allianceWire `json:"alliances"`
}

// skillType accepts "driver"/"programming", a bare code, or an object
// carrying the code as id (1 driver, 2 programming) or a name.
type skillType struct {
	Type model.SkillType
}

func (s *skillType) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		s.Type = model.SkillUnknown
		return nil
	}
	switch b[0] {
	case '"':
		var name string
		if err := json.Unmarshal(b, &name); err != nil {
			return err
		}
		s.Type = model.SkillTypeFromName(name)
	case '{':
		var obj idRef
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		s.Type = model.SkillTypeFromCode(int(obj.ID))
		if s.Type == model.SkillUnknown {
			s.Type = model.SkillTypeFromName(obj.Name)
		}
	default:
		var code int
		if err := json.Unmarshal(b, &code); err != nil {
			return fmt.Errorf("skill type: %w", err)
		}
		s.Type = model.SkillTypeFromCode(code)
	}
	return nil
}

type skillWire struct {
	Type     skillType `json:"type"`
	Score    int       `json:"score"`
	Attempts int       `json:"attempts"`
	Team     idRef     `json:"team"`
}

type rankingWire struct {
	Rank          int     `json:"rank"`
	Team          idRef   `json:"team"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Ties          int     `json:"ties"`
	WP            int     `json:"wp"`
	AP            int     `json:"ap"`
	SP            int     `json:"sp"`
	HighScore     int     `json:"high_score"`
	AveragePoints float64 `json:"average_points"`
	TotalPoints   int     `json:"total_points"`
}

func (w teamWire) toModel() model.TeamIdentity {
	return model.TeamIdentity{
		ID:      w.ID,
		Code:    w.Number,
		Name:    w.TeamName,
		Program: model.ProgramRef{ID: w.Program.ID, Code: w.Program.Code, Name: w.Program.Name},
	}
}

func (w divisionWire) toModel() model.DivisionRef {
	return model.DivisionRef{ID: w.ID, Name: w.Name, Order: w.Order}
}

func (w eventWire) toModel() model.EventRef {
	ev := model.EventRef{
		ID:      w.ID,
		SKU:     w.SKU,
		Name:    w.Name,
		Start:   parseTime(w.Start),
		End:     parseTime(w.End),
		Program: model.ProgramRef{ID: w.Program.ID, Code: w.Program.Code, Name: w.Program.Name},
	}
	for _, d := range w.Divisions {
		ev.Divisions = append(ev.Divisions, d.toModel())
	}
	return ev
}

func (w matchWire) toModel() model.MatchRecord {
	m := model.MatchRecord{ID: w.ID, Round: w.Round, Instance: w.Instance, MatchNum: w.MatchNum}
	for _, a := range w.Alliances {
		ids := make([]int64, 0, len(a.Teams))
		for _, t := range a.Teams {
			if t.ID != 0 {
				ids = append(ids, t.ID)
			}
		}
		m.Alliances = append(m.Alliances, model.Alliance{Color: a.Color, Score: a.Score, TeamIDs: ids})
	}
	return m
}

func (w skillWire) toModel() model.SkillsRecord {
	return model.SkillsRecord{Type: w.Type.Type, Score: w.Score, Attempts: w.Attempts}
}

func (w rankingWire) toModel() model.RankingRecord {
	return model.RankingRecord{
		Rank:          w.Rank,
		TeamID:        w.Team.ID,
		Wins:          w.Wins,
		Losses:        w.Losses,
		Ties:          w.Ties,
		WP:            w.WP,
		AP:            w.AP,
		SP:            w.SP,
		HighScore:     w.HighScore,
		AveragePoints: w.AveragePoints,
		TotalPoints:   w.TotalPoints,
	}
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
