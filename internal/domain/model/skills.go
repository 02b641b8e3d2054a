package model

import "strings"

// SkillType is the canonical kind of a skills run.
type SkillType int

const (
	SkillUnknown SkillType = iota
	SkillDriver
	SkillProgramming
)

// String implements fmt.Stringer.
func (t SkillType) String() string {
	switch t {
	case SkillDriver:
		return "driver"
	case SkillProgramming:
		return "programming"
	default:
		return "unknown"
	}
}

// SkillTypeFromName maps the bare string form ("driver", "programming").
func SkillTypeFromName(name string) SkillType {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "driver":
		return SkillDriver
	case "programming":
		return SkillProgramming
	default:
		return SkillUnknown
	}
}

// SkillTypeFromCode maps the numeric form (1 driver, 2 programming).
func SkillTypeFromCode(code int) SkillType {
	switch code {
	case 1:
		return SkillDriver
	case 2:
		return SkillProgramming
	default:
		return SkillUnknown
	}
}

// SkillsRecord is one team's skills result of a given type at an event.
type SkillsRecord struct {
	Type     SkillType
	Score    int
	Attempts int
}
