package scoring

import (
	"fmt"
	"strings"
)

// RoundPolicy decides which round numbers count as qualification.
type RoundPolicy string

const (
	// PolicySingle treats round 1 as qualification and anything higher as
	// elimination.
	PolicySingle RoundPolicy = "single"
	// PolicyDouble treats rounds 1 and 2 as qualification, used where
	// practice and qualification share the early round numbers.
	PolicyDouble RoundPolicy = "double"
)

// Phase is the bucket a match score lands in.
type Phase int

const (
	PhaseInvalid Phase = iota
	PhaseQualification
	PhaseElimination
)

// ParseRoundPolicy maps a configured name to a RoundPolicy. Empty selects
// PolicySingle.
func ParseRoundPolicy(name string) (RoundPolicy, error) {
	switch RoundPolicy(strings.ToLower(strings.TrimSpace(name))) {
	case "", PolicySingle:
		return PolicySingle, nil
	case PolicyDouble:
		return PolicyDouble, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRoundPolicy, name)
	}
}

// Phase classifies a round number. Rounds below 1 are PhaseInvalid.
func (p RoundPolicy) Phase(round int) Phase {
	if round < 1 {
		return PhaseInvalid
	}
	lastQual := 1
	if p == PolicyDouble {
		lastQual = 2
	}
	if round <= lastQual {
		return PhaseQualification
	}
	return PhaseElimination
}
