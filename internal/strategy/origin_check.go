package strategy

import (
	"github.com/seitarof/fillguard/internal/scenario"
)

// OriginMode selects how strictly fields from different origins are kept
// apart.
type OriginMode int

const (
	// MultiOrigin is used when the caller reports the owning origin of every
	// field. A scenario must not span two origins.
	MultiOrigin OriginMode = iota
	// SingleOrigin is used when only the top level origin is known. No
	// field in a scenario may carry an origin.
	SingleOrigin
)

func (m OriginMode) String() string {
	if m == SingleOrigin {
		return "single-origin"
	}
	return "multi-origin"
}

// originConsistent checks sc against mode and returns the distinct
// origins it saw, in field order. An empty scenario never passes.
func originConsistent(sc scenario.Scenario, mode OriginMode) (bool, []string) {
	fields := sc.AllFields()
	if len(fields) == 0 {
		return false, nil
	}
	var origins []string
	seen := map[string]bool{}
	for _, f := range fields {
		if !seen[f.Origin()] {
			seen[f.Origin()] = true
			origins = append(origins, f.Origin())
		}
	}
	if mode == SingleOrigin {
		return len(origins) == 1 && origins[0] == "", origins
	}
	return len(origins) == 1, origins
}
