package utdf2sumo

import (
	"math"
)

// LinkDurationMode defines how phases granting protected green to a link are aggregated
type LinkDurationMode uint16

const (
	// LINK_DURATION_FIRST_MATCH stops scanning links of a phase once a link gets its first duration
	LINK_DURATION_FIRST_MATCH = LinkDurationMode(iota + 1)
	// LINK_DURATION_ALL_PHASES aggregates every phase protecting the link
	LINK_DURATION_ALL_PHASES
)

func (iotaIdx LinkDurationMode) String() string {
	return [...]string{"first_match", "all_phases"}[iotaIdx-1]
}

// ParseLinkDurationMode accepts values produced by String()
func ParseLinkDurationMode(s string) (LinkDurationMode, bool) {
	switch s {
	case "first_match", "":
		return LINK_DURATION_FIRST_MATCH, true
	case "all_phases":
		return LINK_DURATION_ALL_PHASES, true
	default:
		return 0, false
	}
}

// LinkDuration is green duration bounds of single link
type LinkDuration struct {
	MaxDur   float64
	MinDur   float64
	Movement MovementCode
}

// LinkDurations computes green duration bounds per link index from phases protecting link's movement
func LinkDurations(timing *SignalTiming, conns []Connection, mode LinkDurationMode) map[int]LinkDuration {
	durations := make(map[int]LinkDuration)
	for _, phase := range timing.Phases {
		if len(phase.Protected) == 0 {
			continue
		}
		protected := NewMovementSet(phase.Protected...)
		for _, conn := range conns {
			if conn.Movement == MOVEMENT_NONE || !protected.Has(conn.Movement) {
				continue
			}
			existing, ok := durations[conn.Index]
			if ok {
				existing.MaxDur = math.Max(existing.MaxDur, phase.MaxGreen)
				existing.MinDur = math.Min(existing.MinDur, phase.MinGreen)
				durations[conn.Index] = existing
				continue
			}
			durations[conn.Index] = LinkDuration{
				MaxDur:   phase.MaxGreen,
				MinDur:   phase.MinGreen,
				Movement: conn.Movement,
			}
			if mode == LINK_DURATION_FIRST_MATCH {
				break
			}
		}
	}
	return durations
}
