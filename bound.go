package utdf2sumo

import (
	"strings"
)

// CompassBound is one of the eight approach directions of an intersection
type CompassBound uint16

const (
	BOUND_NB = CompassBound(iota + 1)
	BOUND_SB
	BOUND_EB
	BOUND_WB
	BOUND_NE
	BOUND_NW
	BOUND_SE
	BOUND_SW
	BOUND_NONE = CompassBound(0)
)

func (iotaIdx CompassBound) String() string {
	return [...]string{"undefined", "NB", "SB", "EB", "WB", "NE", "NW", "SE", "SW"}[iotaIdx]
}

var (
	boundTxt = map[string]CompassBound{
		"NB": BOUND_NB,
		"SB": BOUND_SB,
		"EB": BOUND_EB,
		"WB": BOUND_WB,
		"NE": BOUND_NE,
		"NW": BOUND_NW,
		"SE": BOUND_SE,
		"SW": BOUND_SW,
	}
	oppositeBound = map[CompassBound]CompassBound{
		BOUND_NB: BOUND_SB,
		BOUND_SB: BOUND_NB,
		BOUND_EB: BOUND_WB,
		BOUND_WB: BOUND_EB,
		BOUND_NE: BOUND_SW,
		BOUND_SW: BOUND_NE,
		BOUND_NW: BOUND_SE,
		BOUND_SE: BOUND_NW,
	}
	// boundsAll lists every bound in declaration order
	boundsAll = []CompassBound{BOUND_NB, BOUND_SB, BOUND_EB, BOUND_WB, BOUND_NE, BOUND_NW, BOUND_SE, BOUND_SW}
)

// ParseCompassBound returns bound for given two-letter code (case insensitive)
func ParseCompassBound(s string) (CompassBound, bool) {
	bound, ok := boundTxt[strings.ToUpper(s)]
	return bound, ok
}

// Opposite returns the bound facing this one
func (iotaIdx CompassBound) Opposite() CompassBound {
	return oppositeBound[iotaIdx]
}

// boundSet is a set of compass bounds packed into bits
type boundSet uint16

func newBoundSet(bounds ...CompassBound) boundSet {
	var set boundSet
	for _, bound := range bounds {
		set = set.add(bound)
	}
	return set
}

func (set boundSet) add(bound CompassBound) boundSet {
	if bound == BOUND_NONE {
		return set
	}
	return set | (1 << bound)
}

func (set boundSet) has(bound CompassBound) bool {
	return bound != BOUND_NONE && set&(1<<bound) != 0
}

func (set boundSet) intersect(other boundSet) boundSet {
	return set & other
}

func (set boundSet) subtract(other boundSet) boundSet {
	return set &^ other
}

func (set boundSet) len() int {
	n := 0
	for _, bound := range boundsAll {
		if set.has(bound) {
			n++
		}
	}
	return n
}

// single returns the only member of the set. Second value is false when set does not hold exactly one bound
func (set boundSet) single() (CompassBound, bool) {
	if set.len() != 1 {
		return BOUND_NONE, false
	}
	for _, bound := range boundsAll {
		if set.has(bound) {
			return bound, true
		}
	}
	return BOUND_NONE, false
}

func (set boundSet) slice() []CompassBound {
	result := make([]CompassBound, 0, set.len())
	for _, bound := range boundsAll {
		if set.has(bound) {
			result = append(result, bound)
		}
	}
	return result
}

func (set boundSet) String() string {
	bounds := set.slice()
	strs := make([]string, len(bounds))
	for i, bound := range bounds {
		strs[i] = bound.String()
	}
	return "{" + strings.Join(strs, ",") + "}"
}
