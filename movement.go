package utdf2sumo

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// MovementCode is a compass bound followed by turn type suffix. E.g.: "NBL", "SBT", "EBR2"
//
// Special values: "PED" (pedestrian crossing), "HOLD", "STOP" (stop-controlled link)
type MovementCode string

const (
	MOVEMENT_PED           = MovementCode("PED")
	MOVEMENT_HOLD          = MovementCode("HOLD")
	MOVEMENT_STOP          = MovementCode("STOP")
	MOVEMENT_NOT_AVAILABLE = MovementCode("N/A")
	MOVEMENT_NONE          = MovementCode("")
)

const (
	TURN_THRU    = "T"
	TURN_LEFT    = "L"
	TURN_RIGHT   = "R"
	TURN_LEFT2   = "L2"
	TURN_RIGHT2  = "R2"
	TURN_PED     = "PED"
	pedSeparator = "_"
)

// NewMovementCode glues bound and turn suffix
func NewMovementCode(bound CompassBound, turn string) MovementCode {
	return MovementCode(bound.String() + turn)
}

// Bound returns compass bound of the movement. BOUND_NONE for special codes
func (code MovementCode) Bound() CompassBound {
	if len(code) < 2 {
		return BOUND_NONE
	}
	bound, ok := boundTxt[string(code[0:2])]
	if !ok {
		return BOUND_NONE
	}
	return bound
}

// Turn returns everything after the bound
func (code MovementCode) Turn() string {
	if code.Bound() == BOUND_NONE {
		return string(code)
	}
	return strings.TrimPrefix(string(code[2:]), pedSeparator)
}

// IsPedestrian is true for "PED" and for bound-prefixed pedestrian codes like "NB_PED"
func (code MovementCode) IsPedestrian() bool {
	return strings.Contains(string(code), TURN_PED)
}

// sumoTurnSuffix converts SUMO connection 'dir' letter into turn suffix
//
// 's' (straight) becomes "T", every other letter is upper-cased: 'l' -> "L", 'r' -> "R", 't' -> "T"
func sumoTurnSuffix(dir string) string {
	if dir == "s" {
		return TURN_THRU
	}
	return strings.ToUpper(dir)
}

// pedestrianOpposite returns through movement facing bound-prefixed pedestrian code. E.g.: "NB_PED" -> "SBT"
func pedestrianOpposite(code MovementCode) (MovementCode, bool) {
	bound := code.Bound()
	if bound == BOUND_NONE || string(code[2:]) != pedSeparator+TURN_PED {
		return MOVEMENT_NONE, false
	}
	return NewMovementCode(bound.Opposite(), TURN_THRU), true
}

// bestMatchMovement picks the movement from 'all' which should drive signal of given code,
// when the code itself is not present at the intersection
func bestMatchMovement(code MovementCode, all MovementSet) MovementCode {
	bound := code.Bound()
	turn := code.Turn()
	if opposite, ok := pedestrianOpposite(code); ok && all.Has(opposite) {
		return opposite
	}
	if bound == BOUND_NONE {
		if code.IsPedestrian() && all.Has(code) {
			return code
		}
		return MOVEMENT_NOT_AVAILABLE
	}
	if thru := NewMovementCode(bound, TURN_THRU); all.Has(thru) {
		return thru
	}
	isPed := strings.Contains(turn, TURN_PED)
	if left := NewMovementCode(bound, TURN_LEFT); !isPed && all.Has(left) {
		return left
	}
	if right := NewMovementCode(bound, TURN_RIGHT); !isPed && all.Has(right) {
		return right
	}
	if isPed && all.Has(MovementCode(turn)) {
		return MovementCode(turn)
	}
	return MOVEMENT_NOT_AVAILABLE
}

// MovementSet is an unordered set of movement codes
type MovementSet map[MovementCode]struct{}

// NewMovementSet creates set from given codes
func NewMovementSet(codes ...MovementCode) MovementSet {
	set := make(MovementSet, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return set
}

// Has checks membership
func (set MovementSet) Has(code MovementCode) bool {
	_, ok := set[code]
	return ok
}

// Add inserts codes in place
func (set MovementSet) Add(codes ...MovementCode) {
	for _, code := range codes {
		set[code] = struct{}{}
	}
}

// Union returns new set
func (set MovementSet) Union(other MovementSet) MovementSet {
	result := make(MovementSet, len(set)+len(other))
	for code := range set {
		result[code] = struct{}{}
	}
	for code := range other {
		result[code] = struct{}{}
	}
	return result
}

// Difference returns new set with members of 'set' which are not in 'other'
func (set MovementSet) Difference(other MovementSet) MovementSet {
	result := make(MovementSet, len(set))
	for code := range set {
		if !other.Has(code) {
			result[code] = struct{}{}
		}
	}
	return result
}

// Contains is true when every member of 'other' is in 'set'
func (set MovementSet) Contains(other MovementSet) bool {
	for code := range other {
		if !set.Has(code) {
			return false
		}
	}
	return true
}

// Sorted returns members in lexicographic order
func (set MovementSet) Sorted() []MovementCode {
	codes := lo.Keys(set)
	sort.Slice(codes, func(i, j int) bool {
		return codes[i] < codes[j]
	})
	return codes
}

// Bounds returns compass bounds of all bound-prefixed members
func (set MovementSet) Bounds() boundSet {
	var bounds boundSet
	for code := range set {
		bounds = bounds.add(code.Bound())
	}
	return bounds
}

func (set MovementSet) String() string {
	codes := set.Sorted()
	strs := lo.Map(codes, func(code MovementCode, _ int) string {
		return string(code)
	})
	return "{" + strings.Join(strs, ",") + "}"
}
