package utdf2sumo

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// PhaseKind distinguishes green phases from synthesized clearance ones
type PhaseKind uint16

const (
	PHASE_GREEN = PhaseKind(iota + 1)
	PHASE_YELLOW
	PHASE_ALL_RED
)

func (iotaIdx PhaseKind) String() string {
	return [...]string{"undefined", "green", "yellow", "all_red"}[iotaIdx]
}

// Signal state characters
const (
	STATE_RED       = 'r'
	STATE_YELLOW    = 'y'
	STATE_PERMITTED = 'g'
	STATE_PROTECTED = 'G'
	STATE_STOP      = 's'
)

func isGreenState(state byte) bool {
	return state == STATE_PROTECTED || state == STATE_PERMITTED
}

// SignalPhase is one entry of traffic light program
type SignalPhase struct {
	Name   string
	Kind   PhaseKind
	State  string // One character per connection, in link index order
	MinDur float64
	MaxDur float64
	Yellow float64
	AllRed float64
	Next   []int
	// First link index of pedestrian connections, -1 if there are none
	PedStart int
}

// Duration is time the phase lasts in program of given type
func (phase SignalPhase) Duration(controlType ControlType) float64 {
	if phase.Kind == PHASE_GREEN && controlType == CONTROL_ACTUATED {
		return phase.MinDur
	}
	return phase.MaxDur
}

func (phase SignalPhase) String() string {
	return fmt.Sprintf("%s %s %s next=%v", phase.Name, phase.Kind, phase.State, phase.Next)
}

// GreenPhase collects timing and movements of every ring position in phase and computes its green states
//
// Durations are the tightest of the ring positions: minimal MinGreen and minimal MaxGreen.
// Clearance times are taken from the last ring. Movements which are protected by any ring position are not
// considered permitted
func GreenPhase(phase Phase, timing *SignalTiming, conns []Connection, pedExclusive bool) (SignalPhase, error) {
	result := SignalPhase{
		Name:   phase.String(),
		Kind:   PHASE_GREEN,
		MinDur: math.MaxInt32,
		MaxDur: math.MaxInt32,
	}
	protected := NewMovementSet()
	permitted := NewMovementSet()
	for _, phaseID := range phase.Rings {
		pt, ok := timing.Phase(phaseID)
		if !ok {
			return SignalPhase{}, errors.Wrapf(ErrUnknownPhase, "phase '%s'", phaseID)
		}
		result.MinDur = math.Min(result.MinDur, pt.MinGreen)
		result.MaxDur = math.Min(result.MaxDur, pt.MaxGreen)
		result.Yellow = pt.Yellow
		result.AllRed = pt.AllRed
		protected.Add(pt.Protected...)
		permitted.Add(pt.Permitted...)
	}
	permitted = permitted.Difference(protected)
	state, pedStart, err := ComputeGreenStates(conns, protected, permitted, timing.ActiveMovements(), pedExclusive)
	if err != nil {
		return SignalPhase{}, errors.Wrapf(err, "phase %s", result.Name)
	}
	result.State = state
	result.PedStart = pedStart
	return result, nil
}

// ComputeGreenStates assigns signal state character to every connection
//
// Connections must be sorted by link index and carry movement codes. Pedestrian links are resolved after
// vehicle ones since they depend on states of conflicting vehicle links
func ComputeGreenStates(conns []Connection, protected, permitted, all MovementSet, pedExclusive bool) (string, int, error) {
	state := []byte(strings.Repeat(string(STATE_RED), len(conns)))
	pedStart := -1
	pedestrians := []int{}
	for i, conn := range conns {
		switch {
		case conn.Movement == MOVEMENT_STOP:
			state[i] = STATE_STOP
		case conn.Movement.IsPedestrian():
			if pedStart < 0 {
				pedStart = i
			}
			pedestrians = append(pedestrians, i)
		case conn.Movement == MOVEMENT_NONE:
			if conn.IsInternal() {
				// Walking area link not leading to crossing. Never signalized
				continue
			}
			return "", -1, errors.Wrapf(ErrUnmatchedMovement, "link %d (%s -> %s) has no movement", conn.Index, conn.FromEdge, conn.ToEdge)
		default:
			signal := conn.Movement
			if !all.Has(signal) {
				signal = bestMatchMovement(conn.Movement, all)
			}
			if signal == MOVEMENT_NOT_AVAILABLE {
				return "", -1, errors.Wrapf(ErrUnmatchedMovement, "link %d movement %s, signalized %s", conn.Index, conn.Movement, all)
			}
			switch {
			case protected.Has(signal):
				if signal == conn.Movement || conn.Dir == "s" {
					state[i] = STATE_PROTECTED
				} else {
					state[i] = STATE_PERMITTED
				}
			case permitted.Has(signal):
				state[i] = STATE_PERMITTED
			}
		}
	}
	for _, i := range pedestrians {
		if pedestrianGreen(conns[i], state, protected, pedExclusive) {
			state[i] = STATE_PROTECTED
		}
	}
	return string(state), pedStart, nil
}

// pedestrianGreen checks if crossing may be served given vehicle states.
// Source-side conflicts block on any green, destination-side ones on protected green only
func pedestrianGreen(ped Connection, state []byte, protected MovementSet, pedExclusive bool) bool {
	if pedExclusive {
		if !protected.Has(MOVEMENT_PED) {
			return false
		}
	} else if !ped.PedAllowed.Contains(protected.Difference(NewMovementSet(MOVEMENT_PED))) {
		return false
	}
	for _, idx := range ped.PedConflictsFrom {
		if idx >= 0 && idx < len(state) && isGreenState(state[idx]) {
			return false
		}
	}
	for _, idx := range ped.PedConflictsTo {
		if idx >= 0 && idx < len(state) && state[idx] == STATE_PROTECTED {
			return false
		}
	}
	return true
}
