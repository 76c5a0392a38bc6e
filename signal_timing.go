package utdf2sumo

import (
	"fmt"

	"github.com/samber/lo"
)

// ControlType is traffic light program type
type ControlType uint16

const (
	CONTROL_STATIC = ControlType(iota + 1)
	CONTROL_ACTUATED
)

func (iotaIdx ControlType) String() string {
	return [...]string{"static", "actuated"}[iotaIdx-1]
}

// controlTypeByUTDF maps UTDF 'Control Type' codes: 0 - pretimed, 1..3 - (semi/fully) actuated
var controlTypeByUTDF = map[string]ControlType{
	"0": CONTROL_STATIC,
	"1": CONTROL_ACTUATED,
	"2": CONTROL_ACTUATED,
	"3": CONTROL_ACTUATED,
}

// MovementRecord is one movement column of UTDF lane table
type MovementRecord struct {
	Code      MovementCode
	UpNode    string
	DestNode  string
	Lanes     int
	Protected []string // Phase identifiers, e.g. "D2"
	Permitted []string
	Storage   float64
	Speed     float64
	Volume    float64
	Detectors int
}

// PhaseTiming is one phase column of UTDF phase table with movements it serves
type PhaseTiming struct {
	ID          string
	MinGreen    float64
	MaxGreen    float64
	Yellow      float64
	AllRed      float64
	Position    RingPosition
	HasPosition bool
	Protected   []MovementCode
	Permitted   []MovementCode
}

// SignalTiming is timing plan of a single signalized intersection
type SignalTiming struct {
	IntersectionID string
	ControlType    ControlType
	Offset         float64
	Movements      []MovementRecord
	Phases         []*PhaseTiming // Order of phase table columns

	phasesByID map[string]*PhaseTiming
}

// NewSignalTiming links movement table to phase table
//
// Protected and permitted movements of each phase are filled from movement records.
// Movements without any phase borrow phases of movements coming from the same node.
// Returns list of diagnostics (e.g. reference to undefined phase)
func NewSignalTiming(intersectionID string, movements []MovementRecord, phases []*PhaseTiming) (*SignalTiming, []string) {
	timing := &SignalTiming{
		IntersectionID: intersectionID,
		ControlType:    CONTROL_STATIC,
		Movements:      make([]MovementRecord, len(movements)),
		Phases:         phases,
		phasesByID:     make(map[string]*PhaseTiming, len(phases)),
	}
	copy(timing.Movements, movements)
	for _, phase := range phases {
		timing.phasesByID[phase.ID] = phase
	}
	diagnostics := borrowMovementPhases(timing.Movements)
	for _, mvmt := range timing.Movements {
		for _, phaseID := range mvmt.Protected {
			phase, ok := timing.phasesByID[phaseID]
			if !ok {
				diagnostics = append(diagnostics, fmt.Sprintf("movement %s: protected phase %s is not in phase table", mvmt.Code, phaseID))
				continue
			}
			if !lo.Contains(phase.Protected, mvmt.Code) {
				phase.Protected = append(phase.Protected, mvmt.Code)
			}
		}
		for _, phaseID := range mvmt.Permitted {
			phase, ok := timing.phasesByID[phaseID]
			if !ok {
				diagnostics = append(diagnostics, fmt.Sprintf("movement %s: permitted phase %s is not in phase table", mvmt.Code, phaseID))
				continue
			}
			if !lo.Contains(phase.Permitted, mvmt.Code) {
				phase.Permitted = append(phase.Permitted, mvmt.Code)
			}
		}
	}
	return timing, diagnostics
}

// borrowMovementPhases assigns phases to movements which have none. Modifies records in place
//
// Candidates are movements with phases sharing up node (or dest node as fallback).
// Single candidate lends its protected phases, otherwise through movement of the same bound lends them
// (first candidate if there is no through one). Through movements get phases as protected, others as permitted
func borrowMovementPhases(movements []MovementRecord) []string {
	diagnostics := []string{}
	lanesPerBound := make(map[CompassBound]int)
	inboundByNode := make(map[string][]int)
	needLookup := []int{}
	for i, mvmt := range movements {
		if mvmt.Code == MOVEMENT_PED {
			continue
		}
		lanesPerBound[mvmt.Code.Bound()] += mvmt.Lanes
		if len(mvmt.Protected)+len(mvmt.Permitted) == 0 {
			needLookup = append(needLookup, i)
			continue
		}
		inboundByNode[mvmt.UpNode] = append(inboundByNode[mvmt.UpNode], i)
	}
	for _, idx := range needLookup {
		mvmt := &movements[idx]
		if lanesPerBound[mvmt.Code.Bound()] == 0 {
			continue
		}
		possible, ok := inboundByNode[mvmt.UpNode]
		if !ok {
			possible, ok = inboundByNode[mvmt.DestNode]
		}
		if !ok || len(possible) == 0 {
			diagnostics = append(diagnostics, fmt.Sprintf("movement %s: no movement to borrow phases from", mvmt.Code))
			continue
		}
		lender := possible[0]
		if len(possible) > 1 {
			thru := NewMovementCode(mvmt.Code.Bound(), TURN_THRU)
			for _, candidate := range possible {
				if movements[candidate].Code == thru {
					lender = candidate
					break
				}
			}
		}
		borrowed := append([]string(nil), movements[lender].Protected...)
		if mvmt.Code.Turn() == TURN_THRU {
			mvmt.Protected = borrowed
		} else {
			mvmt.Permitted = borrowed
		}
	}
	return diagnostics
}

// Phase returns phase by its identifier
func (timing *SignalTiming) Phase(id string) (*PhaseTiming, bool) {
	phase, ok := timing.phasesByID[id]
	return phase, ok
}

// ActiveMovements returns every movement served by any phase, except PED and HOLD
func (timing *SignalTiming) ActiveMovements() MovementSet {
	set := NewMovementSet()
	for _, phase := range timing.Phases {
		for _, code := range phase.Protected {
			set.Add(code)
		}
		for _, code := range phase.Permitted {
			set.Add(code)
		}
	}
	delete(set, MOVEMENT_PED)
	delete(set, MOVEMENT_HOLD)
	return set
}

// ActiveBounds returns compass bounds of active movements
func (timing *SignalTiming) ActiveBounds() []CompassBound {
	return timing.ActiveMovements().Bounds().slice()
}

// RingBarrier builds ring-barrier table of the plan
func (timing *SignalTiming) RingBarrier() (RingBarrierTable, error) {
	return NewRingBarrierTable(timing.Phases)
}
