package utdf2sumo

import (
	"fmt"

	"github.com/pkg/errors"
)

// TrafficLightProgram is synthesized SUMO traffic light logic for single junction
type TrafficLightProgram struct {
	JunctionID    string
	ProgramID     string
	Type          ControlType
	Offset        float64
	Mapping       map[string]CompassBound // Inbound edge -> compass bound
	Approaches    []ApproachEdge          // In order of first appearance among connections
	Connections   []Connection            // Annotated copies of junction connections
	Phases        []SignalPhase           // Green phases first, then clearance phases
	LinkDurations map[int]LinkDuration
	Diagnostics   []string
}

// GreenPhasesNum returns number of green phases in program
func (program *TrafficLightProgram) GreenPhasesNum() int {
	n := 0
	for _, phase := range program.Phases {
		if phase.Kind == PHASE_GREEN {
			n++
		}
	}
	return n
}

// BuildProgram synthesizes traffic light program for junction from intersection timing plan
func BuildProgram(timing *SignalTiming, junction *Junction, programID string, linkMode LinkDurationMode) (*TrafficLightProgram, error) {
	if err := validateLinkIndices(junction.Connections); err != nil {
		return nil, errors.Wrapf(err, "junction '%s'", junction.ID)
	}
	program := &TrafficLightProgram{
		JunctionID:  junction.ID,
		ProgramID:   programID,
		Type:        timing.ControlType,
		Offset:      timing.Offset,
		Diagnostics: []string{},
	}
	active := timing.ActiveMovements()

	inbound := junction.InboundEdges()
	approaches := make([]ApproachEdge, 0, len(inbound))
	for _, edgeID := range inbound {
		approach, ok := junction.Approaches[edgeID]
		if !ok {
			return nil, errors.Wrapf(ErrUnmappedApproach, "junction '%s': no geometry for edge '%s'", junction.ID, edgeID)
		}
		approaches = append(approaches, approach)
	}
	mapping, err := MatchDirections(approaches, active.Bounds().slice())
	if err != nil {
		return nil, errors.Wrapf(err, "junction '%s': can't match directions", junction.ID)
	}
	program.Mapping = mapping
	program.Approaches = approaches

	conns, err := assignMovements(junction.Connections, mapping)
	if err != nil {
		return nil, errors.Wrapf(err, "junction '%s'", junction.ID)
	}
	conns = resolveCrossings(conns, junction.Crossings, active)
	for _, conn := range conns {
		if conn.IsInternal() && conn.Movement == MOVEMENT_PED && len(conn.PedAllowed) == 0 {
			program.Diagnostics = append(program.Diagnostics, fmt.Sprintf("pedestrian link %d conflicts with every movement", conn.Index))
		}
	}
	program.Connections = conns

	table, err := timing.RingBarrier()
	if err != nil {
		return nil, errors.Wrapf(err, "intersection '%s'", timing.IntersectionID)
	}
	sequence, err := SequencePhases(table)
	if err != nil {
		return nil, errors.Wrapf(err, "intersection '%s'", timing.IntersectionID)
	}
	pedExclusive := isPedestrianExclusive(sequence, timing)

	greens := make([]SignalPhase, 0, len(sequence))
	for _, phase := range sequence {
		green, err := GreenPhase(phase, timing, conns, pedExclusive)
		if err != nil {
			return nil, errors.Wrapf(err, "junction '%s'", junction.ID)
		}
		green.Next = phase.Next
		greens = append(greens, green)
	}
	program.Phases = BuildTransitions(greens)
	program.LinkDurations = LinkDurations(timing, conns, linkMode)
	return program, nil
}

// validateLinkIndices checks that connections are sorted by link index which starts from zero without gaps
func validateLinkIndices(conns []Connection) error {
	for i, conn := range conns {
		if conn.Index != i {
			return errors.Wrapf(ErrInvalidLinkIndex, "position %d holds link %d", i, conn.Index)
		}
	}
	return nil
}
