package utdf2sumo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nemaGreens builds green phases linked to each other only, before any clearance is inserted
func nemaGreens(t *testing.T) []SignalPhase {
	timing := nemaTiming()
	junction := nemaJunction()
	mapping, err := MatchDirections(approachesOf(junction), timing.ActiveBounds())
	require.NoError(t, err)
	conns, err := assignMovements(junction.Connections, mapping)
	require.NoError(t, err)
	table, err := timing.RingBarrier()
	require.NoError(t, err)
	sequence, err := SequencePhases(table)
	require.NoError(t, err)

	greens := make([]SignalPhase, 0, len(sequence))
	for _, phase := range sequence {
		green, err := GreenPhase(phase, timing, conns, false)
		require.NoError(t, err)
		green.Next = phase.Next
		greens = append(greens, green)
	}
	return greens
}

func approachesOf(junction *Junction) []ApproachEdge {
	edges := []ApproachEdge{}
	for _, id := range junction.InboundEdges() {
		edges = append(edges, junction.Approaches[id])
	}
	return edges
}

func TestGreenPhaseNEMA(t *testing.T) {
	greens := nemaGreens(t)
	states := make([]string, len(greens))
	for i, phase := range greens {
		states[i] = phase.State
	}
	assert.Equal(t, []string{
		"rGrGrrrr", // (D1,D5): SBL, NBL
		"GGrrrrrr", // (D2,D5): NBT, NBL
		"rrGGrrrr", // (D1,D6): SBT, SBL
		"GrGrrrrr", // (D2,D6): NBT, SBT
		"rrrrrGrG", // (D3,D7): WBL, EBL
		"rrrrGGrr", // (D4,D7): EBT, EBL
		"rrrrrrGG", // (D3,D8): WBT, WBL
		"rrrrGrGr", // (D4,D8): EBT, WBT
	}, states)

	// Opposing through movements share the same phase
	assert.Equal(t, byte(STATE_PROTECTED), greens[3].State[0])
	assert.Equal(t, byte(STATE_PROTECTED), greens[3].State[2])

	first := greens[0]
	assert.Equal(t, "(D1,D5)", first.Name)
	assert.Equal(t, []int{1, 2}, first.Next)
	assert.Equal(t, PHASE_GREEN, first.Kind)
	assert.Equal(t, 4.0, first.MinDur)
	assert.Equal(t, 10.0, first.MaxDur)
	assert.Equal(t, 3.5, first.Yellow)
	assert.Equal(t, 2.0, first.AllRed)
	assert.Equal(t, -1, first.PedStart)
	assert.Equal(t, 4.0, first.Duration(CONTROL_ACTUATED))
	assert.Equal(t, 10.0, first.Duration(CONTROL_STATIC))
}

func TestGreenPhaseUnknownPhase(t *testing.T) {
	_, err := GreenPhase(Phase{Rings: []string{"D1", "D42"}}, nemaTiming(), nil, false)
	assert.ErrorIs(t, err, ErrUnknownPhase)
}

func TestComputeGreenStatesPermitted(t *testing.T) {
	conns := []Connection{
		{Index: 0, FromEdge: "a", Dir: "s", Movement: "NBT"},
		{Index: 1, FromEdge: "a", Dir: "l", Movement: "NBL"},
		{Index: 2, FromEdge: "a", Dir: "r", Movement: "NBR"},
		{Index: 3, FromEdge: "b", Dir: "s", Movement: "SBT"},
		{Index: 4, FromEdge: "b", Dir: "l", Movement: MOVEMENT_STOP},
	}
	all := NewMovementSet("NBT", "NBL", "SBT")
	// NBR is not signalized at this approach and follows NBT; as a turn it may only yield
	state, pedStart, err := ComputeGreenStates(conns, NewMovementSet("NBT"), NewMovementSet("NBL"), all, false)
	require.NoError(t, err)
	assert.Equal(t, "Gggrs", state)
	assert.Equal(t, -1, pedStart)

	conns = append(conns, Connection{Index: 5, FromEdge: "c", Dir: "l", Movement: "EBL"})
	_, _, err = ComputeGreenStates(conns, NewMovementSet("NBT"), NewMovementSet(), all, false)
	assert.ErrorIs(t, err, ErrUnmatchedMovement)

	_, _, err = ComputeGreenStates([]Connection{{Index: 0, FromEdge: "a", Dir: "s"}}, NewMovementSet(), NewMovementSet(), all, false)
	assert.ErrorIs(t, err, ErrUnmatchedMovement)
}

func TestComputeGreenStatesPedestrian(t *testing.T) {
	conns, crossings, active := pedestrianLinks(t)
	conns = resolveCrossings(conns, crossings, active)

	// NBT protected: crossing over its source edge must stay red
	state, pedStart, err := ComputeGreenStates(conns, NewMovementSet("NBT", "SBT"), NewMovementSet(), active, false)
	require.NoError(t, err)
	assert.Equal(t, "GrGrrrrrr", state)
	assert.Equal(t, 8, pedStart)

	// East-west movements do not touch the crossing
	state, _, err = ComputeGreenStates(conns, NewMovementSet("EBT", "EBL"), NewMovementSet(), active, false)
	require.NoError(t, err)
	assert.Equal(t, "rrrrGGrrG", state)

	// WBL ends on the crossed edge
	state, _, err = ComputeGreenStates(conns, NewMovementSet("WBT", "WBL"), NewMovementSet(), active, false)
	require.NoError(t, err)
	assert.Equal(t, "rrrrrrGGr", state)

	// Exclusive pedestrian phase
	state, _, err = ComputeGreenStates(conns, NewMovementSet(MOVEMENT_PED), NewMovementSet(), active, true)
	require.NoError(t, err)
	assert.Equal(t, "rrrrrrrrG", state)
	state, _, err = ComputeGreenStates(conns, NewMovementSet("EBT", "EBL"), NewMovementSet(), active, true)
	require.NoError(t, err)
	assert.Equal(t, "rrrrGGrrr", state)

	// Pedestrian phase sharing a barrier with vehicle phases
	state, _, err = ComputeGreenStates(conns, NewMovementSet("EBT", "EBL", MOVEMENT_PED), NewMovementSet(), active, false)
	require.NoError(t, err)
	assert.Equal(t, "rrrrGGrrG", state)
	state, _, err = ComputeGreenStates(conns, NewMovementSet("NBT", MOVEMENT_PED), NewMovementSet(), active, false)
	require.NoError(t, err)
	assert.Equal(t, "Grrrrrrrr", state)
}

func TestComputeGreenStatesPedestrianPermittedConflict(t *testing.T) {
	conns, crossings, active := pedestrianLinks(t)
	conns = resolveCrossings(conns, crossings, active)
	// Source side blocks on permitted green as well, destination side on protected only
	conns[8].PedAllowed = active.Union(nil)
	state, _, err := ComputeGreenStates(conns, NewMovementSet(), NewMovementSet("NBL"), active, false)
	require.NoError(t, err)
	assert.Equal(t, "rgrrrrrrr", state)

	state, _, err = ComputeGreenStates(conns, NewMovementSet(), NewMovementSet("SBT"), active, false)
	require.NoError(t, err)
	assert.Equal(t, "rrgrrrrrG", state)
}

func TestPhaseKindString(t *testing.T) {
	assert.Equal(t, "undefined", SignalPhase{}.Kind.String())
	assert.Equal(t, "all_red", PHASE_ALL_RED.String())
	assert.Equal(t, " undefined  next=[]", SignalPhase{}.String())
}
