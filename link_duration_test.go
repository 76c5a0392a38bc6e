package utdf2sumo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinkDurationsNEMA(t *testing.T) {
	conns, err := assignMovements(nemaLinks, map[string]CompassBound{
		"south_in": BOUND_NB,
		"north_in": BOUND_SB,
		"west_in":  BOUND_EB,
		"east_in":  BOUND_WB,
	})
	if err != nil {
		t.Error(err)
		return
	}
	expected := map[int]LinkDuration{
		0: {MaxDur: 30, MinDur: 8, Movement: "NBT"},
		1: {MaxDur: 12, MinDur: 4, Movement: "NBL"},
		2: {MaxDur: 35, MinDur: 8, Movement: "SBT"},
		3: {MaxDur: 10, MinDur: 4, Movement: "SBL"},
		4: {MaxDur: 25, MinDur: 8, Movement: "EBT"},
		5: {MaxDur: 11, MinDur: 4, Movement: "EBL"},
		6: {MaxDur: 26, MinDur: 8, Movement: "WBT"},
		7: {MaxDur: 10, MinDur: 4, Movement: "WBL"},
	}
	for _, mode := range []LinkDurationMode{LINK_DURATION_FIRST_MATCH, LINK_DURATION_ALL_PHASES} {
		assert.Equal(t, expected, LinkDurations(nemaTiming(), conns, mode), "mode %s", mode)
	}
}

func TestLinkDurationsModes(t *testing.T) {
	conns := []Connection{
		{Index: 0, FromEdge: "a", Movement: "NBT"},
		{Index: 1, FromEdge: "b", Movement: "SBT"},
	}
	movements := []MovementRecord{
		{Code: "NBT", UpNode: "S", Lanes: 1, Protected: []string{"D2"}},
		{Code: "SBT", UpNode: "N", Lanes: 1, Protected: []string{"D2", "D6"}},
	}
	phases := []*PhaseTiming{
		{ID: "D2", MinGreen: 5, MaxGreen: 30},
		{ID: "D6", MinGreen: 6, MaxGreen: 20},
	}
	timing, diagnostics := NewSignalTiming("7", movements, phases)
	assert.Empty(t, diagnostics)

	// D2 stops at NBT, so SBT only learns about D6
	assert.Equal(t, map[int]LinkDuration{
		0: {MaxDur: 30, MinDur: 5, Movement: "NBT"},
		1: {MaxDur: 20, MinDur: 6, Movement: "SBT"},
	}, LinkDurations(timing, conns, LINK_DURATION_FIRST_MATCH))

	assert.Equal(t, map[int]LinkDuration{
		0: {MaxDur: 30, MinDur: 5, Movement: "NBT"},
		1: {MaxDur: 30, MinDur: 5, Movement: "SBT"},
	}, LinkDurations(timing, conns, LINK_DURATION_ALL_PHASES))
}

func TestParseLinkDurationMode(t *testing.T) {
	for _, mode := range []LinkDurationMode{LINK_DURATION_FIRST_MATCH, LINK_DURATION_ALL_PHASES} {
		parsed, ok := ParseLinkDurationMode(mode.String())
		assert.True(t, ok)
		assert.Equal(t, mode, parsed)
	}
	_, ok := ParseLinkDurationMode("max")
	assert.False(t, ok)
}
