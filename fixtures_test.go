package utdf2sumo

import (
	"github.com/paulmach/orb"
)

// Four-leg intersection: every approach has one through and one left-turn link
var (
	nemaShapes = map[string]orb.LineString{
		"south_in":  {{0, -100}, {0, -10}},
		"north_in":  {{0, 100}, {0, 10}},
		"west_in":   {{-100, 0}, {-10, 0}},
		"east_in":   {{100, 0}, {10, 0}},
		"north_out": {{0, 10}, {0, 100}},
		"south_out": {{0, -10}, {0, -100}},
		"east_out":  {{10, 0}, {100, 0}},
		"west_out":  {{-10, 0}, {-100, 0}},
	}
	nemaLinks = []Connection{
		{Index: 0, FromEdge: "south_in", ToEdge: "north_out", Dir: "s", State: "O"},
		{Index: 1, FromEdge: "south_in", ToEdge: "west_out", Dir: "l", State: "o"},
		{Index: 2, FromEdge: "north_in", ToEdge: "south_out", Dir: "s", State: "O"},
		{Index: 3, FromEdge: "north_in", ToEdge: "east_out", Dir: "l", State: "o"},
		{Index: 4, FromEdge: "west_in", ToEdge: "east_out", Dir: "s", State: "O"},
		{Index: 5, FromEdge: "west_in", ToEdge: "north_out", Dir: "l", State: "o"},
		{Index: 6, FromEdge: "east_in", ToEdge: "west_out", Dir: "s", State: "O"},
		{Index: 7, FromEdge: "east_in", ToEdge: "south_out", Dir: "l", State: "o"},
	}
)

func nemaJunction() *Junction {
	junction := &Junction{
		ID:          "1",
		Connections: cloneConnections(nemaLinks),
		Approaches:  make(map[string]ApproachEdge),
		Crossings:   make(map[string][]string),
	}
	for _, edgeID := range []string{"south_in", "north_in", "west_in", "east_in"} {
		junction.Approaches[edgeID] = ApproachEdge{
			ID:       edgeID,
			Geom:     nemaShapes[edgeID],
			Geometry: terminalGeometry(nemaShapes[edgeID]),
		}
	}
	return junction
}

// nemaTiming is standard dual-ring eight phase plan:
// barrier 1 serves north-south (D1, D2 | D5, D6), barrier 2 serves east-west (D3, D4 | D7, D8)
func nemaTiming() *SignalTiming {
	phase := func(id string, minGreen, maxGreen, allRed float64, brp string) *PhaseTiming {
		pos, err := ParseRingPosition(brp)
		if err != nil {
			panic(err)
		}
		return &PhaseTiming{ID: id, MinGreen: minGreen, MaxGreen: maxGreen, Yellow: 3.5, AllRed: allRed, Position: pos, HasPosition: true}
	}
	phases := []*PhaseTiming{
		phase("D1", 4, 10, 1, "111"),
		phase("D2", 8, 30, 1, "112"),
		phase("D3", 4, 10, 1, "211"),
		phase("D4", 8, 25, 1, "212"),
		phase("D5", 4, 12, 2, "121"),
		phase("D6", 8, 35, 2, "122"),
		phase("D7", 4, 11, 2, "221"),
		phase("D8", 8, 26, 2, "222"),
	}
	movements := []MovementRecord{
		{Code: "NBL", UpNode: "S", Lanes: 1, Protected: []string{"D5"}},
		{Code: "NBT", UpNode: "S", Lanes: 1, Protected: []string{"D2"}},
		{Code: "SBL", UpNode: "N", Lanes: 1, Protected: []string{"D1"}},
		{Code: "SBT", UpNode: "N", Lanes: 1, Protected: []string{"D6"}},
		{Code: "EBL", UpNode: "W", Lanes: 1, Protected: []string{"D7"}},
		{Code: "EBT", UpNode: "W", Lanes: 1, Protected: []string{"D4"}},
		{Code: "WBL", UpNode: "E", Lanes: 1, Protected: []string{"D3"}},
		{Code: "WBT", UpNode: "E", Lanes: 1, Protected: []string{"D8"}},
	}
	timing, _ := NewSignalTiming("1", movements, phases)
	timing.ControlType = CONTROL_ACTUATED
	return timing
}

const utdfSample = `[Network]
Network Settings
RECORDNAME,DATA
UTDFVERSION,8

[Lanes]
Lane Group Data
RECORDNAME,INTID,NBL,NBT,NBR,SBL,SBT,SBR,EBL,EBT,EBR,WBL,WBT,WBR,PED,HOLD
Up Node,1,10,10,10,20,20,,30,30,,40,40,,,
Dest Node,1,30,20,40,40,10,,20,40,,10,30,,,
Lanes,1,1,1,1,1,1,0,1,1,0,1,1,0,,
Phase1,1,5,2,,1,6,,7,4,,3,8,,,
PermPhase1,1,,,,,,,,,,,,,,
Phase2,1,,,,,,,,,,,,,,
Storage,1,150,,,150,,,100,,,100,,,,
Speed,1,30,30,30,30,30,,25,25,,25,25,,,
Volume,1,120,600,80,110,580,,90,400,,95,410,,,

[Timeplans]
Timing Plan Settings
RECORDNAME,INTID,DATA
Control Type,1,3
Offset,1,12
Control Type,2,0
Offset,2,0

[Phases]
Phasing Data
RECORDNAME,INTID,D1,D2,D3,D4,D5,D6,D7,D8
BRP,1,111,112,211,212,121,122,221,222
MinGreen,1,4,8,4,8,4,8,4,8
MaxGreen,1,10,30,10,25,12,35,11,26
Yellow,1,3.5,3.5,3.5,3.5,3.5,3.5,3.5,3.5
AllRed,1,1,1,1,1,2,2,2,2
`

const netSample = `<?xml version="1.0" encoding="UTF-8"?>
<net version="1.16" junctionCornerDetail="5">
    <edge id=":1_c0" function="crossing" crossingEdges="south_out south_in">
        <lane id=":1_c0_0" index="0" allow="pedestrian" speed="1.00" length="12.00" width="4.00" shape="-6.00,-12.00 6.00,-12.00"/>
    </edge>
    <edge id=":1_w0" function="walkingarea">
        <lane id=":1_w0_0" index="0" allow="pedestrian" speed="1.00" length="2.00" width="2.00" shape="-8.00,-12.00 -6.00,-12.00"/>
    </edge>
    <edge id="south_in" from="S" to="1" priority="1">
        <lane id="south_in_0" index="0" speed="13.89" length="90.00" shape="0.00,-100.00 0.00,-50.00 0.00,-10.00"/>
    </edge>
    <edge id="north_in" from="N" to="1" priority="1">
        <lane id="north_in_0" index="0" speed="13.89" length="90.00" shape="0.00,100.00 0.00,10.00"/>
    </edge>
    <edge id="west_in" from="W" to="1" priority="1">
        <lane id="west_in_0" index="0" speed="13.89" length="90.00" shape="-100.00,0.00 -10.00,0.00"/>
    </edge>
    <edge id="east_in" from="E" to="1" priority="1">
        <lane id="east_in_0" index="0" speed="13.89" length="90.00" shape="100.00,0.00 10.00,0.00"/>
    </edge>
    <edge id="north_out" from="1" to="N" priority="1">
        <lane id="north_out_0" index="0" speed="13.89" length="90.00" shape="0.00,10.00 0.00,100.00"/>
    </edge>
    <edge id="south_out" from="1" to="S" priority="1">
        <lane id="south_out_0" index="0" speed="13.89" length="90.00" shape="0.00,-10.00 0.00,-100.00"/>
    </edge>
    <edge id="east_out" from="1" to="E" priority="1">
        <lane id="east_out_0" index="0" speed="13.89" length="90.00" shape="10.00,0.00 100.00,0.00"/>
    </edge>
    <edge id="west_out" from="1" to="W" priority="1">
        <lane id="west_out_0" index="0" speed="13.89" length="90.00" shape="-10.00,0.00 -100.00,0.00"/>
    </edge>
    <tlLogic id="1" type="static" programID="0" offset="0">
        <phase duration="42" state="GGGGGGGGG"/>
    </tlLogic>
    <connection from="south_in" to="north_out" fromLane="0" toLane="0" via=":1_0_0" tl="1" linkIndex="0" dir="s" state="O"/>
    <connection from="south_in" to="west_out" fromLane="0" toLane="0" via=":1_1_0" tl="1" linkIndex="1" dir="l" state="o"/>
    <connection from="north_in" to="south_out" fromLane="0" toLane="0" via=":1_2_0" tl="1" linkIndex="2" dir="s" state="O"/>
    <connection from="north_in" to="east_out" fromLane="0" toLane="0" via=":1_3_0" tl="1" linkIndex="3" dir="l" state="o"/>
    <connection from="west_in" to="east_out" fromLane="0" toLane="0" via=":1_4_0" tl="1" linkIndex="4" dir="s" state="O"/>
    <connection from="west_in" to="north_out" fromLane="0" toLane="0" via=":1_5_0" tl="1" linkIndex="5" state="o"/>
    <connection from="east_in" to="west_out" fromLane="0" toLane="0" via=":1_6_0" tl="1" linkIndex="6" dir="s" state="O"/>
    <connection from="east_in" to="south_out" fromLane="0" toLane="0" via=":1_7_0" tl="1" linkIndex="7" dir="l" state="o"/>
    <connection from=":1_w0" to=":1_c0" fromLane="0" toLane="0" tl="1" linkIndex="8" dir="s" state="o"/>
    <connection from="south_out" to="south_in" fromLane="0" toLane="0" dir="t" state="M"/>
</net>
`
