package utdf2sumo

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// Connection is one signal-controlled lane-to-lane link of a simulator junction
//
// Movement and pedestrian fields are empty right after reading network;
// annotation passes return annotated copies instead of mutating the junction
type Connection struct {
	Index    int
	FromEdge string
	ToEdge   string
	FromLane int
	ToLane   int
	Dir      string // Raw SUMO 'dir' letter: s, l, r, t, L, R
	State    string // Raw SUMO 'state' letter. 's' means stop sign

	Movement MovementCode

	/* Pedestrian crossing */
	PedAllowed       MovementSet
	PedConflictsFrom []int
	PedConflictsTo   []int
}

// IsInternal reports if connection starts on internal (walking area / crossing) edge
func (conn Connection) IsInternal() bool {
	return isInternalEdge(conn.FromEdge)
}

func (conn Connection) String() string {
	return fmt.Sprintf("%d: %s_%d -> %s_%d dir=%s movement=%s", conn.Index, conn.FromEdge, conn.FromLane, conn.ToEdge, conn.ToLane, conn.Dir, conn.Movement)
}

func isInternalEdge(edgeID string) bool {
	return strings.HasPrefix(edgeID, ":")
}

// ApproachEdge is inbound roadway of a junction
type ApproachEdge struct {
	ID       string
	Geom     orb.LineString // Shape of edge's first lane
	Geometry ApproachGeometry
}

// Junction is set of connections controlled by a single traffic light
type Junction struct {
	ID          string
	Connections []Connection // Sorted by link index; Connections[i].Index == i
	Approaches  map[string]ApproachEdge
	Crossings   map[string][]string // Crossing edge ID -> crossed edges
}

// InboundEdges returns unique non-internal source edges in order of first appearance
func (junction *Junction) InboundEdges() []string {
	seen := make(map[string]struct{})
	edges := []string{}
	for _, conn := range junction.Connections {
		if conn.IsInternal() {
			continue
		}
		if _, ok := seen[conn.FromEdge]; ok {
			continue
		}
		seen[conn.FromEdge] = struct{}{}
		edges = append(edges, conn.FromEdge)
	}
	return edges
}

// cloneConnections returns deep copy of connections
func cloneConnections(conns []Connection) []Connection {
	result := make([]Connection, len(conns))
	for i, conn := range conns {
		result[i] = conn
		if conn.PedAllowed != nil {
			result[i].PedAllowed = conn.PedAllowed.Union(nil)
		}
		if conn.PedConflictsFrom != nil {
			result[i].PedConflictsFrom = append([]int(nil), conn.PedConflictsFrom...)
		}
		if conn.PedConflictsTo != nil {
			result[i].PedConflictsTo = append([]int(nil), conn.PedConflictsTo...)
		}
	}
	return result
}

// assignMovements returns copy of connections with movement codes for vehicle links
//
// Inbound edge bound comes from mapping, turn suffix from SUMO 'dir'.
// Links with stop state get MOVEMENT_STOP
func assignMovements(conns []Connection, mapping map[string]CompassBound) ([]Connection, error) {
	result := cloneConnections(conns)
	for i := range result {
		conn := &result[i]
		if conn.IsInternal() {
			continue
		}
		if conn.State == "s" {
			conn.Movement = MOVEMENT_STOP
			continue
		}
		bound, ok := mapping[conn.FromEdge]
		if !ok {
			return nil, errors.Wrapf(ErrUnmappedApproach, "edge '%s' (link %d)", conn.FromEdge, conn.Index)
		}
		conn.Movement = NewMovementCode(bound, sumoTurnSuffix(conn.Dir))
	}
	return result, nil
}
