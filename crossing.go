package utdf2sumo

// ResolveCrossing computes allowed movements and conflicting links for pedestrian connection
//
// Connection crossing edge (ToEdge) is looked up in crossings. Vehicle links starting on any crossed edge
// are source-side conflicts, links ending on a crossed edge are destination-side conflicts.
// Pedestrian link which does not lead onto a registered crossing is returned unchanged.
//
// Vehicle connections must already carry movement codes
func ResolveCrossing(ped Connection, conns []Connection, crossings map[string][]string, active MovementSet) Connection {
	crossedEdges, ok := crossings[ped.ToEdge]
	if !ok {
		return ped
	}
	conflicts := NewMovementSet()
	conflictFrom := []int{}
	conflictTo := []int{}
	for _, conn := range conns {
		if conn.Movement == MOVEMENT_NONE {
			continue
		}
		from, to := false, false
		for _, crossed := range crossedEdges {
			if conn.FromEdge == crossed {
				from = true
			}
			if conn.ToEdge == crossed {
				to = true
			}
		}
		if from {
			conflicts.Add(conn.Movement)
			conflictFrom = append(conflictFrom, conn.Index)
		}
		if to {
			conflicts.Add(conn.Movement)
			conflictTo = append(conflictTo, conn.Index)
		}
	}
	ped.PedAllowed = active.Difference(conflicts)
	ped.PedConflictsFrom = conflictFrom
	ped.PedConflictsTo = conflictTo
	ped.Movement = MOVEMENT_PED
	return ped
}

// resolveCrossings returns copy of connections where every internal link is processed by ResolveCrossing
func resolveCrossings(conns []Connection, crossings map[string][]string, active MovementSet) []Connection {
	result := cloneConnections(conns)
	for i, conn := range result {
		if !conn.IsInternal() {
			continue
		}
		result[i] = ResolveCrossing(conn, conns, crossings, active)
	}
	return result
}
