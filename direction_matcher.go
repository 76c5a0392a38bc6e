package utdf2sumo

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	candidatesDeltaXNegative = newBoundSet(BOUND_SB, BOUND_SW, BOUND_WB, BOUND_NW, BOUND_NB)
	candidatesDeltaXPositive = newBoundSet(BOUND_NB, BOUND_NE, BOUND_EB, BOUND_SE, BOUND_SB)
	candidatesDeltaXZero     = newBoundSet(BOUND_NB, BOUND_SB)
	candidatesDeltaYNegative = newBoundSet(BOUND_EB, BOUND_SE, BOUND_SB, BOUND_SW, BOUND_WB)
	candidatesDeltaYPositive = newBoundSet(BOUND_WB, BOUND_NW, BOUND_NB, BOUND_NE, BOUND_EB)
	candidatesDeltaYZero     = newBoundSet(BOUND_EB, BOUND_WB)
	candidatesSteep          = newBoundSet(BOUND_SE, BOUND_SB, BOUND_SW, BOUND_NE, BOUND_NB, BOUND_NW)
	candidatesFlat           = newBoundSet(BOUND_SW, BOUND_WB, BOUND_NE, BOUND_NW, BOUND_EB, BOUND_SE)

	// tieBreakOrder is order in which still unassigned bounds are given to the steepest edge
	tieBreakOrder = []CompassBound{BOUND_SB, BOUND_NB, BOUND_SW, BOUND_NE, BOUND_SE, BOUND_NW, BOUND_EB, BOUND_WB}
)

// boundCandidates filters active bounds by signs of heading and steepness
func boundCandidates(geom ApproachGeometry, active boundSet) boundSet {
	candidates := active
	switch {
	case geom.DX < 0:
		candidates = candidates.intersect(candidatesDeltaXNegative)
	case geom.DX > 0:
		candidates = candidates.intersect(candidatesDeltaXPositive)
	default:
		candidates = candidates.intersect(candidatesDeltaXZero)
	}
	switch {
	case geom.DY < 0:
		candidates = candidates.intersect(candidatesDeltaYNegative)
	case geom.DY > 0:
		candidates = candidates.intersect(candidatesDeltaYPositive)
	default:
		candidates = candidates.intersect(candidatesDeltaYZero)
	}
	switch abs := geom.AbsSlope(); {
	case abs < 1:
		candidates = candidates.intersect(candidatesFlat)
	case abs > 1:
		candidates = candidates.intersect(candidatesSteep)
	}
	return candidates
}

type pendingEdge struct {
	edge       ApproachEdge
	candidates boundSet
}

// MatchDirections maps every inbound edge onto one of active compass bounds
//
// Edges are processed in given order: it breaks ties between equally steep edges.
// Returned mapping is injective and covers every given edge, otherwise error is returned
//
func MatchDirections(edges []ApproachEdge, active []CompassBound) (map[string]CompassBound, error) {
	activeBounds := newBoundSet(active...)
	assigned := boundSet(0)
	mapping := make(map[string]CompassBound, len(edges))

	remaining := make([]*pendingEdge, 0, len(edges))
	for _, edge := range edges {
		candidates := boundCandidates(edge.Geometry, activeBounds)
		if candidates.len() == 0 {
			return nil, errors.Wrapf(ErrUnresolvableEdge, "edge '%s' (%s), active bounds %s", edge.ID, edge.Geometry, activeBounds)
		}
		if bound, ok := candidates.single(); ok {
			if assigned.has(bound) {
				return nil, errors.Wrapf(ErrDuplicateBound, "edge '%s' matches %s", edge.ID, bound)
			}
			assigned = assigned.add(bound)
			mapping[edge.ID] = bound
			continue
		}
		remaining = append(remaining, &pendingEdge{edge: edge, candidates: candidates})
	}

	// Narrow down candidates by already assigned bounds until nothing changes
	for updated := true; updated && len(remaining) > 0; {
		updated = false
		next := make([]*pendingEdge, 0, len(remaining))
		for _, item := range remaining {
			item.candidates = item.candidates.subtract(assigned)
			if bound, ok := item.candidates.single(); ok {
				assigned = assigned.add(bound)
				mapping[item.edge.ID] = bound
				updated = true
				continue
			}
			next = append(next, item)
		}
		remaining = next
	}

	// Several edges share the same candidates: the steepest one takes the bound
	for _, bound := range tieBreakOrder {
		if len(remaining) == 0 {
			break
		}
		if !activeBounds.has(bound) || assigned.has(bound) {
			continue
		}
		pick := -1
		maxAbsSlope := -1.0
		for i, item := range remaining {
			if !item.candidates.subtract(assigned).has(bound) {
				continue
			}
			if absSlope := item.edge.Geometry.AbsSlope(); absSlope > maxAbsSlope {
				maxAbsSlope = absSlope
				pick = i
			}
		}
		if pick < 0 {
			continue
		}
		assigned = assigned.add(bound)
		mapping[remaining[pick].edge.ID] = bound
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}

	if len(remaining) > 0 {
		left := make([]string, len(remaining))
		for i, item := range remaining {
			left[i] = item.edge.ID + item.candidates.String()
		}
		return nil, errors.Wrapf(ErrUnresolvedTie, "edges left: %s", strings.Join(left, ", "))
	}
	return mapping, nil
}
