package utdf2sumo

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Phase is one combination of concurrent ring positions
type Phase struct {
	Rings []string // Phase identifier per ring, in ring order
	Next  []int
}

func (phase Phase) String() string {
	return "(" + strings.Join(phase.Rings, ",") + ")"
}

// SequencePhases enumerates reachable combinations of ring positions barrier by barrier
//
// Within barrier every ring starts at its first phase; each step advances exactly one ring.
// Combinations are visited breadth-first, so indices are stable for the same table.
// The final combination of a barrier leads to the first combination of the next barrier,
// the final combination of the last barrier wraps to phase 0
func SequencePhases(table RingBarrierTable) ([]Phase, error) {
	if len(table.Barriers) == 0 {
		return nil, errors.Wrap(ErrMalformedRingBarrier, "empty ring-barrier table")
	}
	phases := []Phase{}
	for b, barrier := range table.Barriers {
		if len(barrier.Rings) == 0 {
			return nil, errors.Wrapf(ErrMalformedRingBarrier, "barrier %d has no rings", barrier.ID)
		}
		for _, ring := range barrier.Rings {
			if len(ring.Phases) == 0 {
				return nil, errors.Wrapf(ErrMalformedRingBarrier, "barrier %d ring %d has no phases", barrier.ID, ring.ID)
			}
		}
		offset := len(phases)
		lastBarrier := b == len(table.Barriers)-1

		queue := [][]int{make([]int, len(barrier.Rings))}
		indexOf := map[string]int{positionKey(queue[0]): 0}
		barrierPhases := []Phase{}
		leaves := []int{}
		for read := 0; read < len(queue); read++ {
			current := queue[read]
			next := []int{}
			for ringIdx, ring := range barrier.Rings {
				if current[ringIdx]+1 >= len(ring.Phases) {
					continue
				}
				advanced := append([]int(nil), current...)
				advanced[ringIdx]++
				key := positionKey(advanced)
				if existing, ok := indexOf[key]; ok {
					next = append(next, offset+existing)
					continue
				}
				indexOf[key] = len(queue)
				next = append(next, offset+len(queue))
				queue = append(queue, advanced)
			}
			if len(next) == 0 {
				leaves = append(leaves, read)
			}
			names := make([]string, len(barrier.Rings))
			for ringIdx, ring := range barrier.Rings {
				names[ringIdx] = ring.Phases[current[ringIdx]]
			}
			barrierPhases = append(barrierPhases, Phase{Rings: names, Next: next})
		}
		following := offset + len(barrierPhases)
		if lastBarrier {
			following = 0
		}
		for _, leaf := range leaves {
			barrierPhases[leaf].Next = []int{following}
		}
		phases = append(phases, barrierPhases...)
	}
	return phases, nil
}

func positionKey(pos []int) string {
	return fmt.Sprint(pos)
}

// isPedestrianExclusive reports if any single-ring phase protects pedestrians only
func isPedestrianExclusive(phases []Phase, timing *SignalTiming) bool {
	for _, phase := range phases {
		if len(phase.Rings) != 1 {
			continue
		}
		pt, ok := timing.Phase(phase.Rings[0])
		if !ok {
			continue
		}
		if len(pt.Protected) == 1 && pt.Protected[0] == MOVEMENT_PED {
			return true
		}
	}
	return false
}
