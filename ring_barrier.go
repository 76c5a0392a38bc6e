package utdf2sumo

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// RingPosition is decoded BRP code of a phase: barrier, ring and order of the phase inside the ring
type RingPosition struct {
	Barrier int
	Ring    int
	Order   int
}

func (pos RingPosition) String() string {
	return fmt.Sprintf("%d%d%d", pos.Barrier, pos.Ring, pos.Order)
}

func (pos RingPosition) less(other RingPosition) bool {
	if pos.Barrier != other.Barrier {
		return pos.Barrier < other.Barrier
	}
	if pos.Ring != other.Ring {
		return pos.Ring < other.Ring
	}
	return pos.Order < other.Order
}

// ParseRingPosition decodes BRP code: first digit is barrier, second digit is ring, remaining digits (optional) are order
func ParseRingPosition(brp string) (RingPosition, error) {
	brp = strings.TrimSpace(brp)
	// Spreadsheets tend to export codes as floats
	brp = strings.TrimSuffix(brp, ".0")
	if len(brp) < 2 {
		return RingPosition{}, errors.Wrapf(ErrMalformedRingBarrier, "BRP code '%s' is too short", brp)
	}
	for _, r := range brp {
		if r < '0' || r > '9' {
			return RingPosition{}, errors.Wrapf(ErrMalformedRingBarrier, "BRP code '%s' is not numeric", brp)
		}
	}
	pos := RingPosition{
		Barrier: int(brp[0] - '0'),
		Ring:    int(brp[1] - '0'),
	}
	if len(brp) > 2 {
		order, err := strconv.Atoi(brp[2:])
		if err != nil {
			return RingPosition{}, errors.Wrapf(ErrMalformedRingBarrier, "BRP code '%s' has bad order", brp)
		}
		pos.Order = order
	}
	return pos, nil
}

// Ring is ordered list of phase identifiers
type Ring struct {
	ID     int
	Phases []string
}

// Barrier groups rings which change concurrently
type Barrier struct {
	ID    int
	Rings []Ring
}

// RingBarrierTable holds barriers in the order controller serves them
type RingBarrierTable struct {
	Barriers []Barrier
}

// NewRingBarrierTable groups positioned phases by barrier and ring. Phases without position are ignored
func NewRingBarrierTable(phases []*PhaseTiming) (RingBarrierTable, error) {
	positioned := make([]*PhaseTiming, 0, len(phases))
	seen := make(map[RingPosition]string)
	for _, phase := range phases {
		if !phase.HasPosition {
			continue
		}
		if other, ok := seen[phase.Position]; ok {
			return RingBarrierTable{}, errors.Wrapf(ErrMalformedRingBarrier, "phases '%s' and '%s' share BRP %s", other, phase.ID, phase.Position)
		}
		seen[phase.Position] = phase.ID
		positioned = append(positioned, phase)
	}
	if len(positioned) == 0 {
		return RingBarrierTable{}, errors.Wrap(ErrMalformedRingBarrier, "no phase has BRP position")
	}
	sort.SliceStable(positioned, func(i, j int) bool {
		return positioned[i].Position.less(positioned[j].Position)
	})

	table := RingBarrierTable{}
	for _, phase := range positioned {
		pos := phase.Position
		if len(table.Barriers) == 0 || table.Barriers[len(table.Barriers)-1].ID != pos.Barrier {
			table.Barriers = append(table.Barriers, Barrier{ID: pos.Barrier})
		}
		barrier := &table.Barriers[len(table.Barriers)-1]
		if len(barrier.Rings) == 0 || barrier.Rings[len(barrier.Rings)-1].ID != pos.Ring {
			barrier.Rings = append(barrier.Rings, Ring{ID: pos.Ring})
		}
		ring := &barrier.Rings[len(barrier.Rings)-1]
		ring.Phases = append(ring.Phases, phase.ID)
	}
	return table, nil
}
