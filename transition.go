package utdf2sumo

import (
	"fmt"
)

// BuildTransitions inserts clearance phases between phases whose green states are interrupted
//
// For every (phase, successor) pair where some link goes from green to red, a yellow phase is inserted.
// When the pair has no link green in both, the yellow phase is followed by an all-red phase.
// Clearance phases are appended after the given ones; given phases are not modified
func BuildTransitions(phases []SignalPhase) []SignalPhase {
	result := make([]SignalPhase, len(phases))
	copy(result, phases)
	transitions := []SignalPhase{}
	offset := len(phases)
	for i := range phases {
		current := phases[i]
		newNext := make([]int, 0, len(current.Next))
		for _, nextIdx := range current.Next {
			successor := phases[nextIdx]
			yellow, allRed, hasDiff, needYellow, commonGreen := clearanceStates(current.State, successor.State)
			if !hasDiff || !needYellow {
				newNext = append(newNext, nextIdx)
				continue
			}
			newNext = append(newNext, offset)
			name := fmt.Sprintf("%s-%s", current.Name, successor.Name)
			yellowPhase := SignalPhase{
				Name:     name + "-Y",
				Kind:     PHASE_YELLOW,
				State:    yellow,
				MinDur:   current.Yellow,
				MaxDur:   current.Yellow,
				Next:     []int{nextIdx},
				PedStart: current.PedStart,
			}
			if commonGreen {
				transitions = append(transitions, yellowPhase)
				offset++
				continue
			}
			yellowPhase.Next = []int{offset + 1}
			transitions = append(transitions, yellowPhase, SignalPhase{
				Name:     name + "-R",
				Kind:     PHASE_ALL_RED,
				State:    allRed,
				MinDur:   current.AllRed,
				MaxDur:   current.AllRed,
				Next:     []int{nextIdx},
				PedStart: current.PedStart,
			})
			offset += 2
		}
		result[i].Next = newNext
	}
	return append(result, transitions...)
}

// clearanceStates compares two state strings of equal length
func clearanceStates(current, next string) (yellow string, allRed string, hasDiff bool, needYellow bool, commonGreen bool) {
	y := []byte(current)
	r := make([]byte, len(current))
	for i := 0; i < len(current); i++ {
		r[i] = STATE_RED
		if current[i] == STATE_STOP {
			r[i] = STATE_STOP
		}
		if i >= len(next) {
			hasDiff = true
			continue
		}
		if current[i] != next[i] {
			hasDiff = true
		}
		if !isGreenState(current[i]) {
			continue
		}
		if next[i] == STATE_RED {
			needYellow = true
			y[i] = STATE_YELLOW
		}
		if isGreenState(next[i]) {
			commonGreen = true
		}
	}
	return string(y), string(r), hasDiff, needYellow, commonGreen
}
