package glottal

import (
	"fmt"

	"github.com/RyanBlaney/sonido-gci/algorithms/stats"
)

// SelectMarks settles ambiguous choices by picking, per choice, the position
// that minimises the sum of squared second differences over the whole
// sequence. Powers are carried over unchanged.
func SelectMarks(choices []Choice) ([]Instant, error) {
	options := make([][]int, len(choices))
	for i, c := range choices {
		options[i] = c.Positions()
	}

	result, err := stats.SmoothestPath(options)
	if err != nil {
		return nil, fmt.Errorf("failed to select marks: %w", err)
	}

	instants := make([]Instant, len(choices))
	for i, c := range choices {
		instants[i] = Instant{Index: result.Path[i], Power: c.Power}
	}

	return instants, nil
}

// strictlyIncreasing folds instants that do not advance past their
// predecessor into it, keeping the larger power.
func strictlyIncreasing(instants []Instant) []Instant {
	if len(instants) == 0 {
		return instants
	}

	out := instants[:1]
	for _, in := range instants[1:] {
		last := &out[len(out)-1]
		if in.Index <= last.Index {
			last.Power = max(last.Power, in.Power)
			continue
		}
		out = append(out, in)
	}
	return out
}

// withSentinels brackets at least two instants with zero-power markers one
// period beyond each end.
func withSentinels(instants []Instant) []Instant {
	n := len(instants)
	if n < 2 {
		return instants
	}

	out := make([]Instant, 0, n+2)
	out = append(out, Instant{Index: 2*instants[0].Index - instants[1].Index})
	out = append(out, instants...)
	out = append(out, Instant{Index: 2*instants[n-1].Index - instants[n-2].Index})
	return out
}
