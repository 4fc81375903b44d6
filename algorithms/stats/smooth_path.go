package stats

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// SmoothPathResult contains the chosen path through a sequence of options
type SmoothPathResult struct {
	Path    []int   `json:"path"`    // Chosen value per step
	Choices []int   `json:"choices"` // Index of the chosen option per step
	Cost    float64 `json:"cost"`    // Sum of squared second differences
}

// pathState is one DP cell: a value chosen at a step, the cheapest way of
// reaching it, and the cell it was reached from in the previous layer.
type pathState struct {
	option int
	value  int
	cost   float64
	pred   int
}

// SmoothestPath picks one value per step from options so that the sum of
// squared second differences of the picked sequence is minimal, i.e. the
// spacing between consecutive values changes as little as possible.
//
// The first two steps are seeded with every combination at zero cost. From
// the third step on, each option keeps only its cheapest predecessor; ties
// go to the predecessor seen first. The cheapest final state (first on ties)
// is backtracked to recover the path.
func SmoothestPath(options [][]int) (*SmoothPathResult, error) {
	for i, opts := range options {
		if len(opts) == 0 {
			return nil, fmt.Errorf("step %d has no options", i)
		}
	}

	result := &SmoothPathResult{
		Path:    make([]int, len(options)),
		Choices: make([]int, len(options)),
	}
	if len(options) == 0 {
		return result, nil
	}

	layers := make([][]pathState, len(options))

	layers[0] = make([]pathState, len(options[0]))
	for k, v := range options[0] {
		layers[0][k] = pathState{option: k, value: v, pred: -1}
	}

	if len(options) > 1 {
		for k, v := range options[1] {
			for p := range layers[0] {
				layers[1] = append(layers[1], pathState{option: k, value: v, pred: p})
			}
		}
	}

	for i := 2; i < len(options); i++ {
		prevLayer := layers[i-1]
		layers[i] = make([]pathState, len(options[i]))

		for k, m := range options[i] {
			best := pathState{option: k, value: m, pred: -1}
			for p, s := range prevLayer {
				before := layers[i-2][s.pred].value
				change := float64((s.value - before) - (m - s.value))
				cost := change*change + s.cost
				if best.pred < 0 || cost < best.cost {
					best.cost = cost
					best.pred = p
				}
			}
			layers[i][k] = best
		}
	}

	last := layers[len(layers)-1]
	costs := make([]float64, len(last))
	for k, s := range last {
		costs[k] = s.cost
	}
	idx := floats.MinIdx(costs)
	result.Cost = costs[idx]

	for i := len(layers) - 1; i >= 0; i-- {
		s := layers[i][idx]
		result.Path[i] = s.value
		result.Choices[i] = s.option
		idx = s.pred
	}

	return result, nil
}
