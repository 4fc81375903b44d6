package stats

import (
	"errors"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// ErrEmptyInput is returned by estimators that need at least one value.
var ErrEmptyInput = errors.New("stats: empty input")

// WeightedValue pairs a value with a non-negative weight
type WeightedValue struct {
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
}

// WeightedMedian returns the weighted median of the values: after a stable
// ascending sort by value, the first value at which the cumulative weight
// strictly exceeds half of the total weight. When that never happens (for
// example all weights are zero) the largest value is returned.
//
// The comparison is strict, so with equal weights on two values the larger
// one wins: [(10, 1), (20, 1)] reaches exactly half after 10 and returns 20.
//
// The input slice is not modified.
func WeightedMedian(values []WeightedValue) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptyInput
	}

	sorted := slices.Clone(values)
	slices.SortStableFunc(sorted, func(a, b WeightedValue) int {
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		}
		return 0
	})

	weights := make([]float64, len(sorted))
	for i, v := range sorted {
		weights[i] = v.Weight
	}
	half := floats.Sum(weights) / 2

	cumulative := 0.0
	for _, v := range sorted {
		cumulative += v.Weight
		if cumulative > half {
			return v.Value, nil
		}
	}

	return sorted[len(sorted)-1].Value, nil
}
