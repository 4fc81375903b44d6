package common

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Small numeric helpers shared by the analysis stages

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data ...float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// Lerp performs linear interpolation between two values
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// LerpIndex interpolates between two sample indices and rounds to the
// nearest sample.
func LerpIndex(a, b int, t float64) int {
	return int(math.Round(Lerp(float64(a), float64(b), t)))
}

// IsFinite reports whether v is neither NaN nor infinite
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// SecondsToSample converts a time to the nearest sample index
func SecondsToSample(seconds float64, sampleRate int) int {
	return int(math.Floor(seconds*float64(sampleRate) + 0.5))
}
