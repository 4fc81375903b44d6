package glottal

import (
	"github.com/RyanBlaney/sonido-gci/algorithms/temporal"
)

// ExtractCandidates returns one candidate per rising zero crossing of the
// resonator output. Power is read from the contour at start + i/sampleRate,
// where start is the region start time in seconds.
func ExtractCandidates(filtered []float64, c Contour, start float64, sampleRate int) ([]Candidate, error) {
	crossings := temporal.RisingCrossings(filtered)

	candidates := make([]Candidate, 0, len(crossings))
	for _, i := range crossings {
		t := start + float64(i)/float64(sampleRate)
		power := c.Power(t)
		if err := checkLevel("power", t, power); err != nil {
			return nil, err
		}
		candidates = append(candidates, Candidate{Index: i, Power: power})
	}

	return candidates, nil
}
