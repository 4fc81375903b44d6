package glottal

import (
	"github.com/RyanBlaney/sonido-gci/algorithms/temporal"
)

// RefineCandidates maps region-relative candidates onto rising zero crossings
// of the raw signal. offset is the region's first sample in signal.
//
// A candidate already sitting on a crossing is kept. Otherwise the nearest
// crossing within radius samples is searched on each side: a single hit
// resolves the candidate, hits on both sides leave it ambiguous, and no hit
// keeps the unrefined position. Zero-power candidates are dropped, since
// zero power is reserved for sentinels.
func RefineCandidates(signal []int, candidates []Candidate, offset, radius int) []Choice {
	choices := make([]Choice, 0, len(candidates))

	for _, c := range candidates {
		if c.Power == 0 {
			continue
		}

		pos := c.Index + offset
		if temporal.IsRisingCrossing(signal, pos) {
			choices = append(choices, Resolved(pos, c.Power))
			continue
		}

		search := temporal.NearestRisingCrossings(signal, pos, radius)
		switch {
		case search.HasBackward && search.HasForward:
			choices = append(choices, Ambiguous(search.Backward, search.Forward, c.Power))
		case search.HasForward:
			choices = append(choices, Resolved(search.Forward, c.Power))
		case search.HasBackward:
			choices = append(choices, Resolved(search.Backward, c.Power))
		default:
			choices = append(choices, Resolved(pos, c.Power))
		}
	}

	return choices
}
