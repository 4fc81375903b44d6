package glottal

import (
	"math"
	"slices"

	"github.com/RyanBlaney/sonido-gci/algorithms/common"
	"github.com/RyanBlaney/sonido-gci/algorithms/stats"
)

// Corrections counts the edits made by CorrectOctaveErrors
type Corrections struct {
	Merged   int `json:"merged"`
	Inserted int `json:"inserted"`
}

// CorrectOctaveErrors walks the candidates once and repairs periods that
// jump by more than cfg.MismatchRatio relative to the previous period.
//
// At a jump the power-weighted median of the surrounding periods is taken as
// the local period. A spurious candidate is merged away when dropping either
// side of the current period brings the spacing within cfg.MergeFraction of
// that median; otherwise an oversized period gets one midpoint (above
// cfg.SplitRatio) or two third-points (above cfg.TripleSplitRatio).
//
// Edits are visible to the rest of the walk: after a merge or an insertion
// the current period is re-measured before moving on. The input slice may be
// modified; use the returned slice.
func CorrectOctaveErrors(candidates []Candidate, cfg *Config) ([]Candidate, Corrections) {
	var tally Corrections
	if len(candidates) < 2 {
		return candidates, tally
	}

	prevLength := candidates[1].Index - candidates[0].Index
	for i := 2; i < len(candidates); i++ {
		length := candidates[i].Index - candidates[i-1].Index

		if periodMismatch(prevLength, length, cfg.MismatchRatio) {
			median, ok := localPeriod(candidates, i, cfg.WindowRadius)
			if ok {
				mergeLimit := median * cfg.MergeFraction

				dropPrev := math.Abs(median - float64(candidates[i].Index-candidates[i-2].Index))
				dropCur := 0.0
				if i+1 < len(candidates) {
					dropCur = math.Abs(median - float64(candidates[i+1].Index-candidates[i-1].Index))
				}

				switch {
				case dropPrev < mergeLimit || dropCur < mergeLimit:
					power := math.Max(candidates[i-1].Power, candidates[i].Power)
					if dropPrev <= dropCur {
						candidates[i].Power = power
						candidates = slices.Delete(candidates, i-1, i)
					} else {
						candidates[i-1].Power = power
						candidates = slices.Delete(candidates, i, i+1)
					}
					i--
					length = candidates[i].Index - candidates[i-1].Index
					tally.Merged++

				case float64(length) > median*cfg.SplitRatio:
					fractions := []float64{0.5}
					if float64(length) > median*cfg.TripleSplitRatio {
						fractions = []float64{1.0 / 3.0, 2.0 / 3.0}
					}
					inserted := interpolateCandidates(candidates[i-1], candidates[i], fractions)
					candidates = slices.Insert(candidates, i, inserted...)
					length = candidates[i].Index - candidates[i-1].Index
					tally.Inserted += len(inserted)
				}
			}
		}

		prevLength = length
	}

	return candidates, tally
}

// periodMismatch reports whether two adjacent periods differ by more than ratio
func periodMismatch(prev, cur int, ratio float64) bool {
	p, c := float64(prev), float64(cur)
	return p > ratio*c || p*ratio < c
}

// localPeriod returns the weighted median of the positive periods ending at
// candidates i-radius through i+radius, each weighted by the mean power of
// its two endpoints.
func localPeriod(candidates []Candidate, i, radius int) (float64, bool) {
	lo := max(1, i-radius)
	hi := min(len(candidates)-1, i+radius)

	periods := make([]stats.WeightedValue, 0, hi-lo+1)
	for k := lo; k <= hi; k++ {
		period := candidates[k].Index - candidates[k-1].Index
		if period <= 0 {
			continue
		}
		periods = append(periods, stats.WeightedValue{
			Value:  float64(period),
			Weight: common.Mean(candidates[k-1].Power, candidates[k].Power),
		})
	}

	median, err := stats.WeightedMedian(periods)
	if err != nil {
		return 0, false
	}
	return median, true
}

// interpolateCandidates places candidates at the given fractions between a
// and b, interpolating position and power linearly.
func interpolateCandidates(a, b Candidate, fractions []float64) []Candidate {
	out := make([]Candidate, len(fractions))
	for j, f := range fractions {
		out[j] = Candidate{
			Index: common.LerpIndex(a.Index, b.Index, f),
			Power: common.Lerp(a.Power, b.Power, f),
		}
	}
	return out
}
