// Package glottal locates glottal closure instants (GCIs) in voiced speech.
//
// For every voiced region reported by a pitch contour the signal is passed
// through a zero-frequency resonator, whose rising zero crossings give one
// candidate per pitch period. Candidates are corrected for octave errors,
// snapped back onto zero crossings of the raw waveform, disambiguated with a
// smoothness-minimising dynamic program and finally stitched together with
// zero-power sentinels marking each region's edges.
package glottal

import "github.com/RyanBlaney/sonido-gci/contour"

// Contour is the pitch/power contour the finder consumes. Times are in
// seconds; pitch is in Hz with 0 meaning unvoiced.
type Contour interface {
	Pitch(t float64) float64
	Power(t float64) float64
	VoicedRegions() []contour.Region
}

// Instant is a located glottal closure: an absolute sample index and the
// contour power at that point. Zero power marks a synthetic region-edge
// sentinel rather than a detected closure.
type Instant struct {
	Index int     `json:"index"`
	Power float64 `json:"power"`
}

// IsSentinel reports whether the instant is a synthetic boundary marker
func (in Instant) IsSentinel() bool {
	return in.Power == 0
}

// Candidate is a zero crossing of the resonator output. Index is relative to
// the start of the region's sub-signal.
type Candidate struct {
	Index int     `json:"index"`
	Power float64 `json:"power"`
}

// Choice is a candidate mapped back onto the raw waveform. It is either
// resolved to a single absolute position, or ambiguous between the nearest
// crossing before (Prior) and after (Next) the estimate.
type Choice struct {
	Prior     int     `json:"prior"`
	Next      int     `json:"next,omitempty"`
	Power     float64 `json:"power"`
	ambiguous bool
}

// Resolved returns a choice with a single position
func Resolved(position int, power float64) Choice {
	return Choice{Prior: position, Power: power}
}

// Ambiguous returns a choice between two positions sharing one power
func Ambiguous(prior, next int, power float64) Choice {
	return Choice{Prior: prior, Next: next, Power: power, ambiguous: true}
}

// IsAmbiguous reports whether the choice still has two candidate positions
func (c Choice) IsAmbiguous() bool {
	return c.ambiguous
}

// Positions lists the candidate positions, prior first
func (c Choice) Positions() []int {
	if c.ambiguous {
		return []int{c.Prior, c.Next}
	}
	return []int{c.Prior}
}
