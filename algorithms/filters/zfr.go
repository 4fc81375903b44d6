package filters

import (
	"errors"
	"math"
	"slices"
)

// ErrDegenerateWindow is returned when the pitch estimate cannot produce a
// usable mean-removal window (pitch <= 0 or a window that rounds to zero).
var ErrDegenerateWindow = errors.New("zfr: degenerate mean-removal window")

// ZFR implements a zero-frequency resonator, which turns the impulse-like
// excitation at glottal closure into rising zero crossings.
//
// References:
//   - K.S.R. Murty, B. Yegnanarayana, "Epoch Extraction From Speech Signals",
//     IEEE Trans. Audio, Speech, and Language Processing, 16(8), 2008
//
// The filter runs in three stages:
// 1. First difference x[n] = s[n] - s[n-1], removing any DC offset
// 2. Two cascaded zero-frequency resonators y[n] = x[n] + 2y[n-1] - y[n-2]
// 3. Repeated removal of a centred running mean roughly 1.5 pitch periods wide
//
// Stages 1 and 2 are exact integer arithmetic; the resonators grow
// polynomially, so int64 holds a few seconds of 16-bit audio but not minutes.
type ZFR struct {
	sampleRate    int
	windowPeriods float64 // mean-removal window in pitch periods
	passes        int     // number of mean-removal passes
}

// NewZFR creates a ZFR filter with the standard 1.5-period window and two
// mean-removal passes.
func NewZFR(sampleRate int) *ZFR {
	return NewZFRWithParams(sampleRate, 1.5, 2)
}

// NewZFRWithParams creates a ZFR filter with a custom window width (in pitch
// periods) and number of mean-removal passes.
func NewZFRWithParams(sampleRate int, windowPeriods float64, passes int) *ZFR {
	return &ZFR{
		sampleRate:    sampleRate,
		windowPeriods: windowPeriods,
		passes:        passes,
	}
}

// WindowSize returns the mean-removal window length in samples for a pitch
// in Hz, or 0 when no window can be formed.
func (z *ZFR) WindowSize(pitch float64) int {
	if pitch <= 0 || math.IsNaN(pitch) || math.IsInf(pitch, 0) {
		return 0
	}
	return int(math.Round(z.windowPeriods * float64(z.sampleRate) / pitch))
}

// Process filters a signal using a pitch estimate for the whole buffer.
// The output is one sample shorter than the input: output index j is driven
// by the difference s[j+1] - s[j], so an impulse at input index n first shows
// up at output index n-1.
func (z *ZFR) Process(signal []int, pitch float64) ([]float64, error) {
	window := z.WindowSize(pitch)
	if window <= 0 {
		return nil, ErrDegenerateWindow
	}

	// resonator seeding needs two difference samples
	if len(signal) < 3 {
		return []float64{}, nil
	}

	xs := make([]int64, len(signal)-1)
	for i := 1; i < len(signal); i++ {
		xs[i-1] = int64(signal[i]) - int64(signal[i-1])
	}

	resonate(xs)
	resonate(xs)

	output := make([]float64, len(xs))
	for i, x := range xs {
		output[i] = float64(x)
	}

	for range z.passes {
		output = removeRunningMean(output, window)
	}

	return output, nil
}

// resonate applies y[n] = x[n] + 2y[n-1] - y[n-2] in place, seeded with the
// first two input samples.
func resonate(xs []int64) {
	if len(xs) < 2 {
		return
	}

	ym1, ym2 := xs[1], xs[0]
	for i := 2; i < len(xs); i++ {
		y := xs[i] + 2*ym1 - ym2
		ym2, ym1 = ym1, y
		xs[i] = y
	}
}

// removeRunningMean subtracts a centred running mean of the given width.
// The sum is updated incrementally; at both edges the window stops sliding
// and the nearest full window is reused.
func removeRunningMean(xs []float64, window int) []float64 {
	half := window / 2

	sum := 0.0
	for _, x := range xs[:min(window, len(xs))] {
		sum += x
	}

	filtered := slices.Clone(xs)
	for i := half; i < len(xs)+half; i++ {
		filtered[i-half] -= sum / float64(window)
		if i >= window && i < len(xs) {
			sum += xs[i] - xs[i-window]
		}
	}

	return filtered
}
