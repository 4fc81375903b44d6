package glottal

import (
	"github.com/RyanBlaney/sonido-gci/algorithms/common"
	"github.com/RyanBlaney/sonido-gci/contour"
)

// regionSpan is a voiced region widened by the frame margin and mapped onto
// sample indices of the full signal. endSample is inclusive.
type regionSpan struct {
	index       int
	region      contour.Region
	start       float64
	end         float64
	startSample int
	endSample   int
}

// expandRegion widens a region by margin seconds on both sides, clamping the
// start at zero.
func expandRegion(index int, r contour.Region, margin float64, sampleRate int) regionSpan {
	start := max(0, r.Start-margin)
	end := r.End + margin

	return regionSpan{
		index:       index,
		region:      r,
		start:       start,
		end:         end,
		startSample: common.SecondsToSample(start, sampleRate),
		endSample:   common.SecondsToSample(end, sampleRate),
	}
}

// midpoint is where the region's pitch is read
func (s regionSpan) midpoint() float64 {
	return (s.start + s.end) / 2
}

// slice returns the span's samples, truncated at the end of the signal.
// A span starting past the end yields nil.
func (s regionSpan) slice(signal []int) []int {
	if s.startSample >= len(signal) {
		return nil
	}
	return signal[s.startSample:min(s.endSample+1, len(signal))]
}
