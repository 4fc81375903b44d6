// Package contour serves an already-computed pitch/power contour: per-frame
// pitch in Hz (0 for unvoiced frames) and power, sampled on a uniform grid of
// frame centre times.
package contour

import (
	"fmt"

	"github.com/RyanBlaney/sonido-gci/algorithms/common"
)

// Region is a contiguous voiced interval in seconds
type Region struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the region length in seconds
func (r Region) Duration() float64 {
	return r.End - r.Start
}

// Table is a frame table with uniform spacing between frame centres
type Table struct {
	times     []float64
	pitch     []float64
	power     []float64
	frameStep float64
}

// New builds a table from parallel per-frame slices. Times must be strictly
// ascending; pitch and power must be finite and non-negative.
func New(times, pitch, power []float64) (*Table, error) {
	if len(times) != len(pitch) || len(times) != len(power) {
		return nil, fmt.Errorf("contour slices differ in length: %d times, %d pitch, %d power",
			len(times), len(pitch), len(power))
	}
	if len(times) < 2 {
		return nil, fmt.Errorf("contour needs at least 2 frames, got %d", len(times))
	}

	for i := range times {
		if !common.IsFinite(times[i]) {
			return nil, fmt.Errorf("frame %d: time %v is not finite", i, times[i])
		}
		if i > 0 && times[i] <= times[i-1] {
			return nil, fmt.Errorf("frame %d: time %v does not follow %v", i, times[i], times[i-1])
		}
		if !common.IsFinite(pitch[i]) || pitch[i] < 0 {
			return nil, fmt.Errorf("frame %d: invalid pitch %v", i, pitch[i])
		}
		if !common.IsFinite(power[i]) || power[i] < 0 {
			return nil, fmt.Errorf("frame %d: invalid power %v", i, power[i])
		}
	}

	return &Table{
		times:     times,
		pitch:     pitch,
		power:     power,
		frameStep: (times[len(times)-1] - times[0]) / float64(len(times)-1),
	}, nil
}

// Len returns the number of frames
func (t *Table) Len() int {
	return len(t.times)
}

// FrameStep returns the spacing between frame centres in seconds
func (t *Table) FrameStep() float64 {
	return t.frameStep
}

// Pitch returns the pitch of the frame containing time, or 0 outside the table
func (t *Table) Pitch(time float64) float64 {
	offset := time - t.times[0]
	if offset < 0 {
		return 0
	}
	index := int(offset / t.frameStep)
	if index >= len(t.pitch) {
		return 0
	}
	return t.pitch[index]
}

// Power linearly interpolates power between frame centres. The last frame's
// power holds up to the end of its frame; before the first frame centre and
// beyond the last frame the power is 0.
func (t *Table) Power(time float64) float64 {
	offset := time - t.times[0]
	if offset < 0 {
		return 0
	}

	position := offset / t.frameStep
	index := int(position)
	last := len(t.power) - 1
	if index >= last {
		if index == last {
			return t.power[last]
		}
		return 0
	}

	fraction := position - float64(index)
	return t.power[index]*(1.0-fraction) + t.power[index+1]*fraction
}

// VoicedRegions returns the contiguous runs of non-zero pitch, from the
// centre time of their first frame to that of their last frame.
func (t *Table) VoicedRegions() []Region {
	regions := []Region{}
	start := -1

	for i, p := range t.pitch {
		switch {
		case p > 0 && start < 0:
			start = i
		case p == 0 && start >= 0:
			regions = append(regions, Region{Start: t.times[start], End: t.times[i-1]})
			start = -1
		}
	}
	if start >= 0 {
		regions = append(regions, Region{Start: t.times[start], End: t.times[len(t.times)-1]})
	}

	return regions
}

// MeanVoicedPitch returns the average pitch over voiced frames, or 0 when
// nothing is voiced.
func (t *Table) MeanVoicedPitch() float64 {
	voiced := make([]float64, 0, len(t.pitch))
	for _, p := range t.pitch {
		if p > 0 {
			voiced = append(voiced, p)
		}
	}
	return common.Mean(voiced...)
}
