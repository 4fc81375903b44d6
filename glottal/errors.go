package glottal

import (
	"errors"
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-gci/algorithms/common"
	"github.com/RyanBlaney/sonido-gci/contour"
)

// ErrInvalidContour is matched by every error reporting malformed contour
// output (NaN, infinite or negative values, or badly ordered regions).
var ErrInvalidContour = errors.New("invalid contour input")

// InvalidContourError describes one malformed value read from the contour
type InvalidContourError struct {
	Quantity string  // "pitch", "power" or "region"
	Time     float64 // time queried, or region index for regions
	Value    float64
	Reason   string
}

func (e *InvalidContourError) Error() string {
	if e.Quantity == "region" {
		return fmt.Sprintf("%v: region %d: %s", ErrInvalidContour, int(e.Time), e.Reason)
	}
	return fmt.Sprintf("%v: %s %v at %.4fs: %s", ErrInvalidContour, e.Quantity, e.Value, e.Time, e.Reason)
}

func (e *InvalidContourError) Unwrap() error {
	return ErrInvalidContour
}

// checkLevel validates a pitch or power reading
func checkLevel(quantity string, t, v float64) error {
	switch {
	case math.IsNaN(v):
		return &InvalidContourError{Quantity: quantity, Time: t, Value: v, Reason: "not a number"}
	case math.IsInf(v, 0):
		return &InvalidContourError{Quantity: quantity, Time: t, Value: v, Reason: "infinite"}
	case v < 0:
		return &InvalidContourError{Quantity: quantity, Time: t, Value: v, Reason: "negative"}
	}
	return nil
}

// checkRegions validates that regions are finite, non-negative, non-inverted,
// ascending and non-overlapping.
func checkRegions(regions []contour.Region) error {
	for i, r := range regions {
		bad := func(reason string) error {
			return &InvalidContourError{Quantity: "region", Time: float64(i), Reason: reason}
		}

		switch {
		case !common.IsFinite(r.Start) || !common.IsFinite(r.End):
			return bad(fmt.Sprintf("non-finite bounds (%v, %v)", r.Start, r.End))
		case r.Start < 0:
			return bad(fmt.Sprintf("negative start %v", r.Start))
		case r.End < r.Start:
			return bad(fmt.Sprintf("end %v before start %v", r.End, r.Start))
		case i > 0 && r.Start < regions[i-1].End:
			return bad(fmt.Sprintf("start %v overlaps previous region ending at %v", r.Start, regions[i-1].End))
		}
	}
	return nil
}
