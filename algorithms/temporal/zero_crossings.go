package temporal

// RisingCrossings returns every index i > 0 where the signal steps from
// negative to non-negative (data[i-1] < 0 && data[i] >= 0), in ascending order.
func RisingCrossings(data []float64) []int {
	crossings := []int{}
	for i := 1; i < len(data); i++ {
		if data[i] >= 0 && data[i-1] < 0 {
			crossings = append(crossings, i)
		}
	}
	return crossings
}

// IsRisingCrossing reports whether the samples either side of pos straddle
// a rising zero crossing (signal[pos-1] < 0 && signal[pos+1] > 0).
// Positions without both neighbours never qualify.
func IsRisingCrossing(signal []int, pos int) bool {
	if pos < 1 || pos+1 >= len(signal) {
		return false
	}
	return signal[pos-1] < 0 && signal[pos+1] > 0
}

// CrossingSearch is the outcome of looking for the nearest rising crossing
// on each side of a position.
type CrossingSearch struct {
	Backward    int  `json:"backward"`
	Forward     int  `json:"forward"`
	HasBackward bool `json:"has_backward"`
	HasForward  bool `json:"has_forward"`
}

// NearestRisingCrossings scans up to radius samples forward from pos+1 and
// backward from pos-1 for the closest sample satisfying IsRisingCrossing.
// The position itself is not examined.
func NearestRisingCrossings(signal []int, pos, radius int) CrossingSearch {
	var search CrossingSearch

	for d := 1; d <= radius; d++ {
		if IsRisingCrossing(signal, pos+d) {
			search.Forward = pos + d
			search.HasForward = true
			break
		}
	}

	for d := 1; d <= radius; d++ {
		if IsRisingCrossing(signal, pos-d) {
			search.Backward = pos - d
			search.HasBackward = true
			break
		}
	}

	return search
}
