package temporal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRisingCrossings(t *testing.T) {
	data := []float64{-1, 0, 1, -2, -1, 3, 2, -0.5, 0.25}
	assert.Equal(t, []int{1, 5, 8}, RisingCrossings(data))

	assert.Empty(t, RisingCrossings(nil))
	assert.Empty(t, RisingCrossings([]float64{1, 2, 3}))
	// first sample can never be a crossing
	assert.Empty(t, RisingCrossings([]float64{0, 1}))
}

func TestIsRisingCrossing(t *testing.T) {
	signal := []int{-3, -1, 0, 2, 4, -1, -2, 5, 6}

	assert.True(t, IsRisingCrossing(signal, 2))
	// a crossing between samples satisfies the test on both sides
	assert.True(t, IsRisingCrossing(signal, 6))
	assert.True(t, IsRisingCrossing(signal, 7))
	assert.False(t, IsRisingCrossing(signal, 3))
	assert.False(t, IsRisingCrossing(signal, 0))
	assert.False(t, IsRisingCrossing(signal, 8))
	assert.False(t, IsRisingCrossing(signal, -4))
}

func periodicSignal(period, n int) []int {
	// negative for the first half of each period, positive after, with an
	// exact zero at the start of the positive half
	signal := make([]int, n)
	for i := range signal {
		phase := i % period
		switch {
		case phase == period/2:
			signal[i] = 0
		case phase < period/2:
			signal[i] = -10
		default:
			signal[i] = 10
		}
	}
	return signal
}

func TestNearestRisingCrossings(t *testing.T) {
	signal := periodicSignal(50, 400) // crossings at 25, 75, 125, ...

	tests := []struct {
		name   string
		pos    int
		radius int
		want   CrossingSearch
	}{
		{
			name:   "both sides",
			pos:    100,
			radius: 100,
			want:   CrossingSearch{Backward: 75, Forward: 125, HasBackward: true, HasForward: true},
		},
		{
			name:   "position itself is skipped",
			pos:    125,
			radius: 100,
			want:   CrossingSearch{Backward: 75, Forward: 175, HasBackward: true, HasForward: true},
		},
		{
			name:   "forward only",
			pos:    20,
			radius: 10,
			want:   CrossingSearch{Forward: 25, HasForward: true},
		},
		{
			name:   "backward only",
			pos:    30,
			radius: 10,
			want:   CrossingSearch{Backward: 25, HasBackward: true},
		},
		{
			name:   "nothing in range",
			pos:    50,
			radius: 10,
			want:   CrossingSearch{},
		},
		{
			name:   "clipped at signal end",
			pos:    390,
			radius: 100,
			want:   CrossingSearch{Backward: 375, HasBackward: true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NearestRisingCrossings(signal, tc.pos, tc.radius))
		})
	}
}
