package glottal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidatesAt(indices ...int) []Candidate {
	out := make([]Candidate, len(indices))
	for i, idx := range indices {
		out[i] = Candidate{Index: idx, Power: 1}
	}
	return out
}

func indicesOf(candidates []Candidate) []int {
	out := make([]int, len(candidates))
	for i, c := range candidates {
		out[i] = c.Index
	}
	return out
}

func TestCorrectOctaveErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    []int
		expected []int
		merged   int
		inserted int
		// mergeFraction overrides the default when non-zero
		mergeFraction float64
	}{
		{
			name:     "regular periods untouched",
			input:    []int{0, 100, 200, 300, 400, 500},
			expected: []int{0, 100, 200, 300, 400, 500},
		},
		{
			name:     "spurious midpoint merged",
			input:    []int{0, 100, 200, 250, 300, 400, 500, 600},
			expected: []int{0, 100, 200, 300, 400, 500, 600},
			merged:   1,
		},
		{
			name:     "spurious candidate in a longer run",
			input:    []int{0, 100, 200, 300, 400, 450, 500, 600, 700, 800, 900, 1000},
			expected: []int{0, 100, 200, 300, 400, 500, 600, 700, 800, 900, 1000},
			merged:   1,
		},
		{
			name:     "trailing spurious candidate merged",
			input:    []int{0, 100, 200, 300, 330},
			expected: []int{0, 100, 200, 300},
			merged:   1,
		},
		{
			name:     "doubled period split at midpoint",
			input:    []int{0, 100, 200, 300, 500, 600, 700},
			expected: []int{0, 100, 200, 300, 400, 500, 600, 700},
			inserted: 1,
		},
		{
			name:     "tripled period split in thirds",
			input:    []int{0, 100, 200, 500, 600, 700},
			expected: []int{0, 100, 200, 300, 400, 500, 600, 700},
			inserted: 2,
		},
		{
			// the period after the split is 100, so the short period into
			// 440 is measured against 100 and 440 is merged away
			name:     "split period feeds the next mismatch test",
			input:    []int{0, 100, 200, 400, 440, 500, 600, 700},
			expected: []int{0, 100, 200, 300, 400, 500, 600, 700},
			merged:   1,
			inserted: 1,
		},
		{
			// after 250 is merged the period into 300 is 100, not 50, so
			// the wide tolerance never gets a chance to drop 200
			name:          "merged period feeds the next mismatch test",
			input:         []int{0, 100, 200, 250, 300, 400, 500, 600},
			expected:      []int{0, 100, 200, 300, 400, 500, 600},
			merged:        1,
			mergeFraction: 1.01,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if tc.mergeFraction != 0 {
				cfg.MergeFraction = tc.mergeFraction
			}
			corrected, tally := CorrectOctaveErrors(candidatesAt(tc.input...), cfg)

			assert.Equal(t, tc.expected, indicesOf(corrected))
			assert.Equal(t, tc.merged, tally.Merged, "merged")
			assert.Equal(t, tc.inserted, tally.Inserted, "inserted")
		})
	}
}

func TestCorrectOctaveErrorsMergeKeepsMaxPower(t *testing.T) {
	input := candidatesAt(0, 100, 200, 300, 400, 450, 500, 600, 700, 800)
	input[5].Power = 3

	corrected, tally := CorrectOctaveErrors(input, DefaultConfig())
	require.Equal(t, 1, tally.Merged)
	require.Equal(t, []int{0, 100, 200, 300, 400, 500, 600, 700, 800}, indicesOf(corrected))
	assert.Equal(t, 3.0, corrected[4].Power)
}

func TestCorrectOctaveErrorsInterpolatesPower(t *testing.T) {
	input := []Candidate{
		{Index: 0, Power: 1},
		{Index: 100, Power: 1},
		{Index: 200, Power: 2},
		{Index: 500, Power: 5},
		{Index: 600, Power: 5},
		{Index: 700, Power: 5},
	}

	corrected, _ := CorrectOctaveErrors(input, DefaultConfig())
	require.Len(t, corrected, 8)
	assert.Equal(t, 300, corrected[3].Index)
	assert.InDelta(t, 3.0, corrected[3].Power, 1e-9)
	assert.Equal(t, 400, corrected[4].Index)
	assert.InDelta(t, 4.0, corrected[4].Power, 1e-9)
}

func TestCorrectOctaveErrorsShortInput(t *testing.T) {
	for _, input := range [][]int{nil, {5}, {5, 50}} {
		corrected, tally := CorrectOctaveErrors(candidatesAt(input...), DefaultConfig())
		assert.Len(t, corrected, len(input))
		assert.Zero(t, tally.Merged+tally.Inserted)
	}
}

func TestCorrectOctaveErrorsKeepsOrder(t *testing.T) {
	input := candidatesAt(0, 90, 210, 240, 300, 520, 610, 640, 700, 1000, 1100)

	corrected, _ := CorrectOctaveErrors(input, DefaultConfig())
	for i := 1; i < len(corrected); i++ {
		assert.Greater(t, corrected[i].Index, corrected[i-1].Index, "position %d", i)
	}
}

func TestPeriodMismatch(t *testing.T) {
	assert.False(t, periodMismatch(100, 100, 1.5))
	assert.False(t, periodMismatch(100, 150, 1.5))
	assert.False(t, periodMismatch(150, 100, 1.5))
	assert.True(t, periodMismatch(100, 151, 1.5))
	assert.True(t, periodMismatch(151, 100, 1.5))
}

func TestLocalPeriod(t *testing.T) {
	median, ok := localPeriod(candidatesAt(0, 100, 200, 250, 300, 400, 500, 600), 3, 3)
	require.True(t, ok)
	assert.Equal(t, 100.0, median)

	_, ok = localPeriod(candidatesAt(10, 10, 10), 2, 3)
	assert.False(t, ok, "no positive periods")
}
