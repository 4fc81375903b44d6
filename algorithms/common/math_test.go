package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean())
	assert.InDelta(t, 5.5, Mean(5, 6), 1e-12)
	assert.InDelta(t, 2.0, Mean(1, 2, 3), 1e-12)
}

func TestLerpIndex(t *testing.T) {
	assert.Equal(t, 150, LerpIndex(100, 200, 0.5))
	assert.Equal(t, 133, LerpIndex(100, 200, 1.0/3.0))
	assert.Equal(t, 167, LerpIndex(100, 200, 2.0/3.0))
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(1.5))
	assert.False(t, IsFinite(math.NaN()))
	assert.False(t, IsFinite(math.Inf(-1)))
}

func TestSecondsToSample(t *testing.T) {
	assert.Equal(t, 16000, SecondsToSample(1.0, 16000))
	assert.Equal(t, 8, SecondsToSample(0.0005, 16000))
	assert.Equal(t, 0, SecondsToSample(0, 16000))
}
