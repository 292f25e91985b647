package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	tests := []struct {
		v        float64
		places   int
		expected float64
	}{
		{80, 1, 80},
		{42.857142, 1, 42.9},
		{28.571428, 2, 28.57},
		{0.125, 2, 0.13},
		{1.005, 2, 1.01},
		{2.675, 2, 2.68},
		{-0.25, 1, -0.3},
		{33.333333, 2, 33.33},
		{math.NaN(), 1, 0},
		{math.Inf(1), 2, 0},
		{math.Inf(-1), 2, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Round(tt.v, tt.places), "Round(%v, %d)", tt.v, tt.places)
	}
}

func TestSafeDiv(t *testing.T) {
	assert.Equal(t, 2.5, SafeDiv(5, 2))
	assert.Equal(t, 0.0, SafeDiv(5, 0))
	assert.Equal(t, 0.0, SafeDiv(0, 0))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 80.0, Percent(8, 10))
	assert.Equal(t, 0.0, Percent(8, 0))
}
