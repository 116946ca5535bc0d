package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		window   int
		expected []float64
	}{
		{"trailing window", []float64{10, 20, 30}, 2, []float64{10, 15, 25}},
		{"partial start", []float64{3, 6, 9, 12}, 3, []float64{3, 4.5, 6, 9}},
		{"window larger than input", []float64{2, 4}, 5, []float64{2, 3}},
		{"window one", []float64{1, 2, 3}, 1, []float64{1, 2, 3}},
		{"window zero", []float64{1, 2, 3}, 0, []float64{1, 2, 3}},
		{"empty", []float64{}, 3, []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MovingAverage(tt.values, tt.window)
			assert.Len(t, got, len(tt.expected))
			for i := range tt.expected {
				assert.InDelta(t, tt.expected[i], got[i], 1e-12)
			}
		})
	}

	t.Run("does not alias input", func(t *testing.T) {
		in := []float64{1, 2}
		out := MovingAverage(in, 1)
		out[0] = 99
		assert.Equal(t, 1.0, in[0])
	})
}

func TestGrowthRate(t *testing.T) {
	assert.Equal(t, 1.0, GrowthRate(0, 5))
	assert.Equal(t, -0.5, GrowthRate(10, 5))
	assert.Equal(t, 0.0, GrowthRate(0, 0))
	assert.Equal(t, 0.0, GrowthRate(-3, -1))
	assert.Equal(t, 1.0, GrowthRate(-3, 2))
	assert.Equal(t, 0.0, GrowthRate(4, 4))
	assert.Equal(t, 1.5, GrowthRate(2, 5))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, 0.5, Normalize(5, 0, 10))
	assert.Equal(t, 0.0, Normalize(5, 10, 10))
	assert.Equal(t, 0.0, Normalize(5, 10, 0))
	assert.Equal(t, 0.0, Normalize(-5, 0, 10))
	assert.Equal(t, 1.0, Normalize(50, 0, 10))
	assert.Equal(t, 0.25, Normalize(15, 10, 30))
}

func TestConfidenceDecay(t *testing.T) {
	assert.Equal(t, 0.0, ConfidenceDecay(0, 1, 7))
	assert.Equal(t, 0.0, ConfidenceDecay(-1, 1, 7))
	assert.Equal(t, 0.8, ConfidenceDecay(0.8, 30, 0))
	assert.Equal(t, 0.8, ConfidenceDecay(0.8, 0, 7))
	assert.InDelta(t, 0.5, ConfidenceDecay(1, 7, 7), 1e-3)
	assert.InDelta(t, math.Exp(-0.693*2), ConfidenceDecay(1, 14, DefaultHalfLifeDays), 1e-12)
}
