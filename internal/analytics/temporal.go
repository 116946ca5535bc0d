// Package analytics provides numeric helpers for turning time-stamped scalar
// series into dashboard summaries.
package analytics

import "math"

// DefaultHalfLifeDays is the half-life used by ConfidenceDecay callers that
// have no better estimate.
const DefaultHalfLifeDays = 7.0

// decayConstant approximates ln(2).
const decayConstant = 0.693

// MovingAverage returns the trailing average of values over window points.
// The first window-1 outputs average over however many points exist so far.
// A window of 1 or less returns a copy of values.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}

	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		n := min(i+1, window)
		out[i] = sum / float64(n)
	}
	return out
}

// GrowthRate returns the relative change from prev to curr. A non-positive
// baseline yields 1 when curr is positive and 0 otherwise.
func GrowthRate(prev, curr float64) float64 {
	if prev <= 0 {
		if curr <= 0 {
			return 0
		}
		return 1
	}
	return (curr - prev) / prev
}

// Normalize rescales value into [0,1] against [lo, hi], clamping at both
// ends. A degenerate range returns 0.
func Normalize(value, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return math.Max(0, math.Min(1, (value-lo)/(hi-lo)))
}

// ConfidenceDecay applies exponential decay to value given its age. Values
// at or below zero decay to 0; a non-positive half-life disables decay.
func ConfidenceDecay(value, ageDays, halfLifeDays float64) float64 {
	if value <= 0 {
		return 0
	}
	if halfLifeDays <= 0 {
		return value
	}
	return value * math.Exp(-decayConstant*(ageDays/halfLifeDays))
}
