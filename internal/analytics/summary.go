package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/helixir/paper-aggregator/internal/domain"
)

// DefaultWindow is the moving-average window of ConfidenceSummary.
const DefaultWindow = 3

// DailyConfidence is one row of a confidence summary.
type DailyConfidence struct {
	Date  time.Time `json:"date"`
	Avg   float64   `json:"avg"`
	MA    float64   `json:"ma"`
	Count int       `json:"count"`
}

// ConfidenceReport is the output of ConfidenceSummary.
type ConfidenceReport struct {
	Daily []DailyConfidence `json:"daily"`
	Drift float64           `json:"drift"`
}

// ConfidenceSummary orders points by date, smooths their values with a
// trailing moving average and reports drift as the growth rate between the
// last two points. Window values below 1 use DefaultWindow.
func ConfidenceSummary(points []domain.TimeSeriesPoint, window int) ConfidenceReport {
	if window < 1 {
		window = DefaultWindow
	}

	ordered := make([]domain.TimeSeriesPoint, len(points))
	copy(ordered, points)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	values := make([]float64, len(ordered))
	for i, p := range ordered {
		values[i] = p.Value
	}
	ma := MovingAverage(values, window)

	daily := make([]DailyConfidence, len(ordered))
	for i, p := range ordered {
		daily[i] = DailyConfidence{
			Date:  p.Date,
			Avg:   round4(p.Value),
			MA:    round4(ma[i]),
			Count: p.Count,
		}
	}

	var drift float64
	if n := len(values); n >= 2 {
		drift = GrowthRate(values[n-2], values[n-1])
	}
	return ConfidenceReport{Daily: daily, Drift: round4(drift)}
}

// UsageCount is a named counter, such as calls per endpoint.
type UsageCount struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" validate:"min=0"`
}

// UsageShare is a UsageCount with its share relative to the busiest entry.
type UsageShare struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// UsageShares normalizes every count against the largest one, so the
// busiest entry has share 1. Input order is preserved.
func UsageShares(counts []UsageCount) []UsageShare {
	peak := 0
	for _, c := range counts {
		peak = max(peak, c.Count)
	}

	out := make([]UsageShare, len(counts))
	for i, c := range counts {
		out[i] = UsageShare{
			Name:  c.Name,
			Count: c.Count,
			Share: round4(Normalize(float64(c.Count), 0, float64(peak))),
		}
	}
	return out
}

// DecayedTotal sums point values after decaying each one by its age at
// asOf. Points dated after asOf are treated as fresh.
func DecayedTotal(points []domain.TimeSeriesPoint, asOf time.Time, halfLifeDays float64) float64 {
	var total float64
	for _, p := range points {
		age := asOf.Sub(p.Date).Hours() / 24
		if age < 0 {
			age = 0
		}
		total += ConfidenceDecay(p.Value, age, halfLifeDays)
	}
	return total
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
