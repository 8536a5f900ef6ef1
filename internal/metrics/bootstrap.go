package metrics

import (
	"math"
	"math/rand/v2"
	"slices"
)

// Interval is a bootstrap confidence interval for the mean of a series.
type Interval struct {
	Lower     float64 `json:"lower"`
	Upper     float64 `json:"upper"`
	Level     float64 `json:"level"`
	Resamples int     `json:"resamples"`
}

// DefaultResamples is the number of bootstrap resamples drawn by MeanInterval.
const DefaultResamples = 10000

// MeanInterval computes a percentile bootstrap confidence interval for the
// mean of values at the given level, e.g. 0.95. The resampling is seeded, so
// the same input always yields the same interval. With fewer than two values
// the interval collapses to the mean.
func MeanInterval(values []float64, level float64, seed uint64) Interval {
	n := len(values)
	if n < 2 {
		m := Mean(values)
		return Interval{Lower: m, Upper: m, Level: level}
	}

	rng := rand.New(rand.NewPCG(seed, uint64(n)))
	means := make([]float64, DefaultResamples)
	sample := make([]float64, n)
	for i := range means {
		for j := range sample {
			sample[j] = values[rng.IntN(n)]
		}
		means[i] = Mean(sample)
	}
	slices.Sort(means)

	alpha := 1 - level
	lo := int(math.Floor(alpha / 2 * DefaultResamples))
	hi := min(int(math.Floor((1-alpha/2)*DefaultResamples)), DefaultResamples-1)

	return Interval{
		Lower:     means[lo],
		Upper:     means[hi],
		Level:     level,
		Resamples: DefaultResamples,
	}
}

// Overlaps reports whether two intervals share any value. Models whose
// intervals overlap cannot be told apart by their recent runs.
func (i Interval) Overlaps(other Interval) bool {
	return i.Lower <= other.Upper && other.Lower <= i.Upper
}
