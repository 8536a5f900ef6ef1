package metrics

import (
	"math"
	"slices"
)

// Mean computes the arithmetic mean of a float64 slice.
// Returns 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev computes the population standard deviation.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// Spread summarizes a series of scores, typically the recent runs of one model.
type Spread struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Describe returns the spread of values. The zero Spread is returned for empty input.
func Describe(values []float64) Spread {
	if len(values) == 0 {
		return Spread{}
	}
	return Spread{
		Mean:   Mean(values),
		StdDev: StdDev(values),
		Min:    slices.Min(values),
		Max:    slices.Max(values),
	}
}

// Round4 rounds to four decimal places, the precision scores are reported at.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
