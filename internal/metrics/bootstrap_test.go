package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanInterval_TooFewValues(t *testing.T) {
	ci := MeanInterval([]float64{0.7}, 0.95, 1)
	assert.Equal(t, Interval{Lower: 0.7, Upper: 0.7, Level: 0.95}, ci)

	assert.Equal(t, Interval{Level: 0.95}, MeanInterval(nil, 0.95, 1))
}

func TestMeanInterval_ConstantValues(t *testing.T) {
	ci := MeanInterval([]float64{0.8, 0.8, 0.8}, 0.95, 1)
	assert.InDelta(t, 0.8, ci.Lower, 1e-12)
	assert.InDelta(t, 0.8, ci.Upper, 1e-12)
	assert.Equal(t, DefaultResamples, ci.Resamples)
}

func TestMeanInterval(t *testing.T) {
	values := []float64{0.6, 0.7, 0.75, 0.8, 0.9}
	ci := MeanInterval(values, 0.95, 7)

	m := Mean(values)
	assert.LessOrEqual(t, ci.Lower, m)
	assert.GreaterOrEqual(t, ci.Upper, m)
	assert.GreaterOrEqual(t, ci.Lower, 0.6)
	assert.LessOrEqual(t, ci.Upper, 0.9)
	assert.Less(t, ci.Lower, ci.Upper)

	// seeded resampling is reproducible
	assert.Equal(t, ci, MeanInterval(values, 0.95, 7))

	// a wider level never yields a narrower interval
	wide := MeanInterval(values, 0.99, 7)
	assert.LessOrEqual(t, wide.Lower, ci.Lower)
	assert.GreaterOrEqual(t, wide.Upper, ci.Upper)
}

func TestInterval_Overlaps(t *testing.T) {
	a := Interval{Lower: 0.5, Upper: 0.7}
	assert.True(t, a.Overlaps(Interval{Lower: 0.65, Upper: 0.9}))
	assert.True(t, a.Overlaps(Interval{Lower: 0.7, Upper: 0.8}))
	assert.False(t, a.Overlaps(Interval{Lower: 0.71, Upper: 0.9}))
}
