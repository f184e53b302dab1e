package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	s := Describe([]float64{4, 1, 3, 2})

	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	assert.InDelta(t, 5.0/3.0, s.Variance, 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/3.0), s.StdDev, 1e-12)
	assert.Equal(t, 4.0, s.Max)
	assert.Equal(t, 1.0, s.Min)
	assert.InDelta(t, 1.75, s.P25, 1e-12)
	assert.InDelta(t, 2.5, s.P50, 1e-12)
	assert.InDelta(t, 3.25, s.P75, 1e-12)
}

func TestDescribeSingleValue(t *testing.T) {
	s := Describe([]float64{300})

	assert.Equal(t, 300.0, s.Mean)
	assert.Equal(t, 300.0, s.Max)
	assert.Equal(t, 300.0, s.Min)
	assert.Equal(t, 300.0, s.P50)
	assert.True(t, math.IsNaN(s.Variance))
	assert.True(t, math.IsNaN(s.StdDev))
}

func TestDescribeEmpty(t *testing.T) {
	for _, in := range [][]float64{nil, {}, {math.NaN(), math.NaN()}} {
		for _, v := range Describe(in).values() {
			assert.True(t, math.IsNaN(v))
		}
	}
}

func TestDescribeSkipsNaN(t *testing.T) {
	s := Describe([]float64{math.NaN(), 10, 20, math.NaN()})
	assert.Equal(t, 15.0, s.Mean)
	assert.Equal(t, 50.0, s.Variance)
}

func TestPercentile(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50}

	assert.Equal(t, 10.0, Percentile(sorted, 0))
	assert.Equal(t, 20.0, Percentile(sorted, 25))
	assert.Equal(t, 30.0, Percentile(sorted, 50))
	assert.Equal(t, 50.0, Percentile(sorted, 100))
	assert.InDelta(t, 14.0, Percentile(sorted, 10), 1e-12)
	assert.True(t, math.IsNaN(Percentile(nil, 50)))
}

func TestSummaryRows(t *testing.T) {
	summary := Summarize([]Trip{
		{Duration: 300, DistanceKm: 1},
		{Duration: 600, DistanceKm: 3},
	})

	rows := summary.Rows()
	assert.Len(t, rows, len(StatisticNames))
	assert.Equal(t, "Mean", rows[0].Statistic)
	assert.Equal(t, 450.0, rows[0].Duration)
	assert.Equal(t, 2.0, rows[0].DistanceKm)
	assert.Equal(t, "75th Percentile", rows[7].Statistic)
	assert.Equal(t, 525.0, rows[7].Duration)
}
