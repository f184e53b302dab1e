package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Describe computes the descriptive statistics of values, ignoring NaN.
// An empty input yields all-NaN stats; a single value has NaN variance and
// standard deviation because the sample variance needs two observations.
func Describe(values []float64) Stats {
	x := dropNaN(values)
	if len(x) == 0 {
		return undefinedStats()
	}

	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)

	s := Stats{
		Mean: stat.Mean(x, nil),
		Max:  floats.Max(x),
		Min:  floats.Min(x),
		P25:  Percentile(sorted, 25),
		P50:  Percentile(sorted, 50),
		P75:  Percentile(sorted, 75),
	}

	if len(x) < 2 {
		s.Variance = math.NaN()
		s.StdDev = math.NaN()
	} else {
		s.Variance = stat.Variance(x, nil) // n-1 divisor
		s.StdDev = math.Sqrt(s.Variance)
	}

	return s
}

// Summarize builds the summary table for trip duration and distance
func Summarize(trips []Trip) Summary {
	durations := make([]float64, len(trips))
	distances := make([]float64, len(trips))
	for i, t := range trips {
		durations[i] = t.Duration
		distances[i] = t.DistanceKm
	}
	return Summary{
		Duration: Describe(durations),
		Distance: Describe(distances),
	}
}

// Percentile returns the p-th percentile (0-100) of sorted values using
// linear interpolation between closest ranks. NaN for empty input.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[n-1]
	}

	index := p / 100 * float64(n-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
