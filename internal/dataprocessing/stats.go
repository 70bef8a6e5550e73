package dataprocessing

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// glucoseStats are the order statistics of one set of readings.
type glucoseStats struct {
	mean   float64
	median float64
	stddev float64
	min    float64
	max    float64
}

// computeStats calculates the descriptive statistics of values. The
// standard deviation is the sample deviation (n-1 divisor); a single
// value has deviation 0. The median averages the two middle values of
// an even-sized set.
func computeStats(values []float64) glucoseStats {
	if len(values) == 0 {
		return glucoseStats{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	stats := glucoseStats{
		mean:   stat.Mean(sorted, nil),
		median: median(sorted),
		min:    sorted[0],
		max:    sorted[len(sorted)-1],
	}
	if len(sorted) > 1 {
		stats.stddev = stat.StdDev(sorted, nil)
	}
	return stats
}

// median of a sorted slice. gonum's Quantile implements the piecewise
// empirical conventions, which land on a single sample for even sizes;
// daily statistics want the midpoint of the two central values instead.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// timeInRange returns the percentage of values inside [low, high],
// bounds inclusive. Always within [0, 100] and exactly 100 when every
// value is in range.
func timeInRange(values []float64, low, high float64) float64 {
	if len(values) == 0 {
		return 0
	}
	inRange := 0
	for _, v := range values {
		if v >= low && v <= high {
			inRange++
		}
	}
	return 100 * float64(inRange) / float64(len(values))
}

// coefficientOfVariation returns 100 * stddev / mean. The second
// return is false when the mean is zero and the ratio is undefined.
func coefficientOfVariation(mean, stddev float64) (float64, bool) {
	if mean == 0 {
		return 0, false
	}
	return 100 * stddev / mean, true
}
