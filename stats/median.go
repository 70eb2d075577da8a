// Package stats holds the small set of NaN-aware aggregations that the fouling
// and shading analyses are built on. Missing measurements are represented as
// NaN throughout the codebase, and every function here skips NaNs rather than
// letting them poison an aggregate.
package stats

import (
	"math"
	"sort"
)

// Median returns the median of the non-NaN values in `values`. For an even
// number of values the two middle values are averaged. Returns NaN if there
// are no non-NaN values.
func Median(values []float64) float64 {
	valid := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return math.NaN()
	}

	sort.Float64s(valid)
	mid := len(valid) / 2
	if len(valid)%2 == 1 {
		return valid[mid]
	}
	return (valid[mid-1] + valid[mid]) / 2
}
