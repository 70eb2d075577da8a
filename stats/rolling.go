package stats

import "math"

// RollingMedian computes a trailing rolling median over `values` with the
// given window size. Each output element is the median of the up-to-`window`
// values ending at (and including) that position, so the leading edge is not
// dropped. NaN inputs are skipped within each window; a window with no valid
// values yields NaN.
func RollingMedian(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		out[i] = Median(values[start : i+1])
	}
	return out
}

// Diff returns the first difference of `values`: out[i] = values[i] -
// values[i-1]. The first element is NaN, as is any element where either
// operand is NaN.
func Diff(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = values[i] - values[i-1]
	}
	return out
}
