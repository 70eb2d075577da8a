package fouling

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// RegressionModel is a single-variable linear fit of clean AC power against
// POA irradiance: expected = Alpha + Beta × POA. It is a strictly additive
// second estimate alongside the binned baseline and never overrides it.
type RegressionModel struct {
	Alpha float64
	Beta  float64
}

// FitCleanRegression fits the irradiance -> power model on the clean reference
// rows, using the same minimum-irradiance filter as the binned baseline. The
// second return value is false when the reference holds fewer than two usable
// points, in which case the model column must be reported as absent (NaN), not
// zero.
func FitCleanRegression(clean []Row, opts Options) (RegressionModel, bool) {
	var xs, ys []float64
	for _, row := range clean {
		if math.IsNaN(row.POA) || row.POA < opts.MinPOA || math.IsNaN(row.Power) {
			continue
		}
		xs = append(xs, row.POA)
		ys = append(ys, row.Power)
	}
	if len(xs) < 2 {
		return RegressionModel{}, false
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return RegressionModel{}, false
	}
	return RegressionModel{Alpha: alpha, Beta: beta}, true
}

// Apply populates the ExpectedCleanModel column row-wise, returning a new
// slice. Rows without an irradiance measurement stay NaN.
func (m RegressionModel) Apply(rows []Row) []Row {
	out := cloneRows(rows)
	for i := range out {
		out[i].ExpectedCleanModel = math.NaN()
		if math.IsNaN(out[i].POA) {
			continue
		}
		out[i].ExpectedCleanModel = m.Alpha + m.Beta*out[i].POA
	}
	return out
}
