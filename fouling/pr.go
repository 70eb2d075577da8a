package fouling

import "math"

// CalculatePR computes the performance ratio for every row and returns a new
// slice with the PR column populated:
//
//	PR = AC_kW / ((POA_Wm2 / 1000) × DC_kW)
//
// Rows with POA below opts.MinPOA get a NaN PR: low-light measurements are too
// noisy to normalise against and must never participate in aggregates. A zero
// or missing denominator is masked to NaN at the point of computation, never
// propagated as Inf.
func CalculatePR(rows []Row, opts Options) []Row {
	out := cloneRows(rows)
	for i := range out {
		out[i].PR = performanceRatio(out[i].Power, out[i].POA, opts)
	}
	return out
}

func performanceRatio(power, poa float64, opts Options) float64 {
	if math.IsNaN(poa) || poa < opts.MinPOA {
		return math.NaN()
	}
	pr := power / ((poa / 1000.0) * opts.DCSizeKW)
	if math.IsInf(pr, 0) {
		return math.NaN()
	}
	return pr
}
