package fouling

import (
	"math"
	"sort"
	"time"

	"github.com/phall2020-ui/inverter-data-juggle/telemetry"
)

// Row is one observation of the operational series, enriched step by step as
// the analysis runs. Columns that have not been computed yet, or that could
// not be computed for this row, are NaN.
type Row struct {
	Time  time.Time
	POA   float64 // plane-of-array irradiance, W/m²
	Power float64 // actual AC power, kW

	PR                 float64 // performance ratio, set by CalculatePR
	POABin             float64 // lower edge of the irradiance bin, set by Baseline.Apply
	ExpectedCleanPower float64 // binned-median expected power, set by Baseline.Apply
	ExpectedCleanPR    float64 // binned-median expected PR, set by Baseline.Apply
	ExpectedCleanModel float64 // regression expected power, set by RegressionModel.Apply
	PRRoll             float64 // rolling median of PR, set by DetectCleaningEvents

	CleaningEvent bool // set by DetectCleaningEvents
}

// NewRows converts readings into analysis rows, sorted by time. The derived
// columns start out as NaN.
func NewRows(readings []telemetry.Reading) []Row {
	rows := make([]Row, 0, len(readings))
	for _, r := range readings {
		rows = append(rows, Row{
			Time:               r.Time,
			POA:                r.POA,
			Power:              r.Power,
			PR:                 math.NaN(),
			POABin:             math.NaN(),
			ExpectedCleanPower: math.NaN(),
			ExpectedCleanPR:    math.NaN(),
			ExpectedCleanModel: math.NaN(),
			PRRoll:             math.NaN(),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Time.Before(rows[j].Time) })
	return rows
}

// cloneRows returns a copy of the given rows. Every transformation in this
// package works on a copy so that caller-owned data is never mutated in place.
func cloneRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	return out
}
