package fouling

import (
	"math"

	"github.com/phall2020-ui/inverter-data-juggle/stats"
)

// Level is a qualitative fouling classification.
type Level string

const (
	LevelClean        Level = "Clean"
	LevelLight        Level = "Light Soiling"
	LevelModerate     Level = "Moderate"
	LevelSevere       Level = "Severe"
	LevelInsufficient Level = "Insufficient Data"
)

// Classification thresholds on fractional loss. Boundaries are inclusive on
// the lower classification: an index of exactly 0.05 is Clean, not Light.
const (
	thresholdClean    = 0.05
	thresholdLight    = 0.10
	thresholdModerate = 0.20
)

// FoulingIndex computes the fractional power loss over the trailing
// windowDays: 1 − median(actual/expected), clamped to [0, 1]. Only rows with
// a positive expected power and a non-negative actual power participate.
//
// Returns NaN when no valid rows exist in the window. NaN must propagate to
// the classification as Insufficient Data, never be coerced to "clean".
func FoulingIndex(rows []Row, windowDays int) float64 {
	recent := trailingWindow(rows, windowDays)

	var ratios []float64
	for _, row := range recent {
		if row.ExpectedCleanPower > 0 && row.Power >= 0 {
			ratios = append(ratios, row.Power/row.ExpectedCleanPower)
		}
	}
	if len(ratios) == 0 {
		return math.NaN()
	}

	index := 1.0 - stats.Median(ratios)
	return math.Max(0.0, math.Min(1.0, index))
}

// ClassifyFoulingLevel maps a fouling index to its qualitative level. The
// boundaries are total and non-overlapping: every finite index maps to exactly
// one level, and NaN maps to Insufficient Data.
func ClassifyFoulingLevel(index float64) Level {
	if math.IsNaN(index) {
		return LevelInsufficient
	}
	switch {
	case index <= thresholdClean:
		return LevelClean
	case index <= thresholdLight:
		return LevelLight
	case index <= thresholdModerate:
		return LevelModerate
	default:
		return LevelSevere
	}
}

// EstimateEnergyLoss estimates the daily energy lost to soiling over the
// trailing window, as sum(max(expected − actual, 0)) / windowDays. Only
// positive shortfalls count: overperformance never produces a negative loss.
// If windowDays <= 0 the raw sum is returned instead of dividing.
//
// The result is in kWh/day under the assumption that Power holds
// interval-averaged kW at a constant half-hourly cadence; see DESIGN.md for
// the unit caveat inherited from the legacy variants.
func EstimateEnergyLoss(rows []Row, windowDays int) float64 {
	recent := trailingWindow(rows, windowDays)

	total := 0.0
	for _, row := range recent {
		shortfall := row.ExpectedCleanPower - row.Power
		if math.IsNaN(shortfall) || shortfall < 0 {
			continue
		}
		total += shortfall
	}

	if windowDays <= 0 {
		return total
	}
	return total / float64(windowDays)
}

// trailingWindow restricts rows (assumed sorted by time) to the most recent
// windowDays by timestamp. When the series carries no timestamps at all it
// falls back to the last windowDays×48 rows, i.e. a 30-minute cadence.
func trailingWindow(rows []Row, windowDays int) []Row {
	if len(rows) == 0 {
		return rows
	}

	last := rows[len(rows)-1].Time
	if last.IsZero() {
		n := windowDays * 48
		if n >= len(rows) {
			return rows
		}
		return rows[len(rows)-n:]
	}

	cutoff := last.AddDate(0, 0, -windowDays)
	for i := range rows {
		if !rows[i].Time.Before(cutoff) {
			return rows[i:]
		}
	}
	return nil
}
