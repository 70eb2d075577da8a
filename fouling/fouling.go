// Package fouling diagnoses soiling losses in a PV plant from half-hourly
// telemetry, by comparing measured output against a clean baseline built from
// a reference period during which the modules are known (or inferred) to be
// clean.
//
// The whole package is a pure, synchronous batch computation: every function
// is deterministic in its inputs and configuration, performs no I/O, and
// returns new slices rather than mutating its arguments. Data gaps surface as
// NaN or empty results, never as errors, so that batch callers can continue
// past one plant's gap.
package fouling

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/phall2020-ui/inverter-data-juggle/telemetry"
)

// ErrNoCleanReference is returned when the mandatory clean-reference series is
// missing or empty: without it no baseline can be built.
var ErrNoCleanReference = errors.New("a clean-period dataset is required: provide readings from a period when the modules were known to be clean (e.g. 1-3 days after a full wash) so the baseline can be established")

// Result is the outcome of a fouling analysis. It is computed once per call
// and not mutated afterwards.
type Result struct {
	FoulingIndex           float64 // fractional loss in [0,1], or NaN
	FoulingLevel           Level
	EnergyLossKWhPerDay    float64
	CleaningEventsDetected int
	Rows                   []Row // the fully enriched operational series
}

// Run executes the full fouling analysis: PR computation on both series, the
// POA-binned clean baseline (plus the additive regression estimate), the
// trailing-window fouling index and classification, the daily energy-loss
// estimate, and cleaning-event detection over the whole series.
//
// The clean series is treated as ground truth: every row in it counts towards
// the baseline and is not re-validated here.
func Run(full, clean []telemetry.Reading, opts Options) (Result, error) {
	if len(clean) == 0 {
		return Result{}, fmt.Errorf("fouling analysis: %w", ErrNoCleanReference)
	}

	rows := CalculatePR(NewRows(full), opts)
	cleanRows := CalculatePR(NewRows(clean), opts)

	baseline := BuildBaseline(cleanRows, opts)
	rows = baseline.Apply(rows)
	slog.Debug("Built clean baseline", "bins", len(baseline.Power), "clean_rows", len(cleanRows))

	if model, ok := FitCleanRegression(cleanRows, opts); ok {
		rows = model.Apply(rows)
	}

	index := FoulingIndex(rows, opts.WindowDays)
	rows = DetectCleaningEvents(rows, opts.CleaningJumpThreshold)

	result := Result{
		FoulingIndex:           index,
		FoulingLevel:           ClassifyFoulingLevel(index),
		EnergyLossKWhPerDay:    EstimateEnergyLoss(rows, opts.WindowDays),
		CleaningEventsDetected: CountCleaningEvents(rows),
		Rows:                   rows,
	}

	slog.Info(
		"Fouling analysis complete",
		"fouling_index", result.FoulingIndex,
		"fouling_level", result.FoulingLevel,
		"energy_loss_kwh_per_day", result.EnergyLossKWhPerDay,
		"cleaning_events", result.CleaningEventsDetected,
	)
	return result, nil
}
