package shading

import (
	"log/slog"

	"github.com/phall2020-ui/inverter-data-juggle/telemetry"
)

// SeasonInput is one season's worth of prepared telemetry: the inverter
// readings and the matching weather-station readings.
type SeasonInput struct {
	Inverter []telemetry.Reading
	Weather  []telemetry.Reading
}

// Result bundles the per-slot comparison and the per-inverter summary.
type Result struct {
	Comparison []ComparisonRow
	Summary    []Summary
}

// Run executes the full shading analysis: each season is joined with its
// irradiance and profiled by (inverter, hour of day), the two profiles are
// aligned, and the comparison is reduced to one classification per inverter
// over the core daylight window.
func Run(baseline, test SeasonInput, opts Options) Result {
	baselineProfile := BuildProfile(JoinWithIrradiance(baseline.Inverter, baseline.Weather, opts), opts)
	testProfile := BuildProfile(JoinWithIrradiance(test.Inverter, test.Weather, opts), opts)
	slog.Debug(
		"Built seasonal profiles",
		"baseline_slots", len(baselineProfile),
		"test_slots", len(testProfile),
	)

	comparison := CompareProfiles(baselineProfile, testProfile)
	summary := Summarise(comparison)

	for _, s := range summary {
		slog.Info(
			"Shading summary",
			"device", s.DeviceID,
			"median_ratio", s.MedianRatio,
			"classification", s.Classification,
		)
	}

	return Result{
		Comparison: comparison,
		Summary:    summary,
	}
}
