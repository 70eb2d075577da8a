package fouling

// Options carries the fully-resolved configuration for a fouling analysis.
// All fields are concrete values: defaults are resolved once, at the boundary,
// via DefaultOptions, never inside the algorithms.
type Options struct {
	DCSizeKW float64 // DC nameplate capacity in kW, used for PR normalisation

	MinPOA       float64 // irradiance below this is excluded from ratios and baselines, W/m²
	BinWidth     float64 // width of the POA bins used for the clean baseline, W/m²
	MinBinPoints int     // minimum clean observations required to retain a POA bin

	WindowDays            int     // trailing window for the fouling index and energy loss
	CleaningJumpThreshold float64 // fractional PR jump (vs global median) flagged as a cleaning event

	CleanDays       int // number of days picked by the automatic clean-period selector
	MinPointsPerDay int // minimum readings for a day to qualify as a clean-period candidate
}

// DefaultOptions returns the standard analysis configuration for a plant with
// the given DC nameplate capacity.
func DefaultOptions(dcSizeKW float64) Options {
	return Options{
		DCSizeKW:              dcSizeKW,
		MinPOA:                200,
		BinWidth:              100,
		MinBinPoints:          1,
		WindowDays:            7,
		CleaningJumpThreshold: 0.10,
		CleanDays:             3,
		MinPointsPerDay:       48,
	}
}
