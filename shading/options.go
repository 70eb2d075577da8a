package shading

// Options carries the fully-resolved configuration for a shading analysis.
// The irradiance threshold is deliberately lower than the fouling one: early
// morning and late afternoon are exactly where obstructions bite, so those
// hours must stay in view.
type Options struct {
	MinIrradiance    float64 // weather rows below this are discarded, W/m²
	MinPointsPerHour int     // minimum samples for an (inverter, hour) bin to be retained
}

// DefaultOptions returns the standard shading configuration.
func DefaultOptions() Options {
	return Options{
		MinIrradiance:    50,
		MinPointsPerHour: 2,
	}
}

// Core daylight window used for the per-inverter summary, inclusive on both
// edges. Comparing sun-angle-equalised seasons only makes sense when the sun
// is well up in both of them.
const (
	coreWindowStartHour = 9.0
	coreWindowEndHour   = 15.0
)
