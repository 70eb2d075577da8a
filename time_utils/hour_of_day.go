package timeutils

import "time"

// HourOfDay returns the time of day of `t` as a fractional hour at half-hour
// resolution, e.g. 10:30 -> 10.5. Seconds are ignored because the telemetry
// cadence is half-hourly.
func HourOfDay(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60.0
}
