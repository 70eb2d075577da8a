package fouling

import (
	"time"

	"github.com/phall2020-ui/inverter-data-juggle/telemetry"
)

// mustParseTime returns the time.Time associated with the given string or panics.
func mustParseTime(str string) time.Time {
	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		panic(err)
	}
	return t
}

// reading builds a telemetry reading with the given irradiance and power.
func reading(ts string, poa, power float64) telemetry.Reading {
	r := telemetry.NewReading(mustParseTime(ts), "INV1")
	r.POA = poa
	r.Power = power
	return r
}

// halfHourlyDay generates a full day (48 points) of half-hourly readings with
// constant irradiance, at the power level that yields the given PR for the
// given DC size.
func halfHourlyDay(day string, poa, pr, dcSizeKW float64) []telemetry.Reading {
	start := mustParseTime(day + "T00:00:00Z")
	power := pr * (poa / 1000.0) * dcSizeKW

	readings := make([]telemetry.Reading, 0, 48)
	for i := 0; i < 48; i++ {
		r := telemetry.NewReading(start.Add(time.Duration(i)*30*time.Minute), "INV1")
		r.POA = poa
		r.Power = power
		readings = append(readings, r)
	}
	return readings
}
