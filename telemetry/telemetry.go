package telemetry

import (
	"math"
	"time"
)

// Reading holds one half-hourly observation pulled from an inverter, meter or
// weather station. Optional measurements that were not present in the source
// data are NaN, never zero, so that they cannot be mistaken for real values by
// downstream aggregations.
type Reading struct {
	Time       time.Time
	DeviceID   string
	POA        float64 // plane-of-array irradiance in W/m²
	Power      float64 // canonical power signal in kW (AC side), resolved at ingestion
	DCPower    float64 // DC-side power in kW, optional
	ModuleTemp float64 // module temperature in °C, optional
}

// NewReading returns a Reading with all measurement fields initialised to NaN.
func NewReading(t time.Time, deviceID string) Reading {
	return Reading{
		Time:       t,
		DeviceID:   deviceID,
		POA:        math.NaN(),
		Power:      math.NaN(),
		DCPower:    math.NaN(),
		ModuleTemp: math.NaN(),
	}
}

// HasPOA reports whether the reading carries an irradiance measurement.
func (r Reading) HasPOA() bool {
	return !math.IsNaN(r.POA)
}

// HasPower reports whether the reading carries a power measurement.
func (r Reading) HasPower() bool {
	return !math.IsNaN(r.Power)
}
