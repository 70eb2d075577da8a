// Package shading detects time-of-day-specific power loss from obstructions
// by comparing irradiance-normalised efficiency profiles of two sun-angle-
// equalised seasons (e.g. summer as the baseline, winter as the test).
//
// Like the fouling package, everything here is a pure, synchronous batch
// computation over in-memory series: no I/O, no shared state, inputs are
// never mutated.
package shading

import (
	"sort"
	"time"

	"github.com/phall2020-ui/inverter-data-juggle/stats"
	"github.com/phall2020-ui/inverter-data-juggle/telemetry"
	timeutils "github.com/phall2020-ui/inverter-data-juggle/time_utils"
)

// Sample is one inverter reading joined with the irradiance measured at the
// same instant, carrying the normalised efficiency power/irradiance.
type Sample struct {
	Time       time.Time
	DeviceID   string
	Hour       float64 // hour of day at half-hour resolution, e.g. 10:30 -> 10.5
	Power      float64
	Irradiance float64
	Efficiency float64 // Power / Irradiance
}

// SlotKey identifies one (inverter, time-of-day) bin of an efficiency profile.
type SlotKey struct {
	DeviceID string
	Hour     float64
}

// Slot is the aggregated efficiency of one profile bin.
type Slot struct {
	Efficiency float64 // median normalised efficiency
	Points     int     // sample count behind the median
}

// Profile maps profile bins to their aggregated efficiency. A profile is
// built independently per season and never mutated after construction.
type Profile map[SlotKey]Slot

// JoinWithIrradiance joins inverter readings with the weather-station
// irradiance at the same timestamp (exact-equality join: missing intervals
// simply contribute no sample). Weather rows below opts.MinIrradiance and
// non-producing inverter rows (power <= 0) are discarded before the
// efficiency is computed, so the division can never blow up at dawn or dusk.
func JoinWithIrradiance(inverter, weather []telemetry.Reading, opts Options) []Sample {
	irradianceAt := make(map[time.Time]float64, len(weather))
	for _, w := range weather {
		if !w.HasPOA() || w.POA < opts.MinIrradiance {
			continue
		}
		irradianceAt[w.Time] = w.POA
	}

	samples := make([]Sample, 0, len(inverter))
	for _, r := range inverter {
		irr, ok := irradianceAt[r.Time]
		if !ok {
			continue
		}
		if !r.HasPower() || r.Power <= 0 {
			continue
		}
		samples = append(samples, Sample{
			Time:       r.Time,
			DeviceID:   r.DeviceID,
			Hour:       timeutils.HourOfDay(r.Time),
			Power:      r.Power,
			Irradiance: irr,
			Efficiency: r.Power / irr,
		})
	}
	return samples
}

// BuildProfile aggregates joined samples into a per-(inverter, hour) profile,
// taking the median efficiency per bin and dropping bins with fewer than
// opts.MinPointsPerHour samples.
func BuildProfile(samples []Sample, opts Options) Profile {
	efficienciesByKey := make(map[SlotKey][]float64)
	for _, s := range samples {
		key := SlotKey{DeviceID: s.DeviceID, Hour: s.Hour}
		efficienciesByKey[key] = append(efficienciesByKey[key], s.Efficiency)
	}

	profile := make(Profile, len(efficienciesByKey))
	for key, efficiencies := range efficienciesByKey {
		if len(efficiencies) < opts.MinPointsPerHour {
			continue
		}
		profile[key] = Slot{
			Efficiency: stats.Median(efficiencies),
			Points:     len(efficiencies),
		}
	}
	return profile
}

// Devices returns the sorted device IDs present in the profile.
func (p Profile) Devices() []string {
	seen := make(map[string]bool)
	for key := range p {
		seen[key.DeviceID] = true
	}
	devices := make([]string, 0, len(seen))
	for id := range seen {
		devices = append(devices, id)
	}
	sort.Strings(devices)
	return devices
}
