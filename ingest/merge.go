package ingest

import (
	"time"

	"github.com/phall2020-ui/inverter-data-juggle/telemetry"
)

// MergePOA copies the plane-of-array irradiance from the weather stream onto
// the inverter readings, matching on exact timestamp. Inverter readings with
// no matching weather sample keep a NaN POA and drop out of the analyses at
// their irradiance thresholds.
func MergePOA(inverter, weather []telemetry.Reading) []telemetry.Reading {
	poaByTime := make(map[time.Time]float64, len(weather))
	for _, w := range weather {
		if w.HasPOA() {
			poaByTime[w.Time] = w.POA
		}
	}

	merged := make([]telemetry.Reading, len(inverter))
	for i, r := range inverter {
		if poa, ok := poaByTime[r.Time]; ok {
			r.POA = poa
		}
		merged[i] = r
	}
	return merged
}

// ByDevice groups readings by their device ID, preserving order within each
// group.
func ByDevice(readings []telemetry.Reading) map[string][]telemetry.Reading {
	groups := make(map[string][]telemetry.Reading)
	for _, r := range readings {
		groups[r.DeviceID] = append(groups[r.DeviceID], r)
	}
	return groups
}
