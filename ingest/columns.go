// Package ingest turns raw CSV exports into typed telemetry readings. All of
// the messy, format-dependent work lives here: heuristic column guessing,
// power-signal preference, weather-device detection. The analysis packages
// only ever see a fully-resolved column mapping and typed readings.
package ingest

import (
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

// Columns is the fully-resolved mapping from the engine's standard fields to
// the dataset's actual column names. Optional fields are empty when the
// dataset does not carry them.
type Columns struct {
	Timestamp  string
	Device     string
	POA        string
	Power      string
	DCPower    string
	ModuleTemp string
}

// powerColumnPreferences is the ordered list of power-like columns tried
// first, before falling back to keyword guessing. It mirrors the signal
// preference order used for API payloads.
var powerColumnPreferences = []string{"apparentPower", "activePower", "dcCurrent", "exportEnergy"}

var (
	timestampKeywords = []string{"timestamp", "time", "date", "datetime"}
	powerKeywords     = []string{"ac power", "ac_power", "ac kw", "ac_kw", "active power", "p_ac", "pac", "power_kw", "kw", "power"}
	poaKeywords       = []string{"poa", "plane", "tilt", "irr", "irradiance", "w/m2", "wm2"}
	deviceKeywords    = []string{"emigid", "emig", "device", "inverter_id", "meter"}
	dcPowerKeywords   = []string{"dc power", "dc_power", "dc kw", "p_dc", "pdc"}
	tempKeywords      = []string{"module temp", "mod temp", "cell temp", "pv temp", "temperature"}
)

// GuessColumn picks the most likely column from `names` given a list of
// candidate keywords: columns are scored by how many keywords appear in the
// (lower-cased) column name, and at least one match is required.
func GuessColumn(names []string, keywords []string) (string, bool) {
	best := ""
	bestScore := 0
	for _, name := range names {
		lower := strings.ToLower(name)
		score := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = name
		}
	}
	return best, bestScore > 0
}

// Resolve fills in the unset fields of `explicit` by inspecting the dataframe:
// exact standard names first, then the power-column preference order, then
// keyword guessing. Timestamp, POA and power are mandatory; the rest resolve
// to empty when absent, and downstream computations simply skip them.
func Resolve(df dataframe.DataFrame, explicit Columns) (Columns, error) {
	names := df.Names()
	resolved := explicit

	if resolved.Timestamp == "" {
		resolved.Timestamp, _ = GuessColumn(names, timestampKeywords)
	}
	if resolved.Timestamp == "" {
		return Columns{}, fmt.Errorf("could not find a timestamp column in %v", names)
	}

	if resolved.Power == "" {
		resolved.Power = preferredPowerColumn(df)
	}
	if resolved.Power == "" {
		resolved.Power, _ = GuessColumn(names, powerKeywords)
	}
	if resolved.Power == "" {
		return Columns{}, fmt.Errorf("could not find a power column, checked preferences %v and keywords", powerColumnPreferences)
	}

	if resolved.POA == "" {
		resolved.POA, _ = GuessColumn(names, poaKeywords)
	}
	if resolved.POA == "" {
		return Columns{}, fmt.Errorf("could not find an irradiance column in %v", names)
	}

	if resolved.Device == "" {
		resolved.Device, _ = GuessColumn(names, deviceKeywords)
	}
	if resolved.DCPower == "" {
		resolved.DCPower, _ = GuessColumn(names, dcPowerKeywords)
	}
	if resolved.ModuleTemp == "" {
		resolved.ModuleTemp, _ = GuessColumn(names, tempKeywords)
	}

	return resolved, nil
}

// preferredPowerColumn returns the first preference-order power column that
// exists and actually carries data (a non-zero sum), mirroring the behaviour
// of the API-payload signal resolution.
func preferredPowerColumn(df dataframe.DataFrame) string {
	names := make(map[string]bool, len(df.Names()))
	for _, name := range df.Names() {
		names[name] = true
	}

	for _, candidate := range powerColumnPreferences {
		if !names[candidate] {
			continue
		}
		sum := 0.0
		for _, v := range df.Col(candidate).Float() {
			if v == v { // skip NaN
				sum += v
			}
		}
		if sum != 0 {
			return candidate
		}
	}
	return ""
}
