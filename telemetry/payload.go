package telemetry

import (
	"fmt"
	"time"
)

// PowerSignal names one of the power-like columns that the telemetry API can
// report. Not every plant exports every signal, so callers resolve an ordered
// preference list into a single canonical signal before any analysis runs.
type PowerSignal string

const (
	SignalApparentPower PowerSignal = "apparentPower"
	SignalActivePower   PowerSignal = "activePower"
	SignalDCCurrent     PowerSignal = "dcCurrent"
	SignalExportEnergy  PowerSignal = "exportEnergy"
)

// DefaultPowerPreferences is the order in which power signals are tried when
// resolving the canonical power field.
var DefaultPowerPreferences = []PowerSignal{
	SignalApparentPower,
	SignalActivePower,
	SignalDCCurrent,
	SignalExportEnergy,
}

// RawReading is the wire representation of a single reading as returned by the
// telemetry API. Fields that the device did not report are nil. It is decoded
// into a typed Reading exactly once, at ingestion, so that the analysis
// packages never see a partially-typed row.
type RawReading struct {
	Timestamp     string   `json:"timestamp"`
	EmigID        string   `json:"emigId"`
	POAIrradiance *float64 `json:"poaIrradiance"`
	ApparentPower *float64 `json:"apparentPower"`
	ActivePower   *float64 `json:"activePower"`
	DCCurrent     *float64 `json:"dcCurrent"`
	ExportEnergy  *float64 `json:"exportEnergy"`
	DCPower       *float64 `json:"dcPower"`
	ModuleTemp    *float64 `json:"moduleTemp"`
}

// signal returns the value of the given power signal, or nil if the device did
// not report it.
func (r RawReading) signal(s PowerSignal) *float64 {
	switch s {
	case SignalApparentPower:
		return r.ApparentPower
	case SignalActivePower:
		return r.ActivePower
	case SignalDCCurrent:
		return r.DCCurrent
	case SignalExportEnergy:
		return r.ExportEnergy
	}
	return nil
}

// ResolvePowerSignal picks the first signal from `preferences` that is present
// with at least one non-zero value across `raws`. An error is returned when no
// candidate signal carries data, since no analysis can run without a power
// series.
func ResolvePowerSignal(raws []RawReading, preferences []PowerSignal) (PowerSignal, error) {
	for _, pref := range preferences {
		for _, raw := range raws {
			if v := raw.signal(pref); v != nil && *v != 0 {
				return pref, nil
			}
		}
	}
	return "", fmt.Errorf("no usable power signal found, checked: %v", preferences)
}

// Decode converts a RawReading into a typed Reading, taking the canonical
// power value from the given signal. Timestamps are parsed as RFC3339 first
// and fall back to the API's space-separated layout.
func (r RawReading) Decode(signal PowerSignal) (Reading, error) {
	t, err := parseTimestamp(r.Timestamp)
	if err != nil {
		return Reading{}, fmt.Errorf("parse timestamp %q: %w", r.Timestamp, err)
	}

	reading := NewReading(t, r.EmigID)
	if r.POAIrradiance != nil {
		reading.POA = *r.POAIrradiance
	}
	if v := r.signal(signal); v != nil {
		reading.Power = *v
	}
	if r.DCPower != nil {
		reading.DCPower = *r.DCPower
	}
	if r.ModuleTemp != nil {
		reading.ModuleTemp = *r.ModuleTemp
	}
	return reading, nil
}

// DecodeAll converts a batch of raw readings, resolving the power signal from
// the default preference order. Readings with unparseable timestamps are
// dropped rather than failing the whole batch.
func DecodeAll(raws []RawReading) ([]Reading, PowerSignal, error) {
	signal, err := ResolvePowerSignal(raws, DefaultPowerPreferences)
	if err != nil {
		return nil, "", err
	}

	readings := make([]Reading, 0, len(raws))
	for _, raw := range raws {
		reading, err := raw.Decode(signal)
		if err != nil {
			continue
		}
		readings = append(readings, reading)
	}
	return readings, signal, nil
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

func parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
