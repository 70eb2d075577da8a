package shading

import (
	"math"
	"testing"
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

func inverterReading(ts, device string, power float64) telemetry.Reading {
	r := telemetry.NewReading(mustParseTime(ts), device)
	r.Power = power
	return r
}

func weatherReading(ts string, poa float64) telemetry.Reading {
	r := telemetry.NewReading(mustParseTime(ts), "WETH1")
	r.POA = poa
	return r
}

func TestJoinWithIrradiance(t *testing.T) {

	opts := DefaultOptions()

	inverter := []telemetry.Reading{
		inverterReading("2025-06-21T10:30:00Z", "INV1", 400),
		inverterReading("2025-06-21T11:00:00Z", "INV1", 420), // no weather at this instant
		inverterReading("2025-06-21T11:30:00Z", "INV1", 0),   // not producing
		inverterReading("2025-06-21T12:00:00Z", "INV1", 430),
	}
	weather := []telemetry.Reading{
		weatherReading("2025-06-21T10:30:00Z", 800),
		weatherReading("2025-06-21T11:30:00Z", 820),
		weatherReading("2025-06-21T12:00:00Z", 40), // below the irradiance threshold
	}

	samples := JoinWithIrradiance(inverter, weather, opts)

	if len(samples) != 1 {
		t.Fatalf("Got %d samples, expected 1", len(samples))
	}
	s := samples[0]
	if s.Hour != 10.5 {
		t.Errorf("Got hour %v, expected 10.5", s.Hour)
	}
	if s.Efficiency != 0.5 {
		t.Errorf("Got efficiency %v, expected 0.5", s.Efficiency)
	}
}

func TestBuildProfile(t *testing.T) {

	opts := DefaultOptions()

	samples := []Sample{
		{DeviceID: "INV1", Hour: 10.5, Efficiency: 0.50},
		{DeviceID: "INV1", Hour: 10.5, Efficiency: 0.54},
		{DeviceID: "INV1", Hour: 10.5, Efficiency: 0.52},
		{DeviceID: "INV1", Hour: 11.0, Efficiency: 0.60}, // single sample, below MinPointsPerHour
		{DeviceID: "INV2", Hour: 10.5, Efficiency: 0.40},
		{DeviceID: "INV2", Hour: 10.5, Efficiency: 0.42},
	}

	profile := BuildProfile(samples, opts)

	slot, ok := profile[SlotKey{DeviceID: "INV1", Hour: 10.5}]
	if !ok {
		t.Fatalf("Expected a slot for INV1 at 10.5")
	}
	if slot.Efficiency != 0.52 || slot.Points != 3 {
		t.Errorf("Got %+v, expected median 0.52 over 3 points", slot)
	}

	if _, ok := profile[SlotKey{DeviceID: "INV1", Hour: 11.0}]; ok {
		t.Errorf("A single-sample bin must be suppressed")
	}
	if slot := profile[SlotKey{DeviceID: "INV2", Hour: 10.5}]; math.Abs(slot.Efficiency-0.41) > 1e-12 {
		t.Errorf("Got %v, expected the even-count median 0.41", slot.Efficiency)
	}

	devices := profile.Devices()
	if len(devices) != 2 || devices[0] != "INV1" || devices[1] != "INV2" {
		t.Errorf("Got devices %v, expected [INV1 INV2]", devices)
	}
}

func TestJoinWithIrradianceMissingPower(t *testing.T) {
	opts := DefaultOptions()
	inverter := []telemetry.Reading{
		{Time: mustParseTime("2025-06-21T10:30:00Z"), DeviceID: "INV1", Power: math.NaN(), POA: math.NaN()},
	}
	weather := []telemetry.Reading{weatherReading("2025-06-21T10:30:00Z", 800)}

	if samples := JoinWithIrradiance(inverter, weather, opts); len(samples) != 0 {
		t.Errorf("Got %d samples, expected readings without power to be dropped", len(samples))
	}
}
