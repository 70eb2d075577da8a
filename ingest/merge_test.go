package ingest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/phall2020-ui/inverter-data-juggle/telemetry"
)

func TestMergePOA(t *testing.T) {

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(30 * time.Minute)
	t2 := t0.Add(60 * time.Minute)

	inv1 := telemetry.NewReading(t0, "INV1")
	inv1.Power = 50
	inv2 := telemetry.NewReading(t1, "INV1")
	inv2.Power = 52
	inv3 := telemetry.NewReading(t2, "INV1")
	inv3.Power = 48

	weth1 := telemetry.NewReading(t0, "WETH1")
	weth1.POA = 600
	weth2 := telemetry.NewReading(t1, "WETH1")
	weth2.POA = 650
	// no weather sample at t2

	merged := MergePOA([]telemetry.Reading{inv1, inv2, inv3}, []telemetry.Reading{weth1, weth2})

	assert.InDelta(t, 600, merged[0].POA, 1e-12)
	assert.InDelta(t, 650, merged[1].POA, 1e-12)
	assert.True(t, math.IsNaN(merged[2].POA), "unmatched timestamps keep an undefined POA")
	assert.InDelta(t, 50, merged[0].Power, 1e-12, "power passes through unchanged")
}

func TestByDevice(t *testing.T) {

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	readings := []telemetry.Reading{
		telemetry.NewReading(t0, "INV1"),
		telemetry.NewReading(t0, "INV2"),
		telemetry.NewReading(t0.Add(30*time.Minute), "INV1"),
	}

	groups := ByDevice(readings)
	assert.Len(t, groups, 2)
	assert.Len(t, groups["INV1"], 2)
	assert.Len(t, groups["INV2"], 1)
}
