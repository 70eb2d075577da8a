package shading

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phall2020-ui/inverter-data-juggle/telemetry"
)

// season builds two days of half-hourly (inverter, weather) readings covering
// 09:00-15:00, with constant irradiance and the power that yields the given
// normalised efficiency.
func season(days []string, device string, irradiance, efficiency float64) SeasonInput {
	var input SeasonInput
	for _, day := range days {
		for hour := 9.0; hour <= 15.0; hour += 0.5 {
			ts := fmt.Sprintf("%sT%02d:%02d:00Z", day, int(hour), int(hour*60)%60)

			w := telemetry.NewReading(mustParseTime(ts), "WETH1")
			w.POA = irradiance
			input.Weather = append(input.Weather, w)

			inv := telemetry.NewReading(mustParseTime(ts), device)
			inv.Power = efficiency * irradiance
			input.Inverter = append(input.Inverter, inv)
		}
	}
	return input
}

func TestRunModerateShading(t *testing.T) {

	summer := season([]string{"2025-06-21", "2025-06-22"}, "INV1", 800, 1.0)
	winter := season([]string{"2025-12-20", "2025-12-21"}, "INV1", 400, 0.7)

	result := Run(summer, winter, DefaultOptions())

	// 13 half-hour slots overlap between the two seasons
	require.Len(t, result.Comparison, 13)
	for _, row := range result.Comparison {
		assert.InDelta(t, 0.7, row.Ratio, 1e-12)
		assert.Equal(t, 2, row.BaselinePoints)
		assert.Equal(t, 2, row.TestPoints)
	}

	require.Len(t, result.Summary, 1)
	summary := result.Summary[0]
	assert.Equal(t, "INV1", summary.DeviceID)
	assert.InDelta(t, 0.70, summary.MedianRatio, 1e-12)
	assert.Equal(t, ClassificationModerate, summary.Classification)
}

func TestRunUnshadedPlant(t *testing.T) {

	summer := season([]string{"2025-06-21", "2025-06-22"}, "INV1", 800, 0.5)
	winter := season([]string{"2025-12-20", "2025-12-21"}, "INV1", 300, 0.5)

	result := Run(summer, winter, DefaultOptions())

	require.Len(t, result.Summary, 1)
	assert.Equal(t, ClassificationNone, result.Summary[0].Classification)
	assert.InDelta(t, 1.0, result.Summary[0].MedianRatio, 1e-12)
}

func TestRunSeasonsWithoutOverlapProduceNoRows(t *testing.T) {

	// morning-only summer vs midday-only winter: nothing joins
	summer := season([]string{"2025-06-21", "2025-06-22"}, "INV1", 800, 1.0)
	summer.Inverter = summer.Inverter[:2] // keep 09:00 and 09:30 of day one only
	summer.Weather = summer.Weather[:2]

	winter := season([]string{"2025-12-20", "2025-12-21"}, "INV1", 400, 0.7)
	winter.Inverter = winter.Inverter[2:4] // 10:00 and 10:30
	winter.Weather = winter.Weather[2:4]

	result := Run(summer, winter, DefaultOptions())
	assert.Empty(t, result.Comparison)
	assert.Empty(t, result.Summary)
}
