package ingest

import (
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuessColumn(t *testing.T) {

	type subTest struct {
		name     string
		columns  []string
		keywords []string
		expected string
		found    bool
	}

	subTests := []subTest{
		{"exact", []string{"timestamp", "value"}, timestampKeywords, "timestamp", true},
		{"case-insensitive", []string{"Date/Time", "AC Power (kW)"}, timestampKeywords, "Date/Time", true},
		{"highest-score-wins", []string{"kw", "AC Power kW"}, powerKeywords, "AC Power kW", true},
		{"no-match", []string{"foo", "bar"}, poaKeywords, "", false},
	}
	for _, subTest := range subTests {
		t.Run(subTest.name, func(t *testing.T) {
			actual, found := GuessColumn(subTest.columns, subTest.keywords)
			assert.Equal(t, subTest.found, found)
			assert.Equal(t, subTest.expected, actual)
		})
	}
}

func TestLoadResolvesHeuristically(t *testing.T) {

	csv := strings.Join([]string{
		"Date/Time,AC Power (kW),POA Irradiance (W/m2)",
		"2025-06-21 10:00:00,410,650",
		"2025-06-21 10:30:00,425,700",
		"not-a-timestamp,1,1",
	}, "\n")

	readings, columns, err := Load(strings.NewReader(csv), Columns{})
	require.NoError(t, err)

	assert.Equal(t, "Date/Time", columns.Timestamp)
	assert.Equal(t, "AC Power (kW)", columns.Power)
	assert.Equal(t, "POA Irradiance (W/m2)", columns.POA)

	require.Len(t, readings, 2, "the unparseable row must be dropped")
	assert.Equal(t, 410.0, readings[0].Power)
	assert.Equal(t, 650.0, readings[0].POA)
	assert.Equal(t, 10, readings[0].Time.Hour())
}

func TestResolvePowerPreferenceOrder(t *testing.T) {

	// apparentPower exists but is all zeros, so activePower must win
	csv := strings.Join([]string{
		"timestamp,emigId,apparentPower,activePower,poaIrradiance",
		"2025-06-21 10:00:00,INV1,0,410,650",
		"2025-06-21 10:30:00,INV1,0,425,700",
	}, "\n")

	df := dataframe.ReadCSV(strings.NewReader(csv))
	require.NoError(t, df.Error())

	columns, err := Resolve(df, Columns{})
	require.NoError(t, err)
	assert.Equal(t, "activePower", columns.Power)
	assert.Equal(t, "emigId", columns.Device)
}

func TestDetectWeatherDevice(t *testing.T) {

	csv := strings.Join([]string{
		"timestamp,emigId,activePower,poaIrradiance",
		"2025-06-21 10:00:00,INV1,410,",
		"2025-06-21 10:00:00,WETH1,,650",
		"2025-06-21 10:30:00,WETH1,,700",
	}, "\n")

	readings, _, err := Load(strings.NewReader(csv), Columns{})
	require.NoError(t, err)

	weatherID, err := DetectWeatherDevice(readings)
	require.NoError(t, err)
	assert.Equal(t, "WETH1", weatherID)

	inverter, weather := SplitWeather(readings, weatherID)
	assert.Len(t, inverter, 1)
	assert.Len(t, weather, 2)
}

func TestDetectWeatherDeviceMostDataWins(t *testing.T) {

	csv := strings.Join([]string{
		"timestamp,emigId,activePower,poaIrradiance",
		"2025-06-21 10:00:00,A,1,650",
		"2025-06-21 10:30:00,B,1,700",
		"2025-06-21 11:00:00,B,1,710",
	}, "\n")

	readings, _, err := Load(strings.NewReader(csv), Columns{})
	require.NoError(t, err)

	weatherID, err := DetectWeatherDevice(readings)
	require.NoError(t, err)
	assert.Equal(t, "B", weatherID, "the device with the most irradiance data wins")
}
