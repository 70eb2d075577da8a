package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"

	"github.com/phall2020-ui/inverter-data-juggle/telemetry"
)

// Load reads a CSV export, resolves its columns and returns typed readings.
func Load(r io.Reader, explicit Columns) ([]telemetry.Reading, Columns, error) {
	df := dataframe.ReadCSV(r)
	if df.Error() != nil {
		return nil, Columns{}, fmt.Errorf("read csv: %w", df.Error())
	}

	columns, err := Resolve(df, explicit)
	if err != nil {
		return nil, Columns{}, err
	}

	readings, err := Readings(df, columns)
	if err != nil {
		return nil, Columns{}, err
	}

	slog.Debug("Loaded CSV", "rows", len(readings), "timestamp_col", columns.Timestamp, "power_col", columns.Power, "poa_col", columns.POA)
	return readings, columns, nil
}

// LoadFile is Load over a file on disk.
func LoadFile(path string, explicit Columns) ([]telemetry.Reading, Columns, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Columns{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	readings, columns, err := Load(f, explicit)
	if err != nil {
		return nil, Columns{}, fmt.Errorf("load %s: %w", path, err)
	}
	return readings, columns, nil
}

// Readings converts a dataframe into typed readings using the resolved column
// mapping. Rows whose timestamp cannot be parsed are dropped; unparseable
// numeric cells decode as NaN, the canonical missing-measurement value.
func Readings(df dataframe.DataFrame, columns Columns) ([]telemetry.Reading, error) {
	timestamps := df.Col(columns.Timestamp).Records()
	poa := df.Col(columns.POA).Float()
	power := df.Col(columns.Power).Float()

	var devices []string
	if columns.Device != "" {
		devices = df.Col(columns.Device).Records()
	}
	var dcPower, moduleTemp []float64
	if columns.DCPower != "" {
		dcPower = df.Col(columns.DCPower).Float()
	}
	if columns.ModuleTemp != "" {
		moduleTemp = df.Col(columns.ModuleTemp).Float()
	}

	readings := make([]telemetry.Reading, 0, df.Nrow())
	dropped := 0
	for i := 0; i < df.Nrow(); i++ {
		t, err := parseTimestamp(timestamps[i])
		if err != nil {
			dropped++
			continue
		}

		device := ""
		if devices != nil {
			device = devices[i]
		}

		reading := telemetry.NewReading(t, device)
		reading.POA = poa[i]
		reading.Power = power[i]
		if dcPower != nil {
			reading.DCPower = dcPower[i]
		}
		if moduleTemp != nil {
			reading.ModuleTemp = moduleTemp[i]
		}
		readings = append(readings, reading)
	}

	if dropped > 0 {
		slog.Warn("Dropped rows with unparseable timestamps", "dropped", dropped, "kept", len(readings))
	}
	if len(readings) == 0 {
		return nil, fmt.Errorf("no rows with a parseable timestamp in column %q", columns.Timestamp)
	}
	return readings, nil
}

var csvTimestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"02/01/2006 15:04",
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range csvTimestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// DetectWeatherDevice scans the readings for the device that actually carries
// irradiance data. When several devices do, IDs containing "WETH" win, then
// the device with the most irradiance observations (the most reliable signal
// is "who has the data").
func DetectWeatherDevice(readings []telemetry.Reading) (string, error) {
	counts := make(map[string]int)
	for _, r := range readings {
		if r.HasPOA() && r.POA > 0 {
			counts[r.DeviceID]++
		}
	}
	if len(counts) == 0 {
		return "", fmt.Errorf("no device carries irradiance data")
	}

	best := ""
	bestCount := -1
	for id, count := range counts {
		if strings.Contains(id, "WETH") {
			return id, nil
		}
		if count > bestCount || (count == bestCount && id < best) {
			best = id
			bestCount = count
		}
	}
	return best, nil
}

// SplitWeather separates the weather-station readings from the inverter
// readings.
func SplitWeather(readings []telemetry.Reading, weatherID string) (inverter, weather []telemetry.Reading) {
	for _, r := range readings {
		if r.DeviceID == weatherID {
			weather = append(weather, r)
		} else {
			inverter = append(inverter, r)
		}
	}
	return inverter, weather
}
