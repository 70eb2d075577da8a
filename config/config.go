package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/phall2020-ui/inverter-data-juggle/fouling"
	"github.com/phall2020-ui/inverter-data-juggle/shading"
)

type APIConfig struct {
	BaseURL string `json:"baseUrl"`
	// key is specified via env var
}

type StoreConfig struct {
	Path string `json:"path"`
}

type SupabaseConfig struct {
	Url string `json:"url"`
	// key is specified via env var
	Schema string `json:"schema"`
}

type DataPlatformConfig struct {
	UploadIntervalSecs int            `json:"uploadIntervalSecs"`
	Supabase           SupabaseConfig `json:"supabase"`
}

type PlantConfig struct {
	PlantUID    string   `json:"plantUid"`
	InverterIDs []string `json:"inverterIds"`
	WeatherID   string   `json:"weatherId"`
	DCSizeKW    float64  `json:"dcSizeKw"`
}

// FoulingConfig optionally overrides the analysis defaults, absent fields keep
// the default value.
type FoulingConfig struct {
	MinPOA                *float64 `json:"minPoa"`
	BinWidth              *float64 `json:"binWidth"`
	MinBinPoints          *int     `json:"minBinPoints"`
	WindowDays            *int     `json:"windowDays"`
	CleaningJumpThreshold *float64 `json:"cleaningJumpThreshold"`
	CleanDays             *int     `json:"cleanDays"`
	MinPointsPerDay       *int     `json:"minPointsPerDay"`
}

// ShadingConfig optionally overrides the analysis defaults.
type ShadingConfig struct {
	MinIrradiance    *float64 `json:"minIrradiance"`
	MinPointsPerHour *int     `json:"minPointsPerHour"`
}

type Config struct {
	API          APIConfig              `json:"api"`
	Store        StoreConfig            `json:"store"`
	DataPlatform DataPlatformConfig     `json:"dataPlatform"`
	Plants       map[string]PlantConfig `json:"plants"`
	Fouling      FoulingConfig          `json:"fouling"`
	Shading      ShadingConfig          `json:"shading"`
}

func Read(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	err = json.Unmarshal(content, &config)
	if err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return config, nil
}

// FoulingOptions resolves the fouling analysis options for a plant of the
// given DC size, applying any configured overrides on top of the defaults.
func (c Config) FoulingOptions(dcSizeKW float64) fouling.Options {
	opts := fouling.DefaultOptions(dcSizeKW)
	if c.Fouling.MinPOA != nil {
		opts.MinPOA = *c.Fouling.MinPOA
	}
	if c.Fouling.BinWidth != nil {
		opts.BinWidth = *c.Fouling.BinWidth
	}
	if c.Fouling.MinBinPoints != nil {
		opts.MinBinPoints = *c.Fouling.MinBinPoints
	}
	if c.Fouling.WindowDays != nil {
		opts.WindowDays = *c.Fouling.WindowDays
	}
	if c.Fouling.CleaningJumpThreshold != nil {
		opts.CleaningJumpThreshold = *c.Fouling.CleaningJumpThreshold
	}
	if c.Fouling.CleanDays != nil {
		opts.CleanDays = *c.Fouling.CleanDays
	}
	if c.Fouling.MinPointsPerDay != nil {
		opts.MinPointsPerDay = *c.Fouling.MinPointsPerDay
	}
	return opts
}

// ShadingOptions resolves the shading analysis options, applying any
// configured overrides on top of the defaults.
func (c Config) ShadingOptions() shading.Options {
	opts := shading.DefaultOptions()
	if c.Shading.MinIrradiance != nil {
		opts.MinIrradiance = *c.Shading.MinIrradiance
	}
	if c.Shading.MinPointsPerHour != nil {
		opts.MinPointsPerHour = *c.Shading.MinPointsPerHour
	}
	return opts
}
