package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/phall2020-ui/inverter-data-juggle/config"
	"github.com/phall2020-ui/inverter-data-juggle/dataplatform"
	"github.com/phall2020-ui/inverter-data-juggle/fouling"
	"github.com/phall2020-ui/inverter-data-juggle/ingest"
	"github.com/phall2020-ui/inverter-data-juggle/juggle"
	"github.com/phall2020-ui/inverter-data-juggle/plantstore"
	"github.com/phall2020-ui/inverter-data-juggle/report"
	"github.com/phall2020-ui/inverter-data-juggle/shading"
	"github.com/phall2020-ui/inverter-data-juggle/telemetry"
)

const dateLayout = "2006-01-02"

func main() {

	configPath := flag.String("config", "config.json", "path to the JSON config file")
	mode := flag.String("mode", "", "one of: fetch, fouling, shading")
	plantAlias := flag.String("plant", "", "plant alias from the config file")
	fromFlag := flag.String("from", "", "start of the window (YYYY-MM-DD)")
	toFlag := flag.String("to", "", "end of the window (YYYY-MM-DD)")
	baselineFromFlag := flag.String("baseline-from", "", "start of the shading baseline window (YYYY-MM-DD)")
	baselineToFlag := flag.String("baseline-to", "", "end of the shading baseline window (YYYY-MM-DD)")
	csvPath := flag.String("csv", "", "analyse a CSV export instead of the local store")
	baselineCSVPath := flag.String("baseline-csv", "", "baseline season CSV export for the shading analysis")
	testCSVPath := flag.String("test-csv", "", "test season CSV export for the shading analysis")
	outPath := flag.String("out", "report.pdf", "path of the PDF report to write")
	upload := flag.Bool("upload", false, "queue the analysis summaries for upload to the data platform")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	cfg, err := config.Read(*configPath)
	if err != nil {
		slog.Error("Failed to read config", "error", err)
		os.Exit(1)
	}

	plantCfg, ok := cfg.Plants[*plantAlias]
	if !ok {
		slog.Error("Unknown plant alias", "plant", *plantAlias)
		os.Exit(1)
	}

	store, err := plantstore.New(cfg.Store.Path)
	if err != nil {
		slog.Error("Failed to open plant store", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	switch *mode {
	case "fetch":
		err = runFetch(ctx, cfg, store, *plantAlias, plantCfg, *fromFlag, *toFlag)
	case "fouling":
		err = runFouling(ctx, cfg, store, *plantAlias, plantCfg, *fromFlag, *toFlag, *csvPath, *outPath, *upload)
	case "shading":
		err = runShading(ctx, cfg, store, *plantAlias, plantCfg, seasonWindows{
			baselineFrom: *baselineFromFlag,
			baselineTo:   *baselineToFlag,
			testFrom:     *fromFlag,
			testTo:       *toFlag,
			baselineCSV:  *baselineCSVPath,
			testCSV:      *testCSVPath,
		}, *outPath, *upload)
	default:
		slog.Error("Unknown mode, expected fetch, fouling or shading", "mode", *mode)
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		slog.Error("Run failed", "mode", *mode, "error", err)
		os.Exit(1)
	}

	slog.Info("Done", "mode", *mode)
}

// runFetch pulls readings for every configured device of the plant from the
// EMIG API into the local store.
func runFetch(ctx context.Context, cfg config.Config, store *plantstore.Store, alias string, plantCfg config.PlantConfig, fromStr, toStr string) error {

	from, to, err := parseWindow(fromStr, toStr)
	if err != nil {
		return err
	}

	client := juggle.New(http.Client{Timeout: 30 * time.Second}, cfg.API.BaseURL, os.Getenv("EMIG_API_KEY"))

	inverterIDs := plantCfg.InverterIDs
	if len(inverterIDs) == 0 {
		inverterIDs, err = client.Inverters(ctx, plantCfg.PlantUID)
		if err != nil {
			return fmt.Errorf("list inverters: %w", err)
		}
	}

	err = store.SavePlant(alias, plantCfg.PlantUID, inverterIDs, plantCfg.WeatherID, plantCfg.DCSizeKW)
	if err != nil {
		return fmt.Errorf("save plant registry entry: %w", err)
	}

	deviceIDs := append([]string{}, inverterIDs...)
	if plantCfg.WeatherID != "" {
		deviceIDs = append(deviceIDs, plantCfg.WeatherID)
	}

	for _, deviceID := range deviceIDs {
		raws, err := client.Readings(ctx, deviceID, from, to, 30*time.Minute)
		if err != nil {
			return fmt.Errorf("fetch readings for %s: %w", deviceID, err)
		}
		readings, powerSignal, err := telemetry.DecodeAll(raws)
		if err != nil {
			slog.Warn("No usable readings for device, skipping", "device", deviceID, "error", err)
			continue
		}
		err = store.AddReadings(plantCfg.PlantUID, readings)
		if err != nil {
			return fmt.Errorf("store readings for %s: %w", deviceID, err)
		}
		slog.Info("Fetched readings", "device", deviceID, "count", len(readings), "power_signal", powerSignal)
	}
	return nil
}

// runFouling runs the fouling analysis for every inverter of the plant and
// writes the PDF report.
func runFouling(ctx context.Context, cfg config.Config, store *plantstore.Store, alias string, plantCfg config.PlantConfig, fromStr, toStr, csvPath, outPath string, upload bool) error {

	inverters, weather, err := loadPlantReadings(store, plantCfg, fromStr, toStr, csvPath)
	if err != nil {
		return err
	}

	opts := cfg.FoulingOptions(plantCfg.DCSizeKW)

	results := make(map[string]fouling.Result)
	var summaries []plantstore.StoredSummary
	for deviceID, readings := range inverters {
		merged := ingest.MergePOA(readings, weather)

		clean, ranking := fouling.AutoSelectCleanPeriod(merged, opts)
		slog.Info("Selected clean reference period", "device", deviceID, "days", len(ranking))

		result, err := fouling.Run(merged, clean, opts)
		if errors.Is(err, fouling.ErrNoCleanReference) {
			slog.Warn("No usable clean reference period, skipping inverter", "device", deviceID)
			continue
		}
		if err != nil {
			return fmt.Errorf("fouling analysis for %s: %w", deviceID, err)
		}
		results[deviceID] = result

		if upload {
			summary, err := dataplatform.NewFoulingSummary(plantCfg.PlantUID, deviceID, time.Now().UTC(), result)
			if err != nil {
				return fmt.Errorf("package summary for %s: %w", deviceID, err)
			}
			summaries = append(summaries, summary)
		}
	}

	err = report.Write(outPath, report.Report{
		PlantAlias:  alias,
		GeneratedAt: time.Now(),
		Fouling:     results,
	})
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	slog.Info("Wrote report", "path", outPath, "inverters", len(results))

	if upload {
		return uploadSummaries(ctx, cfg, store, summaries)
	}
	return nil
}

// seasonWindows names the two seasonal inputs of the shading analysis, either
// as store windows or as CSV exports.
type seasonWindows struct {
	baselineFrom, baselineTo string
	testFrom, testTo         string
	baselineCSV, testCSV     string
}

// runShading compares the two seasons and writes the PDF report.
func runShading(ctx context.Context, cfg config.Config, store *plantstore.Store, alias string, plantCfg config.PlantConfig, windows seasonWindows, outPath string, upload bool) error {

	baseline, err := loadSeason(store, plantCfg, windows.baselineFrom, windows.baselineTo, windows.baselineCSV)
	if err != nil {
		return fmt.Errorf("baseline season: %w", err)
	}
	test, err := loadSeason(store, plantCfg, windows.testFrom, windows.testTo, windows.testCSV)
	if err != nil {
		return fmt.Errorf("test season: %w", err)
	}

	result := shading.Run(baseline, test, cfg.ShadingOptions())

	err = report.Write(outPath, report.Report{
		PlantAlias:  alias,
		GeneratedAt: time.Now(),
		Shading:     &result,
	})
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	slog.Info("Wrote report", "path", outPath, "inverters", len(result.Summary))

	if upload {
		summary, err := dataplatform.NewShadingSummary(plantCfg.PlantUID, time.Now().UTC(), result)
		if err != nil {
			return fmt.Errorf("package summary: %w", err)
		}
		return uploadSummaries(ctx, cfg, store, []plantstore.StoredSummary{summary})
	}
	return nil
}

// loadPlantReadings returns the inverter readings grouped by device plus the
// weather stream, either from a CSV export or from the local store.
func loadPlantReadings(store *plantstore.Store, plantCfg config.PlantConfig, fromStr, toStr, csvPath string) (map[string][]telemetry.Reading, []telemetry.Reading, error) {

	if csvPath != "" {
		readings, _, err := ingest.LoadFile(csvPath, ingest.Columns{})
		if err != nil {
			return nil, nil, fmt.Errorf("load csv: %w", err)
		}
		weatherID := plantCfg.WeatherID
		if weatherID == "" {
			weatherID, err = ingest.DetectWeatherDevice(readings)
			if err != nil {
				return nil, nil, fmt.Errorf("detect weather device: %w", err)
			}
		}
		inverter, weather := ingest.SplitWeather(readings, weatherID)
		return ingest.ByDevice(inverter), weather, nil
	}

	from, to, err := parseWindow(fromStr, toStr)
	if err != nil {
		return nil, nil, err
	}

	inverters := make(map[string][]telemetry.Reading)
	for _, deviceID := range plantCfg.InverterIDs {
		readings, err := store.GetReadings(plantCfg.PlantUID, deviceID, from, to)
		if err != nil {
			return nil, nil, fmt.Errorf("load readings for %s: %w", deviceID, err)
		}
		inverters[deviceID] = readings
	}

	weather, err := store.GetReadings(plantCfg.PlantUID, plantCfg.WeatherID, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("load weather readings: %w", err)
	}
	return inverters, weather, nil
}

func loadSeason(store *plantstore.Store, plantCfg config.PlantConfig, fromStr, toStr, csvPath string) (shading.SeasonInput, error) {
	inverters, weather, err := loadPlantReadings(store, plantCfg, fromStr, toStr, csvPath)
	if err != nil {
		return shading.SeasonInput{}, err
	}

	var inverter []telemetry.Reading
	for _, readings := range inverters {
		inverter = append(inverter, readings...)
	}
	return shading.SeasonInput{Inverter: inverter, Weather: weather}, nil
}

// uploadSummaries runs the data platform long enough to push the given
// summaries to Supabase.
func uploadSummaries(ctx context.Context, cfg config.Config, store *plantstore.Store, summaries []plantstore.StoredSummary) error {

	uploadInterval := time.Duration(cfg.DataPlatform.UploadIntervalSecs) * time.Second
	if uploadInterval <= 0 {
		uploadInterval = 5 * time.Second
	}

	dataPlatform, err := dataplatform.New(
		cfg.DataPlatform.Supabase.Url,
		os.Getenv("SUPABASE_KEY"),
		cfg.DataPlatform.Supabase.Schema,
		uploadInterval,
		store,
	)
	if err != nil {
		return fmt.Errorf("create data platform: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go dataPlatform.Run(runCtx)

	for _, summary := range summaries {
		select {
		case dataPlatform.Summaries <- summary:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	// give the upload ticker a chance to fire before exiting
	select {
	case <-time.After(uploadInterval + time.Second):
	case <-ctx.Done():
	}
	return nil
}

func parseWindow(fromStr, toStr string) (time.Time, time.Time, error) {
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("both -from and -to are required")
	}
	from, err := time.Parse(dateLayout, fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse -from: %w", err)
	}
	to, err := time.Parse(dateLayout, toStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse -to: %w", err)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("-to is before -from")
	}
	// make the end date inclusive
	return from, to.Add(24*time.Hour - time.Nanosecond), nil
}
