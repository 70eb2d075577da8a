// Package report renders the results of the fouling and shading analyses into
// a PDF document for operators.
package report

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/phall2020-ui/inverter-data-juggle/fouling"
	"github.com/phall2020-ui/inverter-data-juggle/shading"
)

// Report collects everything that goes into one document. Either analysis may
// be absent, the corresponding section is skipped.
type Report struct {
	PlantAlias  string
	GeneratedAt time.Time
	Fouling     map[string]fouling.Result // keyed by inverter EMIG ID
	Shading     *shading.Result
}

// Write renders the report to a PDF file at the given path.
func Write(path string, report Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Performance diagnostics - %s", report.PlantAlias), false)
	pdf.AddPage()

	title(pdf, fmt.Sprintf("Performance diagnostics: %s", report.PlantAlias))
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s", report.GeneratedAt.Format("2006-01-02 15:04 MST")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if len(report.Fouling) > 0 {
		err := writeFoulingSection(pdf, report.Fouling)
		if err != nil {
			return fmt.Errorf("fouling section: %w", err)
		}
	}

	if report.Shading != nil {
		err := writeShadingSection(pdf, report.Shading)
		if err != nil {
			return fmt.Errorf("shading section: %w", err)
		}
	}

	err := pdf.OutputFileAndClose(path)
	if err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func writeFoulingSection(pdf *fpdf.Fpdf, results map[string]fouling.Result) error {
	heading(pdf, "Fouling")

	tableHeader(pdf, []string{"Inverter", "Fouling index", "Level", "Energy loss (kWh/day)", "Cleaning events"})
	for _, id := range sortedKeys(results) {
		result := results[id]
		tableRow(pdf, []string{
			id,
			formatMetric(result.FoulingIndex, "%.3f"),
			string(result.FoulingLevel),
			formatMetric(result.EnergyLossKWhPerDay, "%.1f"),
			fmt.Sprintf("%d", result.CleaningEventsDetected),
		})
	}
	pdf.Ln(4)

	for _, id := range sortedKeys(results) {
		result := results[id]
		if len(result.Rows) == 0 {
			continue
		}
		err := embedChart(pdf, fmt.Sprintf("pr-%s", id), prChart(id, result.Rows))
		if err != nil {
			return fmt.Errorf("inverter %s performance chart: %w", id, err)
		}
	}
	return nil
}

func writeShadingSection(pdf *fpdf.Fpdf, result *shading.Result) error {
	heading(pdf, "Shading")

	tableHeader(pdf, []string{"Inverter", "Median seasonal ratio", "Classification"})
	for _, summary := range result.Summary {
		tableRow(pdf, []string{
			summary.DeviceID,
			formatMetric(summary.MedianRatio, "%.3f"),
			string(summary.Classification),
		})
	}
	pdf.Ln(4)

	for _, device := range comparisonDevices(result.Comparison) {
		err := embedChart(pdf, fmt.Sprintf("shading-%s", device), efficiencyChart(device, result.Comparison))
		if err != nil {
			return fmt.Errorf("inverter %s efficiency chart: %w", device, err)
		}
	}
	return nil
}

func title(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, text, "", 1, "L", false, 0, "")
}

func heading(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 9, text, "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func tableHeader(pdf *fpdf.Fpdf, cells []string) {
	pdf.SetFont("Helvetica", "B", 9)
	writeCells(pdf, cells)
}

func tableRow(pdf *fpdf.Fpdf, cells []string) {
	pdf.SetFont("Helvetica", "", 9)
	writeCells(pdf, cells)
}

func writeCells(pdf *fpdf.Fpdf, cells []string) {
	width := 190.0 / float64(len(cells))
	for _, cell := range cells {
		pdf.CellFormat(width, 6, cell, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func formatMetric(v float64, format string) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf(format, v)
}

func sortedKeys(results map[string]fouling.Result) []string {
	keys := make([]string, 0, len(results))
	for key := range results {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func comparisonDevices(rows []shading.ComparisonRow) []string {
	seen := make(map[string]bool)
	var devices []string
	for _, row := range rows {
		if !seen[row.DeviceID] {
			seen[row.DeviceID] = true
			devices = append(devices, row.DeviceID)
		}
	}
	sort.Strings(devices)
	return devices
}
