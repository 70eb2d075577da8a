package report

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/go-pdf/fpdf"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/phall2020-ui/inverter-data-juggle/fouling"
	"github.com/phall2020-ui/inverter-data-juggle/shading"
)

// prChart plots the actual performance ratio against the expected clean
// performance ratio over time for one inverter.
func prChart(deviceID string, rows []fouling.Row) *plot.Plot {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s performance ratio", deviceID)
	p.X.Label.Text = "Days since start"
	p.Y.Label.Text = "PR"

	var actual, expected plotter.XYs
	start := rows[0].Time
	for _, row := range rows {
		x := row.Time.Sub(start).Hours() / 24
		if !math.IsNaN(row.PR) {
			actual = append(actual, plotter.XY{X: x, Y: row.PR})
		}
		if !math.IsNaN(row.ExpectedCleanPR) {
			expected = append(expected, plotter.XY{X: x, Y: row.ExpectedCleanPR})
		}
	}

	addLine(p, "actual", actual, color.RGBA{R: 31, G: 119, B: 180, A: 255})
	addLine(p, "expected clean", expected, color.RGBA{R: 214, G: 39, B: 40, A: 255})
	return p
}

// efficiencyChart plots baseline and test season efficiency by hour of day for
// one inverter.
func efficiencyChart(deviceID string, rows []shading.ComparisonRow) *plot.Plot {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s efficiency by hour", deviceID)
	p.X.Label.Text = "Hour of day"
	p.Y.Label.Text = "Power / irradiance"

	var baseline, test plotter.XYs
	for _, row := range rows {
		if row.DeviceID != deviceID {
			continue
		}
		if !math.IsNaN(row.BaselineEfficiency) {
			baseline = append(baseline, plotter.XY{X: row.Hour, Y: row.BaselineEfficiency})
		}
		if !math.IsNaN(row.TestEfficiency) {
			test = append(test, plotter.XY{X: row.Hour, Y: row.TestEfficiency})
		}
	}

	addLine(p, "baseline season", baseline, color.RGBA{R: 31, G: 119, B: 180, A: 255})
	addLine(p, "test season", test, color.RGBA{R: 255, G: 127, B: 14, A: 255})
	return p
}

func addLine(p *plot.Plot, name string, xys plotter.XYs, colour color.RGBA) {
	if len(xys) == 0 {
		return
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return
	}
	line.Color = colour
	p.Add(line)
	p.Legend.Add(name, line)
}

// embedChart renders the plot to PNG in memory and places it on the PDF,
// adding a page when there is no room left.
func embedChart(pdf *fpdf.Fpdf, name string, p *plot.Plot) error {
	writer, err := p.WriterTo(5*vg.Inch, 3*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	var buf bytes.Buffer
	_, err = writer.WriteTo(&buf)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	const chartHeightMM = 78.0
	_, pageHeight := pdf.GetPageSize()
	if pdf.GetY()+chartHeightMM > pageHeight-15 {
		pdf.AddPage()
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, &buf)
	pdf.ImageOptions(name, 10, pdf.GetY(), 130, 0, true, opts, 0, "")
	pdf.Ln(2)
	if pdf.Err() {
		return fmt.Errorf("embed chart: %w", pdf.Error())
	}
	return nil
}
