package shading

import (
	"math"
	"sort"

	"github.com/phall2020-ui/inverter-data-juggle/stats"
)

// ComparisonRow is one (inverter, hour) slot present in both seasonal
// profiles.
type ComparisonRow struct {
	DeviceID           string
	Hour               float64
	BaselineEfficiency float64
	TestEfficiency     float64
	BaselinePoints     int
	TestPoints         int
	Ratio              float64 // test / baseline; NaN when the baseline is zero
	Delta              float64 // baseline - test
}

// Classification is a qualitative per-inverter shading bucket.
type Classification string

const (
	ClassificationNone         Classification = "No Shading"
	ClassificationMild         Classification = "Mild Shading"
	ClassificationModerate     Classification = "Moderate Shading"
	ClassificationSevere       Classification = "Severe Shading"
	ClassificationInsufficient Classification = "Insufficient Data"
)

// Summary is the per-inverter reduction of the comparison over the core
// daylight window.
type Summary struct {
	DeviceID       string
	MedianRatio    float64
	Classification Classification
}

// CompareProfiles aligns the two seasonal profiles by (inverter, hour) with an
// inner join: slots present in only one season are dropped, not imputed. The
// rows come back ordered by device then hour so the output is deterministic.
func CompareProfiles(baseline, test Profile) []ComparisonRow {
	rows := make([]ComparisonRow, 0, len(test))
	for key, baseSlot := range baseline {
		testSlot, ok := test[key]
		if !ok {
			continue
		}

		ratio := math.NaN()
		if baseSlot.Efficiency != 0 {
			ratio = testSlot.Efficiency / baseSlot.Efficiency
		}

		rows = append(rows, ComparisonRow{
			DeviceID:           key.DeviceID,
			Hour:               key.Hour,
			BaselineEfficiency: baseSlot.Efficiency,
			TestEfficiency:     testSlot.Efficiency,
			BaselinePoints:     baseSlot.Points,
			TestPoints:         testSlot.Points,
			Ratio:              ratio,
			Delta:              baseSlot.Efficiency - testSlot.Efficiency,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DeviceID != rows[j].DeviceID {
			return rows[i].DeviceID < rows[j].DeviceID
		}
		return rows[i].Hour < rows[j].Hour
	})
	return rows
}

// Summarise reduces the comparison to one classification per inverter: the
// median ratio over the core daylight window (robust against a single noisy
// half-hour), mapped to a qualitative bucket. Inverters that appear in the
// comparison but have no slot inside the window are still reported, as
// Insufficient Data, so that consumers can tell "known unshaded" apart from
// "unknown".
func Summarise(rows []ComparisonRow) []Summary {
	ratiosByDevice := make(map[string][]float64)
	for _, row := range rows {
		if _, ok := ratiosByDevice[row.DeviceID]; !ok {
			ratiosByDevice[row.DeviceID] = nil
		}
		if row.Hour < coreWindowStartHour || row.Hour > coreWindowEndHour {
			continue
		}
		ratiosByDevice[row.DeviceID] = append(ratiosByDevice[row.DeviceID], row.Ratio)
	}

	summaries := make([]Summary, 0, len(ratiosByDevice))
	for deviceID, ratios := range ratiosByDevice {
		median := stats.Median(ratios)
		summaries = append(summaries, Summary{
			DeviceID:       deviceID,
			MedianRatio:    median,
			Classification: Classify(median),
		})
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].DeviceID < summaries[j].DeviceID })
	return summaries
}

// Classify maps a median seasonal ratio to its shading bucket. The boundaries
// are inclusive on the better classification: exactly 0.70 is Moderate, not
// Severe.
func Classify(ratio float64) Classification {
	if math.IsNaN(ratio) {
		return ClassificationInsufficient
	}
	switch {
	case ratio >= 0.95:
		return ClassificationNone
	case ratio >= 0.85:
		return ClassificationMild
	case ratio >= 0.70:
		return ClassificationModerate
	default:
		return ClassificationSevere
	}
}
