package fouling

import (
	"math"

	"github.com/phall2020-ui/inverter-data-juggle/stats"
)

// DetectCleaningEvents flags rows where the rolling PR jumps sharply upwards,
// which usually indicates a wash or heavy rain. The PR series is smoothed with
// a 3-sample trailing median (min-periods 1, so the leading edge is kept), and
// a row is flagged when the first difference of the smoothed series exceeds
// `threshold × global median` of the smoothed series.
//
// The detector is local and causal: it looks back one step only, and it will
// flag any sharp PR recovery, including weather-driven ones. It makes no
// attempt to disambiguate the cause.
func DetectCleaningEvents(rows []Row, threshold float64) []Row {
	out := cloneRows(rows)

	pr := make([]float64, len(out))
	for i := range out {
		pr[i] = out[i].PR
	}

	rolled := stats.RollingMedian(pr, 3)
	globalMedian := stats.Median(rolled)
	change := stats.Diff(rolled)

	for i := range out {
		out[i].PRRoll = rolled[i]
		// NaN never compares greater, so rows without a usable PR are not flagged
		out[i].CleaningEvent = change[i] > threshold*globalMedian
	}
	return out
}

// CountCleaningEvents returns the number of flagged rows.
func CountCleaningEvents(rows []Row) int {
	count := 0
	for _, row := range rows {
		if row.CleaningEvent {
			count++
		}
	}
	return count
}

// IdentifyCleanReferencePeriods marks the rows whose rolling PR sits within
// ±5% of the global rolling-PR median. It is a manual-inspection helper for
// finding clean-candidate stretches in a single dataset; the analysis pipeline
// itself uses an explicit clean reference or AutoSelectCleanPeriod instead.
func IdentifyCleanReferencePeriods(rows []Row, window int) []bool {
	pr := make([]float64, len(rows))
	for i := range rows {
		pr[i] = rows[i].PR
	}

	rolled := stats.RollingMedian(pr, window)
	globalMedian := stats.Median(rolled)

	out := make([]bool, len(rows))
	if math.IsNaN(globalMedian) {
		return out
	}
	for i := range rolled {
		out[i] = rolled[i] > 0.95*globalMedian && rolled[i] < 1.05*globalMedian
	}
	return out
}
