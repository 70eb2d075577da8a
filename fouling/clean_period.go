package fouling

import (
	"math"
	"sort"

	"github.com/phall2020-ui/inverter-data-juggle/stats"
	"github.com/phall2020-ui/inverter-data-juggle/telemetry"
	timeutils "github.com/phall2020-ui/inverter-data-juggle/time_utils"
)

// DayStat describes one candidate day considered by the automatic clean-period
// selector.
type DayStat struct {
	Date     timeutils.Date
	MedianPR float64
	Points   int
}

// AutoSelectCleanPeriod picks the opts.CleanDays best days from the
// operational series to act as the clean reference, ranked by daily median PR.
//
// Only readings with POA >= opts.MinPOA and a valid PR count towards a day's
// ranking, and days with fewer than opts.MinPointsPerDay such readings are
// discarded. Ties are broken by original date order (the sort is stable). The
// returned clean series contains every reading on the selected dates, not just
// the irradiance-filtered subset, so that the baseline builder sees the full
// days.
//
// Both return values are empty when no day clears the minimum-points bar:
// callers must treat that as "cannot establish a clean baseline", never as a
// zero-loss condition.
func AutoSelectCleanPeriod(readings []telemetry.Reading, opts Options) ([]telemetry.Reading, []DayStat) {
	rows := CalculatePR(NewRows(readings), opts)

	prByDate := make(map[timeutils.Date][]float64)
	for _, row := range rows {
		if math.IsNaN(row.POA) || row.POA < opts.MinPOA || math.IsNaN(row.PR) {
			continue
		}
		date := timeutils.DateOf(row.Time)
		prByDate[date] = append(prByDate[date], row.PR)
	}

	daily := make([]DayStat, 0, len(prByDate))
	for date, prs := range prByDate {
		if len(prs) < opts.MinPointsPerDay {
			continue
		}
		daily = append(daily, DayStat{
			Date:     date,
			MedianPR: stats.Median(prs),
			Points:   len(prs),
		})
	}
	if len(daily) == 0 {
		return nil, nil
	}

	// order by date first so that the stable ranking sort breaks PR ties on
	// original date order
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date.Before(daily[j].Date) })
	sort.SliceStable(daily, func(i, j int) bool { return daily[i].MedianPR > daily[j].MedianPR })

	if len(daily) > opts.CleanDays {
		daily = daily[:opts.CleanDays]
	}

	selected := make(map[timeutils.Date]bool, len(daily))
	for _, day := range daily {
		selected[day.Date] = true
	}

	var clean []telemetry.Reading
	for _, reading := range readings {
		if selected[timeutils.DateOf(reading.Time)] {
			clean = append(clean, reading)
		}
	}
	sort.SliceStable(clean, func(i, j int) bool { return clean[i].Time.Before(clean[j].Time) })

	return clean, daily
}
