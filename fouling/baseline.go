package fouling

import (
	"math"

	"github.com/phall2020-ui/inverter-data-juggle/stats"
)

// Baseline maps POA irradiance bins to the expected clean output in that bin.
// A bin's identity is its lower edge, e.g. with a 100 W/m² width, 400 <= POA <
// 500 falls in bin 400. Bins that had no clean-reference observations are
// simply absent: rows falling into them receive NaN expected values, never an
// extrapolated guess.
//
// A baseline is built fresh per analysis run and never mutated afterwards.
type Baseline struct {
	BinWidth float64
	Power    map[float64]float64 // bin -> median clean AC power
	PR       map[float64]float64 // bin -> median clean PR
}

// BuildBaseline derives the expected clean output per POA bin from the clean
// reference rows. Clean rows below opts.MinPOA are discarded first, and a bin
// is only retained when it holds at least opts.MinBinPoints observations. The
// median, not the mean, is used so that brief transients or string outages in
// the reference window do not skew the baseline.
func BuildBaseline(clean []Row, opts Options) Baseline {
	powerByBin := make(map[float64][]float64)
	prByBin := make(map[float64][]float64)

	for _, row := range clean {
		if math.IsNaN(row.POA) || row.POA < opts.MinPOA {
			continue
		}
		bin := binOf(row.POA, opts.BinWidth)
		powerByBin[bin] = append(powerByBin[bin], row.Power)
		prByBin[bin] = append(prByBin[bin], row.PR)
	}

	baseline := Baseline{
		BinWidth: opts.BinWidth,
		Power:    make(map[float64]float64, len(powerByBin)),
		PR:       make(map[float64]float64, len(powerByBin)),
	}
	for bin, values := range powerByBin {
		if len(values) < opts.MinBinPoints {
			continue
		}
		if median := stats.Median(values); !math.IsNaN(median) {
			baseline.Power[bin] = median
		}
		if median := stats.Median(prByBin[bin]); !math.IsNaN(median) {
			baseline.PR[bin] = median
		}
	}
	return baseline
}

// Apply assigns every row its POA bin and left-joins the per-bin expected
// values onto it, returning a new slice. Rows whose bin has no baseline entry
// keep NaN expected values.
func (b Baseline) Apply(rows []Row) []Row {
	out := cloneRows(rows)
	for i := range out {
		out[i].POABin = math.NaN()
		out[i].ExpectedCleanPower = math.NaN()
		out[i].ExpectedCleanPR = math.NaN()
		if math.IsNaN(out[i].POA) {
			continue
		}
		bin := binOf(out[i].POA, b.BinWidth)
		out[i].POABin = bin
		if expected, ok := b.Power[bin]; ok {
			out[i].ExpectedCleanPower = expected
		}
		if expected, ok := b.PR[bin]; ok {
			out[i].ExpectedCleanPR = expected
		}
	}
	return out
}

func binOf(poa, width float64) float64 {
	return math.Floor(poa/width) * width
}
