package analysis

import (
	"sort"
	"time"

	"stockperf/internal/domain"
)

// PeriodReturn returns the percentage change from the first to the last
// close, (last/first - 1) * 100. It reports false when there are fewer than
// two closes or the first close is zero.
func PeriodReturn(closes []float64) (float64, bool) {
	if len(closes) < 2 || closes[0] == 0 {
		return 0, false
	}
	return (closes[len(closes)-1]/closes[0] - 1) * 100, true
}

// Window returns the half-open bar window [start, end) for period p ending on
// the UTC calendar day of asOf. Bars stamped at any time on that day are
// inside the window.
func Window(p domain.Period, asOf time.Time) (start, end time.Time) {
	y, m, d := asOf.UTC().Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -p.LookbackDays()), day.AddDate(0, 0, 1)
}

// ComputeDataSet builds a DataSet from daily bars. For every period the bars
// of each company are restricted to Window(p, end), so the close on the end
// date counts, and the close-to-close return is computed. Companies with fewer than two bars in a window are
// left out of that period. Records keep the universe order.
func ComputeDataSet(companies []domain.Company, bars map[string][]domain.Bar, end time.Time) domain.DataSet {
	ds := make(domain.DataSet, len(domain.Periods))

	sorted := make(map[string][]domain.Bar, len(bars))
	for sym, bs := range bars {
		cp := make([]domain.Bar, len(bs))
		copy(cp, bs)
		sort.Slice(cp, func(i, j int) bool {
			return cp[i].Timestamp.Before(cp[j].Timestamp)
		})
		sorted[sym] = cp
	}

	for _, p := range domain.Periods {
		start, stop := Window(p, end)
		records := make([]domain.ReturnRecord, 0, len(companies))
		for _, c := range companies {
			var closes []float64
			for _, b := range sorted[c.Symbol] {
				if b.Timestamp.Before(start) || !b.Timestamp.Before(stop) {
					continue
				}
				closes = append(closes, b.Close)
			}
			ret, ok := PeriodReturn(closes)
			if !ok {
				continue
			}
			records = append(records, domain.ReturnRecord{
				Symbol:   c.Symbol,
				Industry: c.Industry,
				Returns:  ret,
			})
		}
		ds[p] = records
	}
	return ds
}
