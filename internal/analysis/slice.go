// Package analysis provides the pure transformations behind the returns
// chart: industry grouping, top-N selection, and period-return computation
// from daily bars.
package analysis

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"stockperf/internal/domain"
)

// MaxEntries is the number of bars shown on the chart.
const MaxEntries = 10

// GroupByIndustry averages Returns across all records that share an Industry.
// The result holds one aggregate per distinct industry, ordered by industry
// name.
func GroupByIndustry(records []domain.ReturnRecord) []domain.IndustryAggregate {
	groups := make(map[string][]float64)
	for i := range records {
		groups[records[i].Industry] = append(groups[records[i].Industry], records[i].Returns)
	}

	out := make([]domain.IndustryAggregate, 0, len(groups))
	for ind, rets := range groups {
		out = append(out, domain.IndustryAggregate{
			Industry: ind,
			Returns:  stat.Mean(rets, nil),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Industry < out[j].Industry
	})
	return out
}

// TopN returns at most n entries sorted by descending Returns. Ties are broken
// by the category key for grouping g so the result is deterministic. The input
// slice is not modified.
func TopN(entries []domain.ChartEntry, g domain.Grouping, n int) []domain.ChartEntry {
	sorted := make([]domain.ChartEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Returns != sorted[j].Returns {
			return sorted[i].Returns > sorted[j].Returns
		}
		return sorted[i].Key(g) < sorted[j].Key(g)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// BuildSlice derives the display slice for period p under grouping g. The
// second return value is false when ds has no entry for p, in which case the
// caller should keep whatever it displayed before.
func BuildSlice(ds domain.DataSet, p domain.Period, g domain.Grouping) ([]domain.ChartEntry, bool) {
	records, ok := ds.Records(p)
	if !ok {
		return nil, false
	}

	var entries []domain.ChartEntry
	switch g {
	case domain.GroupByIndustry:
		aggs := GroupByIndustry(records)
		entries = make([]domain.ChartEntry, len(aggs))
		for i, a := range aggs {
			entries[i] = domain.ChartEntry{Industry: a.Industry, Returns: a.Returns}
		}
	default:
		entries = make([]domain.ChartEntry, len(records))
		for i, r := range records {
			entries[i] = domain.ChartEntry{Symbol: r.Symbol, Industry: r.Industry, Returns: r.Returns}
		}
	}

	return TopN(entries, g, MaxEntries), true
}
