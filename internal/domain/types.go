// Package domain defines the core types shared across stockperf: return
// records, the period-keyed data set, chart entries, and the bar and company
// inputs used to build return data.
package domain

import "time"

// ---------------------------------------------------------------------------
// Enumerations
// ---------------------------------------------------------------------------

// Period is a selectable lookback window label.
type Period string

const (
	Period1Month  Period = "1 month"
	Period3Months Period = "3 months"
	Period6Months Period = "6 months"
)

// Periods lists every period in display order.
var Periods = []Period{Period1Month, Period3Months, Period6Months}

// Valid reports whether p is one of the known periods.
func (p Period) Valid() bool {
	for _, q := range Periods {
		if p == q {
			return true
		}
	}
	return false
}

// LookbackDays returns the calendar-day window used when computing returns
// for the period, or 0 for an unknown period.
func (p Period) LookbackDays() int {
	switch p {
	case Period1Month:
		return 30
	case Period3Months:
		return 90
	case Period6Months:
		return 180
	default:
		return 0
	}
}

// Grouping is the dimension used to bucket chart entries.
type Grouping string

const (
	GroupByCompany  Grouping = "company"
	GroupByIndustry Grouping = "industry"
)

// Groupings lists every grouping in display order.
var Groupings = []Grouping{GroupByCompany, GroupByIndustry}

// Valid reports whether g is one of the known groupings.
func (g Grouping) Valid() bool {
	return g == GroupByCompany || g == GroupByIndustry
}

// ---------------------------------------------------------------------------
// Return data
// ---------------------------------------------------------------------------

// ReturnRecord is one company's return over a period. Returns is a
// percentage figure.
type ReturnRecord struct {
	Symbol   string  `json:"symbol"`
	Industry string  `json:"industry"`
	Returns  float64 `json:"returns"`
}

// DataSet maps each period to its ordered return records. It is owned by the
// caller; nothing in stockperf mutates a DataSet after it is built.
type DataSet map[Period][]ReturnRecord

// Records returns the records for p and whether the period is present.
func (ds DataSet) Records(p Period) ([]ReturnRecord, bool) {
	recs, ok := ds[p]
	return recs, ok
}

// Available returns the periods present in ds, in display order.
func (ds DataSet) Available() []Period {
	var out []Period
	for _, p := range Periods {
		if _, ok := ds[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the total number of records across all periods.
func (ds DataSet) Len() int {
	n := 0
	for _, recs := range ds {
		n += len(recs)
	}
	return n
}

// IndustryAggregate is the mean return of all companies in one industry.
type IndustryAggregate struct {
	Industry string  `json:"industry"`
	Returns  float64 `json:"returns"`
}

// ChartEntry is one bar of the display slice. Symbol is empty for industry
// aggregates.
type ChartEntry struct {
	Symbol   string  `json:"symbol,omitempty"`
	Industry string  `json:"industry"`
	Returns  float64 `json:"returns"`
}

// Key returns the category value for the x axis under grouping g.
func (e ChartEntry) Key(g Grouping) string {
	if g == GroupByIndustry {
		return e.Industry
	}
	return e.Symbol
}

// ---------------------------------------------------------------------------
// Builder inputs
// ---------------------------------------------------------------------------

// Bar is a daily OHLCV bar.
type Bar struct {
	Symbol    string
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Company is one row of the company universe.
type Company struct {
	Symbol   string
	Name     string
	Industry string
}
