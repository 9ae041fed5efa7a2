// Package view holds the selection state of the returns chart as an
// immutable record. Every transition returns a new State with the display
// slice recomputed; rendering layers (TUI, HTTP, gRPC) only read it.
package view

import (
	"stockperf/internal/analysis"
	"stockperf/internal/domain"
)

// YAxisLabel is the label of the value axis.
const YAxisLabel = "Returns (%)"

// State is the view's selection plus the derived display slice.
type State struct {
	period   domain.Period
	grouping domain.Grouping
	chart    []domain.ChartEntry
	data     domain.DataSet
	stale    bool
}

// New returns the default state ("1 month", "company") for data.
func New(data domain.DataSet) State {
	return State{
		period:   domain.Period1Month,
		grouping: domain.GroupByCompany,
	}.WithData(data)
}

// Select returns a state for the given selection computed from scratch, with
// no previous slice to fall back on. Request handlers use it; a missing
// period yields an empty, stale chart.
func Select(data domain.DataSet, p domain.Period, g domain.Grouping) State {
	return State{period: p, grouping: g, data: data}.recompute()
}

// Period returns the selected period.
func (s State) Period() domain.Period { return s.period }

// Grouping returns the selected grouping.
func (s State) Grouping() domain.Grouping { return s.grouping }

// Data returns the injected data set.
func (s State) Data() domain.DataSet { return s.data }

// Chart returns a copy of the current display slice.
func (s State) Chart() []domain.ChartEntry {
	out := make([]domain.ChartEntry, len(s.chart))
	copy(out, s.chart)
	return out
}

// Stale reports whether the last recompute found no data for the selected
// period, leaving the previous slice in place.
func (s State) Stale() bool { return s.stale }

// WithData injects a new data set and recomputes.
func (s State) WithData(data domain.DataSet) State {
	s.data = data
	return s.recompute()
}

// SelectPeriod changes the period and recomputes.
func (s State) SelectPeriod(p domain.Period) State {
	s.period = p
	return s.recompute()
}

// SelectGrouping changes the grouping and recomputes.
func (s State) SelectGrouping(g domain.Grouping) State {
	s.grouping = g
	return s.recompute()
}

// NextPeriod selects the period after the current one, wrapping around.
func (s State) NextPeriod() State {
	return s.SelectPeriod(cycle(domain.Periods, s.period, 1))
}

// PrevPeriod selects the period before the current one, wrapping around.
func (s State) PrevPeriod() State {
	return s.SelectPeriod(cycle(domain.Periods, s.period, -1))
}

// ToggleGrouping switches between company and industry grouping.
func (s State) ToggleGrouping() State {
	return s.SelectGrouping(cycle(domain.Groupings, s.grouping, 1))
}

// recompute rebuilds the display slice. When the period is missing from the
// data the previous slice is kept.
func (s State) recompute() State {
	entries, ok := analysis.BuildSlice(s.data, s.period, s.grouping)
	if !ok {
		s.stale = true
		return s
	}
	s.chart = entries
	s.stale = false
	return s
}

func cycle[T comparable](opts []T, cur T, delta int) T {
	idx := 0
	for i, o := range opts {
		if o == cur {
			idx = i
			break
		}
	}
	n := len(opts)
	return opts[((idx+delta)%n+n)%n]
}
