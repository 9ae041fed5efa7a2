package view

import "stockperf/internal/domain"

// Point is one bar of the chart: a category label and its value.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ChartSpec describes how the display slice is plotted.
type ChartSpec struct {
	XKey   string  `json:"xKey"`   // "Symbol" or "Industry"
	YLabel string  `json:"yLabel"` // always "Returns (%)"
	Series string  `json:"series"` // plotted field
	Points []Point `json:"points"`
}

// XKey returns the category field name for grouping g.
func XKey(g domain.Grouping) string {
	if g == domain.GroupByIndustry {
		return "Industry"
	}
	return "Symbol"
}

// Spec returns the chart description for the current state.
func (s State) Spec() ChartSpec {
	points := make([]Point, len(s.chart))
	for i, e := range s.chart {
		points[i] = Point{Label: e.Key(s.grouping), Value: e.Returns}
	}
	return ChartSpec{
		XKey:   XKey(s.grouping),
		YLabel: YAxisLabel,
		Series: "Returns",
		Points: points,
	}
}
