// Package httpapi provides an HTTP REST API serving returns-chart slices in
// JSON, the same data the TUI renders.
package httpapi

import (
	"stockperf/internal/domain"
	"stockperf/internal/view"
)

// ChartResponse is the JSON response for the chart endpoint.
type ChartResponse struct {
	Period   domain.Period       `json:"period"`
	Grouping domain.Grouping     `json:"grouping"`
	XKey     string              `json:"xKey"`
	YLabel   string              `json:"yLabel"`
	Series   string              `json:"series"`
	Entries  []domain.ChartEntry `json:"entries"`
	Points   []view.Point        `json:"points"`
	Stale    bool                `json:"stale,omitempty"` // period absent from the data set
}

// PeriodsResponse lists the selectable options and which periods have data.
type PeriodsResponse struct {
	Periods   []domain.Period   `json:"periods"`
	Groupings []domain.Grouping `json:"groupings"`
	Available []domain.Period   `json:"available"`
}

// ReloadResponse summarises a data set reload.
type ReloadResponse struct {
	Periods  int    `json:"periods"`
	Records  int    `json:"records"`
	LoadedAt string `json:"loadedAt"`
}

// HealthResponse is the health check body.
type HealthResponse struct {
	Status   string `json:"status"`
	Records  int    `json:"records"`
	LoadedAt string `json:"loadedAt,omitempty"`
}

// NewChartResponse converts a view state to its JSON form.
func NewChartResponse(s view.State) ChartResponse {
	spec := s.Spec()
	entries := s.Chart()
	if entries == nil {
		entries = []domain.ChartEntry{}
	}
	return ChartResponse{
		Period:   s.Period(),
		Grouping: s.Grouping(),
		XKey:     spec.XKey,
		YLabel:   spec.YLabel,
		Series:   spec.Series,
		Entries:  entries,
		Points:   spec.Points,
		Stale:    s.Stale(),
	}
}
