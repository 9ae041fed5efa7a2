package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stockperf/internal/domain"
	"stockperf/internal/view"
)

type staticSource struct {
	ds  domain.DataSet
	err error
}

func (s staticSource) LoadDataSet(context.Context) (domain.DataSet, error) {
	return s.ds, s.err
}

func testData() domain.DataSet {
	return domain.DataSet{
		domain.Period1Month: {
			{Symbol: "AAA", Industry: "Tech", Returns: 5},
			{Symbol: "BBB", Industry: "Tech", Returns: 15},
			{Symbol: "CCC", Industry: "Energy", Returns: -10},
		},
		domain.Period3Months: {
			{Symbol: "AAA", Industry: "Tech", Returns: 30},
		},
	}
}

func loadedModel(t *testing.T) model {
	t.Helper()
	m := initialModel(staticSource{ds: testData()}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	msg := loadCmd(m.source, m.logger)()
	next, _ = next.Update(msg)
	return next.(model)
}

func press(t *testing.T, m model, keys ...string) model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(model)
	}
	return m
}

func TestModelLoadsData(t *testing.T) {
	m := loadedModel(t)
	if m.loading {
		t.Error("still loading after dataLoadedMsg")
	}
	chart := m.state.Chart()
	if len(chart) != 3 || chart[0].Symbol != "BBB" {
		t.Errorf("chart = %+v, want BBB first", chart)
	}
}

func TestModelKeys(t *testing.T) {
	tests := []struct {
		keys     []string
		period   domain.Period
		grouping domain.Grouping
	}{
		{[]string{"p"}, domain.Period3Months, domain.GroupByCompany},
		{[]string{"P"}, domain.Period6Months, domain.GroupByCompany},
		{[]string{"right", "right", "right"}, domain.Period1Month, domain.GroupByCompany},
		{[]string{"3", "g"}, domain.Period3Months, domain.GroupByIndustry},
		{[]string{"6", "1"}, domain.Period1Month, domain.GroupByCompany},
		{[]string{"i", "c"}, domain.Period1Month, domain.GroupByCompany},
		{[]string{"i"}, domain.Period1Month, domain.GroupByIndustry},
	}
	for _, tt := range tests {
		m := press(t, loadedModel(t), tt.keys...)
		if m.state.Period() != tt.period || m.state.Grouping() != tt.grouping {
			t.Errorf("keys %v: got %q/%q, want %q/%q", tt.keys,
				m.state.Period(), m.state.Grouping(), tt.period, tt.grouping)
		}
	}
}

func TestModelAbsentPeriodShowsNote(t *testing.T) {
	m := press(t, loadedModel(t), "6")
	if !m.state.Stale() {
		t.Fatal("expected stale state for 6 months")
	}
	if len(m.state.Chart()) != 3 {
		t.Errorf("chart changed on absent period: %+v", m.state.Chart())
	}
	out := m.renderContent()
	if !strings.Contains(out, "(no data for 6 months)") {
		t.Errorf("content missing note:\n%s", out)
	}
}

func TestModelReload(t *testing.T) {
	m := loadedModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = next.(model)
	if !m.loading || cmd == nil {
		t.Fatal("reload key did not start a load")
	}

	// A second press while loading is ignored.
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}); cmd != nil {
		t.Error("reload started twice")
	}

	next, _ = m.Update(dataLoadedMsg{err: errors.New("boom")})
	m = next.(model)
	if m.loadErr == nil || len(m.state.Chart()) != 3 {
		t.Errorf("failed reload: err=%v chart=%v", m.loadErr, m.state.Chart())
	}
	if !strings.Contains(m.renderContent(), "load failed: boom") {
		t.Error("content missing load error")
	}
}

func TestModelQuit(t *testing.T) {
	_, cmd := loadedModel(t).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("quit key returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit key did not quit")
	}
}

func TestRenderChart(t *testing.T) {
	s := view.New(testData())
	out := renderChart(s, 80)

	for _, want := range []string{"Symbol", "Returns (%)", "BBB", "+15.00%", "-10.00%"} {
		if !strings.Contains(out, want) {
			t.Errorf("chart missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "BBB") > strings.Index(out, "AAA") {
		t.Error("BBB should render above AAA")
	}

	ind := renderChart(s.ToggleGrouping(), 80)
	if !strings.Contains(ind, "Industry") || !strings.Contains(ind, "+10.00%") {
		t.Errorf("industry chart:\n%s", ind)
	}
}

func TestRenderChartEmpty(t *testing.T) {
	out := renderChart(view.New(nil), 80)
	if !strings.Contains(out, "No entries.") {
		t.Errorf("empty chart:\n%s", out)
	}
}

func TestRenderSelectors(t *testing.T) {
	out := renderSelectors(view.New(testData()))
	for _, want := range []string{"1 month", "3 months", "6 months", "company", "industry"} {
		if !strings.Contains(out, want) {
			t.Errorf("selectors missing %q", want)
		}
	}
}

func TestPadOrTruncWide(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"Énergie", 4, "Éner"},
		{"Énergie", 9, "Énergie  "},
		{"Société Générale", 7, "Société"},
		{"ABC", 3, "ABC"},
	}
	for _, tt := range tests {
		got := padOrTrunc(tt.in, tt.width)
		if got != tt.want {
			t.Errorf("padOrTrunc(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
		if w := lipgloss.Width(got); w != tt.width {
			t.Errorf("padOrTrunc(%q, %d) is %d cells wide", tt.in, tt.width, w)
		}
	}
}

func TestRenderChartNonASCIILabels(t *testing.T) {
	s := view.New(domain.DataSet{
		domain.Period1Month: {
			{Symbol: "AAA", Industry: "Énergie", Returns: 4},
			{Symbol: "BBB", Industry: "Télécoms", Returns: 2},
		},
	}).SelectGrouping(domain.GroupByIndustry)

	out := renderChart(s, 80)
	for _, want := range []string{"Énergie ", "Télécoms"} {
		if !strings.Contains(out, want) {
			t.Errorf("chart missing %q:\n%s", want, out)
		}
	}
	if !utf8.ValidString(out) {
		t.Error("chart output is not valid UTF-8")
	}
}
