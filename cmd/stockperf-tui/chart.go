package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"stockperf/internal/analysis"
	"stockperf/internal/domain"
	"stockperf/internal/view"
)

// Styles.
var (
	selectedOptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	optStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	selectorLabel    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	labelStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	gainStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	colHeaderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

const (
	barGlyph    = "█"
	minBarWidth = 10
	maxLabelW   = 28
	valueW      = 11
)

// renderSelector draws one dropdown-like control: a label followed by every
// option, with the selected one highlighted.
func renderSelector[T ~string](label string, opts []T, cur T) string {
	var b strings.Builder
	b.WriteString(selectorLabel.Render(fmt.Sprintf("%-9s", label)))
	for _, o := range opts {
		text := " " + string(o) + " "
		if o == cur {
			b.WriteString(selectedOptStyle.Render(text))
		} else {
			b.WriteString(optStyle.Render(text))
		}
		b.WriteString(" ")
	}
	return b.String()
}

// renderSelectors draws the period and grouping controls.
func renderSelectors(s view.State) string {
	return renderSelector("Period", domain.Periods, s.Period()) + "\n" +
		renderSelector("Group by", domain.Groupings, s.Grouping())
}

// renderChart draws the chart as horizontal bars, one row per entry, under a
// header naming the category key and the value axis. Bar length is
// proportional to |Returns| against the largest magnitude on screen.
func renderChart(s view.State, width int) string {
	spec := s.Spec()
	var b strings.Builder

	if s.Stale() {
		b.WriteString(dimStyle.Render(fmt.Sprintf("(no data for %s)", s.Period())))
		b.WriteString("\n")
	}
	if len(spec.Points) == 0 {
		b.WriteString(dimStyle.Render("  No entries."))
		b.WriteString("\n")
		return b.String()
	}

	labelW := lipgloss.Width(spec.XKey)
	maxAbs := 0.0
	for _, p := range spec.Points {
		labelW = max(labelW, lipgloss.Width(p.Label))
		maxAbs = math.Max(maxAbs, math.Abs(p.Value))
	}
	labelW = min(labelW, maxLabelW)
	barW := max(width-labelW-valueW-6, minBarWidth)

	b.WriteString(colHeaderStyle.Render(fmt.Sprintf("  %s  %*s", padOrTrunc(spec.XKey, labelW), valueW, spec.YLabel)))
	b.WriteString("\n")

	for _, p := range spec.Points {
		n := 0
		if maxAbs > 0 {
			n = int(math.Round(math.Abs(p.Value) / maxAbs * float64(barW)))
		}
		if n == 0 && p.Value != 0 {
			n = 1
		}
		style := gainStyle
		if p.Value < 0 {
			style = lossStyle
		}
		b.WriteString("  ")
		b.WriteString(labelStyle.Render(padOrTrunc(p.Label, labelW)))
		b.WriteString("  ")
		b.WriteString(style.Render(fmt.Sprintf("%*s", valueW, analysis.FormatReturn(p.Value))))
		b.WriteString("  ")
		b.WriteString(style.Render(strings.Repeat(barGlyph, n)))
		b.WriteString("\n")
	}
	return b.String()
}

// padOrTrunc fits s to exactly width terminal cells.
func padOrTrunc(s string, width int) string {
	n := lipgloss.Width(s)
	if n >= width {
		return ansi.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-n)
}
