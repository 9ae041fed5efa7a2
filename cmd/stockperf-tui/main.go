package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stockperf/internal/config"
	"stockperf/internal/domain"
	"stockperf/internal/store"
	"stockperf/internal/util"
	"stockperf/internal/view"
)

// Messages.
type dataLoadedMsg struct {
	data domain.DataSet
	err  error
}

// Model.
type model struct {
	state  view.State
	source store.DataSetSource
	logger *slog.Logger

	keys     keyMap
	help     help.Model
	viewport viewport.Model
	ready    bool
	width    int
	height   int

	loading  bool
	loadedAt time.Time
	loadErr  error
}

func initialModel(source store.DataSetSource, logger *slog.Logger) model {
	return model{
		state:   view.New(nil),
		source:  source,
		logger:  logger,
		keys:    defaultKeyMap(),
		help:    help.New(),
		loading: true,
	}
}

func (m model) Init() tea.Cmd {
	return loadCmd(m.source, m.logger)
}

func loadCmd(source store.DataSetSource, logger *slog.Logger) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		ds, err := source.LoadDataSet(ctx)
		if err != nil {
			logger.Error("loading data set", "error", err)
			return dataLoadedMsg{err: err}
		}
		logger.Info("data set loaded", "periods", len(ds), "records", ds.Len())
		return dataLoadedMsg{data: ds}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.NextPeriod):
			m.state = m.state.NextPeriod()
		case key.Matches(msg, m.keys.PrevPeriod):
			m.state = m.state.PrevPeriod()
		case key.Matches(msg, m.keys.Month1):
			m.state = m.state.SelectPeriod(domain.Period1Month)
		case key.Matches(msg, m.keys.Months3):
			m.state = m.state.SelectPeriod(domain.Period3Months)
		case key.Matches(msg, m.keys.Months6):
			m.state = m.state.SelectPeriod(domain.Period6Months)
		case key.Matches(msg, m.keys.Toggle):
			m.state = m.state.ToggleGrouping()
		case key.Matches(msg, m.keys.Company):
			m.state = m.state.SelectGrouping(domain.GroupByCompany)
		case key.Matches(msg, m.keys.Industry):
			m.state = m.state.SelectGrouping(domain.GroupByIndustry)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize()
		case key.Matches(msg, m.keys.Reload):
			if m.loading {
				return m, nil
			}
			m.loading = true
			m.syncContent()
			return m, loadCmd(m.source, m.logger)
		default:
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		m.logger.Debug("selection changed",
			"period", m.state.Period(),
			"grouping", m.state.Grouping(),
			"stale", m.state.Stale(),
		)
		m.syncContent()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if !m.ready {
			m.viewport = viewport.New(m.width, 1)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		}
		m.resize()
		m.syncContent()
		return m, nil

	case dataLoadedMsg:
		m.loading = false
		m.loadErr = msg.err
		if msg.err == nil {
			m.state = m.state.WithData(msg.data)
			m.loadedAt = time.Now()
		}
		m.syncContent()
		return m, nil
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// resize fits the viewport between the header block and the help footer.
func (m *model) resize() {
	if !m.ready {
		return
	}
	headerH := 4 // title bar, two selectors, blank line
	footerH := lipgloss.Height(m.help.View(m.keys))
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-headerH-footerH, 1)
}

func (m *model) syncContent() {
	if m.ready {
		m.viewport.SetContent(m.renderContent())
	}
}

func (m model) renderContent() string {
	var b strings.Builder
	if m.loadErr != nil {
		b.WriteString(errStyle.Render("  load failed: " + m.loadErr.Error()))
		b.WriteString("\n")
	}
	if m.loading && m.loadedAt.IsZero() {
		b.WriteString(dimStyle.Render("  Loading..."))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(renderChart(m.state, m.width))
	return b.String()
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}

	status := ""
	switch {
	case m.loading:
		status = "loading..."
	case !m.loadedAt.IsZero():
		status = fmt.Sprintf("records: %d  loaded %s", m.state.Data().Len(), m.loadedAt.Format("15:04:05"))
	}
	headerText := fmt.Sprintf(" Stock Returns    top %d by %s    %s ", len(m.state.Chart()), m.state.Grouping(), status)
	headerBar := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("4")).
		Render(padOrTrunc(headerText, m.width))

	return headerBar + "\n" +
		renderSelectors(m.state) + "\n\n" +
		m.viewport.View() + "\n" +
		m.help.View(m.keys)
}

func main() {
	cfgPath := "config/stockperf.yaml"
	if p := os.Getenv("STOCKPERF_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	logPath := fmt.Sprintf("/tmp/stockperf-tui-%s.log", time.Now().Format("2006-01-02"))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := util.NewLogger(cfg.Logging.Level, "text", logFile)

	source, closer, err := store.OpenSource(cfg.Source.Kind, cfg.Storage.SQLitePath, cfg.Storage.DataDir, cfg.Storage.Snapshot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening data source: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()
	logger.Info("data source opened", "kind", cfg.Source.Kind)

	p := tea.NewProgram(
		initialModel(source, logger),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
