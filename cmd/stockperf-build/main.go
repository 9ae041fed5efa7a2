package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockperf/internal/analysis"
	"stockperf/internal/config"
	"stockperf/internal/domain"
	"stockperf/internal/store"
	"stockperf/internal/util"
)

func main() {
	endFlag := flag.String("end", "", "end date YYYY-MM-DD (default: build.end_date, then today)")
	snapshot := flag.Bool("snapshot", false, "also write the data set as a parquet snapshot")
	importPath := flag.String("import", "", "bar CSV to merge into the parquet bar store before building")
	flag.Parse()

	cfgPath := "config/stockperf.yaml"
	if p := os.Getenv("STOCKPERF_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Dual logger: stdout + /tmp log file.
	logFileName := fmt.Sprintf("/tmp/stockperf-build-%s.log", time.Now().Format("2006-01-02"))
	logFile, err := os.Create(logFileName)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	logger := util.NewLogger(cfg.Logging.Level, "text", io.MultiWriter(os.Stdout, logFile))
	util.SetDefault(logger)

	end, err := resolveEnd(*endFlag, cfg.Build.EndDate, time.Now())
	if err != nil {
		log.Fatalf("invalid end date: %v", err)
	}

	if cfg.Storage.DataDir == "" {
		log.Fatal("storage.data_dir is not set")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pstore := store.NewParquetStore(cfg.Storage.DataDir, cfg.Storage.Snapshot)

	var sinks []store.DataSetSink
	if cfg.Storage.SQLitePath != "" {
		sq, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("opening sqlite: %v", err)
		}
		defer sq.Close()
		sinks = append(sinks, sq)
	}
	if *snapshot {
		sinks = append(sinks, pstore)
	}
	if len(sinks) == 0 {
		log.Fatal("nothing to write: set storage.sqlite_path or pass -snapshot")
	}

	if *importPath != "" {
		if _, err := importBars(ctx, *importPath, pstore, logger); err != nil {
			log.Fatalf("importing bars: %v", err)
		}
	}

	slog.Info("starting stockperf-build", "logFile", logFileName, "end", end.Format("2006-01-02"))
	ds, err := build(ctx, cfg.Build.UniversePath, pstore, end, cfg.Build.MaxWorkers, logger)
	if err != nil {
		log.Fatalf("build failed: %v", err)
	}

	for _, sink := range sinks {
		if err := sink.SaveDataSet(ctx, ds); err != nil {
			log.Fatalf("saving data set: %v", err)
		}
	}
	slog.Info("data set written", "periods", len(ds), "records", analysis.FormatInt(ds.Len()))
}

// resolveEnd picks the window end date: the flag wins over the config value,
// and today (UTC midnight) is the fallback.
func resolveEnd(flagVal, cfgVal string, now time.Time) (time.Time, error) {
	for _, v := range []string{flagVal, cfgVal} {
		if v != "" {
			return time.Parse("2006-01-02", v)
		}
	}
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// unknownIndustry labels companies built from stored symbols alone.
const unknownIndustry = "Unknown"

// importBars merges the bars of a CSV export into the bar store.
func importBars(ctx context.Context, path string, bs store.BarStore, logger *slog.Logger) (int, error) {
	bars, err := store.LoadBarCSV(path)
	if err != nil {
		return 0, err
	}
	if err := bs.WriteBars(ctx, bars); err != nil {
		return 0, fmt.Errorf("writing bars: %w", err)
	}
	logger.Info("bars imported", "file", path, "bars", analysis.FormatInt(len(bars)))
	return len(bars), nil
}

// loadCompanies returns the universe to build. With a universe file, symbols
// missing from the bar store are logged; without one, every stored symbol is
// used with an unknown industry.
func loadCompanies(ctx context.Context, universePath string, bs store.BarStore, logger *slog.Logger) ([]domain.Company, error) {
	stored, err := bs.ListSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing stored symbols: %w", err)
	}

	if universePath == "" {
		companies := make([]domain.Company, len(stored))
		for i, sym := range stored {
			companies[i] = domain.Company{Symbol: sym, Industry: unknownIndustry}
		}
		logger.Warn("no universe file, using stored symbols", "symbols", len(companies))
		return companies, nil
	}

	companies, err := store.LoadUniverse(universePath)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(stored))
	for _, sym := range stored {
		have[sym] = true
	}
	var missing []string
	for _, c := range companies {
		if !have[c.Symbol] {
			missing = append(missing, c.Symbol)
		}
	}
	if len(missing) > 0 {
		logger.Warn("universe symbols without bar data",
			"count", len(missing),
			"sample", missing[:min(len(missing), 10)],
		)
	}
	return companies, nil
}

// build loads the universe, reads bars for the longest period window and
// computes per-period returns.
func build(ctx context.Context, universePath string, bars store.BarStore, end time.Time, workers int, logger *slog.Logger) (domain.DataSet, error) {
	companies, err := loadCompanies(ctx, universePath, bars, logger)
	if err != nil {
		return nil, err
	}

	longest := domain.Periods[len(domain.Periods)-1]
	start, stop := analysis.Window(longest, end)

	symbols := make([]string, len(companies))
	for i, c := range companies {
		symbols[i] = c.Symbol
	}

	t0 := time.Now()
	barsBySymbol, err := readBars(ctx, bars, symbols, start, stop, workers, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("bars loaded",
		"symbols", len(symbols),
		"withBars", len(barsBySymbol),
		"elapsed", time.Since(t0).Round(time.Millisecond),
	)

	ds := analysis.ComputeDataSet(companies, barsBySymbol, end)
	for _, p := range domain.Periods {
		recs, _ := ds.Records(p)
		logger.Info("period computed", "period", p, "records", len(recs))
	}
	return ds, nil
}
