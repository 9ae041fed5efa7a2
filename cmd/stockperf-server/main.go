package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockperf/internal/api"
	"stockperf/internal/config"
	"stockperf/internal/httpapi"
	"stockperf/internal/store"
	"stockperf/internal/util"
)

func main() {
	// Load config.
	cfgPath := "config/stockperf.yaml"
	if p := os.Getenv("STOCKPERF_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Setup logging.
	logFileName := fmt.Sprintf("/tmp/stockperf-server-%s.log", time.Now().Format("2006-01-02"))
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("opening log file: %v", err)
	}
	defer logFile.Close()

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, io.MultiWriter(os.Stdout, logFile))
	util.SetDefault(logger)

	// Open the data set source.
	source, closer, err := store.OpenSource(cfg.Source.Kind, cfg.Storage.SQLitePath, cfg.Storage.DataDir, cfg.Storage.Snapshot)
	if err != nil {
		log.Fatalf("opening data source: %v", err)
	}
	defer closer.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	charts := httpapi.NewChartServer(source, logger)
	if _, err := charts.Reload(ctx); err != nil {
		// Serve anyway; every period reads as absent until a reload succeeds.
		if !errors.Is(err, store.ErrNoData) {
			logger.Error("initial load failed", "error", err)
		} else {
			logger.Warn("data source is empty")
		}
	}

	srv := api.NewServer(cfg, charts, logger)
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("stockperf server stopped")
}
