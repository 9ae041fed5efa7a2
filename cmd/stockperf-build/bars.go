package main

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"stockperf/internal/domain"
	"stockperf/internal/store"
)

// readBars reads daily bars for every symbol in [start, end) with at most
// workers concurrent reads. Symbols whose read fails or returns nothing are
// left out of the result; only context cancellation aborts the whole run.
func readBars(ctx context.Context, bs store.BarStore, symbols []string, start, end time.Time, workers int, logger *slog.Logger) (map[string][]domain.Bar, error) {
	if workers <= 0 {
		workers = 1
	}

	results := make([][]domain.Bar, len(symbols))
	sem := make(chan struct{}, workers)

	g, gctx := errgroup.WithContext(ctx)

	for i, sym := range symbols {
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			bars, err := bs.ReadBars(gctx, sym, start, end)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.Warn("reading bars", "symbol", sym, "error", err)
				return nil // skip missing data
			}
			results[i] = bars
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]domain.Bar, len(symbols))
	for i, sym := range symbols {
		if len(results[i]) > 0 {
			out[sym] = results[i]
		}
	}
	return out, nil
}
