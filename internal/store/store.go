// Package store defines storage interfaces for the return data set and the
// daily bars it is computed from, with SQLite and Parquet implementations.
package store

import (
	"context"
	"errors"
	"time"

	"stockperf/internal/domain"
)

// ErrNoData is returned when a source holds no return records at all.
var ErrNoData = errors.New("no return data")

// DataSetSource loads a complete return data set. Viewers only ever read
// through this interface.
type DataSetSource interface {
	// LoadDataSet returns every period present in the source. Periods with no
	// rows are absent from the result.
	LoadDataSet(ctx context.Context) (domain.DataSet, error)
}

// DataSetSink persists a complete return data set, replacing what was there.
type DataSetSink interface {
	SaveDataSet(ctx context.Context, ds domain.DataSet) error
}

// BarStore persists and retrieves daily OHLCV bar data.
type BarStore interface {
	// WriteBars persists a batch of bars to storage.
	WriteBars(ctx context.Context, bars []domain.Bar) error

	// ReadBars returns bars for the given symbol within [start, end).
	ReadBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error)

	// ListSymbols returns all distinct symbols with bar data.
	ListSymbols(ctx context.Context) ([]string, error)
}
