package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"stockperf/internal/domain"
)

// Compile-time interface checks.
var _ BarStore = (*ParquetStore)(nil)
var _ DataSetSource = (*ParquetStore)(nil)
var _ DataSetSink = (*ParquetStore)(nil)

// ParquetStore implements BarStore, DataSetSource and DataSetSink using
// Parquet files on disk.
type ParquetStore struct {
	DataDir  string
	Snapshot string // data set snapshot name, without extension
}

// NewParquetStore creates a new ParquetStore rooted at the given data
// directory. snapshot names the data set file under <DataDir>/returns.
func NewParquetStore(dataDir, snapshot string) *ParquetStore {
	if snapshot == "" {
		snapshot = "latest"
	}
	return &ParquetStore{DataDir: dataDir, Snapshot: snapshot}
}

// ---------------------------------------------------------------------------
// Parquet record types (on-disk schema)
// ---------------------------------------------------------------------------

// BarRecord is the Parquet schema for daily bar data.
type BarRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    int64   `parquet:"volume"`
}

// ReturnRow is the Parquet schema for one record of a data set snapshot.
type ReturnRow struct {
	Period   string  `parquet:"period"`
	Symbol   string  `parquet:"symbol"`
	Industry string  `parquet:"industry"`
	Returns  float64 `parquet:"returns"`
	Position int32   `parquet:"position"` // order within the period
}

// ---------------------------------------------------------------------------
// BarStore implementation
// ---------------------------------------------------------------------------

// WriteBars writes bar data to Parquet files organized by symbol and year.
// Each symbol+year combination produces a separate file at:
//
//	<DataDir>/us/daily/<SYMBOL>/<YYYY>.parquet
func (s *ParquetStore) WriteBars(_ context.Context, bars []domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	type key struct {
		symbol string
		year   int
	}
	groups := make(map[key][]BarRecord)
	for _, b := range bars {
		k := key{symbol: b.Symbol, year: b.Timestamp.Year()}
		groups[k] = append(groups[k], BarRecord{
			Symbol:    b.Symbol,
			Timestamp: b.Timestamp.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		})
	}

	for k, records := range groups {
		path := s.barPath(k.symbol, k.year)

		// Read existing records to merge.
		existing, _ := readParquetFile[BarRecord](path)
		merged := mergeBarRecords(existing, records)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing bars for %s/%d: %w", k.symbol, k.year, err)
		}
	}
	return nil
}

// ReadBars reads bar data from Parquet files for the given symbol within
// [start, end). Missing year files are skipped.
func (s *ParquetStore) ReadBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error) {
	var bars []domain.Bar
	for year := start.Year(); year <= end.Year(); year++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := readParquetFile[BarRecord](s.barPath(symbol, year))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("reading bars for %s/%d: %w", symbol, year, err)
		}

		for _, r := range records {
			ts := time.UnixMilli(r.Timestamp).UTC()
			if ts.Before(start) || !ts.Before(end) {
				continue
			}
			bars = append(bars, domain.Bar{
				Symbol:    r.Symbol,
				Timestamp: ts,
				Open:      r.Open,
				High:      r.High,
				Low:       r.Low,
				Close:     r.Close,
				Volume:    r.Volume,
			})
		}
	}
	return bars, nil
}

// ListSymbols lists all symbols that have bar data.
func (s *ParquetStore) ListSymbols(_ context.Context) ([]string, error) {
	dir := filepath.Join(s.DataDir, "us", "daily")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			symbols = append(symbols, e.Name())
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// ---------------------------------------------------------------------------
// Data set snapshots
// ---------------------------------------------------------------------------

// SaveDataSet writes ds as a single snapshot file, replacing any previous one.
func (s *ParquetStore) SaveDataSet(_ context.Context, ds domain.DataSet) error {
	rows := make([]ReturnRow, 0, ds.Len())
	for _, p := range domain.Periods {
		for i, r := range ds[p] {
			rows = append(rows, ReturnRow{
				Period:   string(p),
				Symbol:   r.Symbol,
				Industry: r.Industry,
				Returns:  r.Returns,
				Position: int32(i),
			})
		}
	}
	if err := writeParquetFile(s.snapshotPath(), rows); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", s.Snapshot, err)
	}
	return nil
}

// LoadDataSet reads the snapshot file. Rows with an unknown period or an empty
// symbol are skipped.
func (s *ParquetStore) LoadDataSet(_ context.Context) (domain.DataSet, error) {
	rows, err := readParquetFile[ReturnRow](s.snapshotPath())
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", s.Snapshot, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Position < rows[j].Position
	})

	ds := make(domain.DataSet)
	for _, r := range rows {
		p := domain.Period(r.Period)
		if !p.Valid() || r.Symbol == "" {
			continue
		}
		ds[p] = append(ds[p], domain.ReturnRecord{
			Symbol:   r.Symbol,
			Industry: r.Industry,
			Returns:  r.Returns,
		})
	}
	return ds, nil
}

// ---------------------------------------------------------------------------
// Path helpers
// ---------------------------------------------------------------------------

// barPath returns the filesystem path for a bar Parquet file.
// Layout: <dataDir>/us/daily/<SYMBOL>/<YYYY>.parquet
func (s *ParquetStore) barPath(symbol string, year int) string {
	return filepath.Join(s.DataDir, "us", "daily", strings.ToUpper(symbol), fmt.Sprintf("%d.parquet", year))
}

// snapshotPath returns the filesystem path of the data set snapshot.
// Layout: <dataDir>/returns/<snapshot>.parquet
func (s *ParquetStore) snapshotPath() string {
	return filepath.Join(s.DataDir, "returns", s.Snapshot+".parquet")
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return parquet.ReadFile[T](path)
}

// mergeBarRecords deduplicates bar records by (symbol, timestamp), preferring
// new records over existing ones.
func mergeBarRecords(existing, incoming []BarRecord) []BarRecord {
	type key struct {
		symbol string
		ts     int64
	}
	seen := make(map[key]BarRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.Symbol, r.Timestamp}] = r
	}
	for _, r := range incoming {
		seen[key{r.Symbol, r.Timestamp}] = r
	}

	merged := make([]BarRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}
