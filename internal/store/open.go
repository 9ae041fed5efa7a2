package store

import (
	"fmt"
	"io"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenSource opens the data set source named by kind ("sqlite" or "parquet").
// The returned Closer releases any underlying handle.
func OpenSource(kind, sqlitePath, dataDir, snapshot string) (DataSetSource, io.Closer, error) {
	switch kind {
	case "", "sqlite":
		s, err := NewSQLiteStore(sqlitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite source: %w", err)
		}
		return s, s, nil
	case "parquet":
		return NewParquetStore(dataDir, snapshot), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown data source %q", kind)
	}
}
