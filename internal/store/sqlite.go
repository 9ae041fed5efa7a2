package store

import (
	"context"
	"database/sql"
	"fmt"

	"stockperf/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface checks.
var _ DataSetSource = (*SQLiteStore)(nil)
var _ DataSetSink = (*SQLiteStore)(nil)

// migrations are applied in order on open. Each statement must be idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS period_returns (
		period   TEXT    NOT NULL,
		position INTEGER NOT NULL,
		symbol   TEXT    NOT NULL,
		industry TEXT    NOT NULL,
		returns  REAL    NOT NULL,
		PRIMARY KEY (period, symbol)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_period_returns_order ON period_returns (period, position)`,
}

// SQLiteStore implements DataSetSource and DataSetSink backed by a SQLite
// database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, applies the
// schema, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating %s: %w", dbPath, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LoadDataSet reads every period_returns row, preserving per-period order.
// Rows with an unknown period are skipped.
func (s *SQLiteStore) LoadDataSet(ctx context.Context) (domain.DataSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT period, symbol, industry, returns FROM period_returns ORDER BY period, position`)
	if err != nil {
		return nil, fmt.Errorf("querying period_returns: %w", err)
	}
	defer rows.Close()

	ds := make(domain.DataSet)
	n := 0
	for rows.Next() {
		var period string
		var rec domain.ReturnRecord
		if err := rows.Scan(&period, &rec.Symbol, &rec.Industry, &rec.Returns); err != nil {
			return nil, fmt.Errorf("scanning period_returns: %w", err)
		}
		p := domain.Period(period)
		if !p.Valid() || rec.Symbol == "" {
			continue
		}
		ds[p] = append(ds[p], rec)
		n++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNoData
	}
	return ds, nil
}

// SaveDataSet replaces the stored data set with ds in a single transaction.
func (s *SQLiteStore) SaveDataSet(ctx context.Context, ds domain.DataSet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM period_returns`); err != nil {
		return fmt.Errorf("clearing period_returns: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO period_returns (period, position, symbol, industry, returns) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range domain.Periods {
		for i, r := range ds[p] {
			if _, err := stmt.ExecContext(ctx, string(p), i, r.Symbol, r.Industry, r.Returns); err != nil {
				return fmt.Errorf("inserting %s/%s: %w", p, r.Symbol, err)
			}
		}
	}
	return tx.Commit()
}
