package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"stockperf/internal/domain"
)

// LoadBarCSV reads daily bars from a CSV export. See ReadBarCSV for the
// accepted layout.
func LoadBarCSV(path string) ([]domain.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bars, err := ReadBarCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading bars %s: %w", path, err)
	}
	slog.Info("loaded bar csv", "file", path, "bars", len(bars))
	return bars, nil
}

// ReadBarCSV parses daily bars from r. The header must name symbol, date (or
// timestamp) and close columns; open, high, low and volume are optional.
// Dates are YYYY-MM-DD or RFC 3339. Rows with an empty symbol are skipped.
func ReadBarCSV(r io.Reader) ([]domain.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty bar file")
		}
		return nil, err
	}

	col := map[string]int{}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "timestamp" {
			name = "date"
		}
		col[name] = i
	}
	for _, req := range []string{"symbol", "date", "close"} {
		if _, ok := col[req]; !ok {
			return nil, fmt.Errorf("bar header %v lacks %s column", header, req)
		}
	}

	var bars []domain.Bar
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		field := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		sym := strings.ToUpper(field("symbol"))
		if sym == "" {
			continue
		}
		ts, err := parseBarTime(field("date"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		b := domain.Bar{Symbol: sym, Timestamp: ts}
		for _, f := range []struct {
			name string
			dst  *float64
		}{
			{"open", &b.Open}, {"high", &b.High}, {"low", &b.Low}, {"close", &b.Close},
		} {
			v := field(f.name)
			if v == "" {
				continue
			}
			if *f.dst, err = strconv.ParseFloat(v, 64); err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, f.name, err)
			}
		}
		if v := field("volume"); v != "" {
			vol, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: volume: %w", line, err)
			}
			b.Volume = int64(vol)
		}
		bars = append(bars, b)
	}
	return bars, nil
}

func parseBarTime(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q", s)
	}
	return t.UTC(), nil
}
