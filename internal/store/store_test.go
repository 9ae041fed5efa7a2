package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"stockperf/internal/domain"
)

func testDataSet() domain.DataSet {
	return domain.DataSet{
		domain.Period1Month: {
			{Symbol: "ZZZ", Industry: "Tech", Returns: 5},
			{Symbol: "AAA", Industry: "Energy", Returns: -2.5},
			{Symbol: "MMM", Industry: "Tech", Returns: 12},
		},
		domain.Period6Months: {
			{Symbol: "AAA", Industry: "Energy", Returns: 30},
		},
	}
}

func assertDataSet(t *testing.T, got, want domain.DataSet) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d periods, want %d", len(got), len(want))
	}
	for p, wantRecs := range want {
		gotRecs, ok := got[p]
		if !ok {
			t.Errorf("period %q missing", p)
			continue
		}
		if len(gotRecs) != len(wantRecs) {
			t.Errorf("period %q: got %d records, want %d", p, len(gotRecs), len(wantRecs))
			continue
		}
		for i := range wantRecs {
			if gotRecs[i] != wantRecs[i] {
				t.Errorf("period %q record %d = %+v, want %+v", p, i, gotRecs[i], wantRecs[i])
			}
		}
	}
}

func TestParquetStorePath(t *testing.T) {
	ps := NewParquetStore("/data", "")

	bp := ps.barPath("aapl", 2024)
	wantBarPath := filepath.Join("/data", "us", "daily", "AAPL", "2024.parquet")
	if bp != wantBarPath {
		t.Errorf("barPath mismatch:\n  got  %s\n  want %s", bp, wantBarPath)
	}

	sp := ps.snapshotPath()
	wantSnap := filepath.Join("/data", "returns", "latest.parquet")
	if sp != wantSnap {
		t.Errorf("snapshotPath mismatch:\n  got  %s\n  want %s", sp, wantSnap)
	}
	if !strings.HasSuffix(NewParquetStore("/data", "2024-06").snapshotPath(), "2024-06.parquet") {
		t.Error("named snapshot should use its own file")
	}
}

func TestParquetStoreWriteReadBars(t *testing.T) {
	dir := t.TempDir()
	ps := NewParquetStore(dir, "")
	ctx := context.Background()

	bars := []domain.Bar{
		{Symbol: "AAPL", Timestamp: time.Date(2023, 12, 29, 0, 0, 0, 0, time.UTC), Open: 193, High: 194, Low: 191, Close: 192.5, Volume: 42000000},
		{Symbol: "AAPL", Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Open: 185.0, High: 186.5, Low: 184.0, Close: 185.5, Volume: 50000000},
		{Symbol: "AAPL", Timestamp: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Open: 185.5, High: 187.0, Low: 185.0, Close: 186.0, Volume: 45000000},
	}
	if err := ps.WriteBars(ctx, bars); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	// Range spans both year files.
	start := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	got, err := ps.ReadBars(ctx, "AAPL", start, end)
	if err != nil {
		t.Fatalf("ReadBars: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ReadBars returned %d bars, want 3", len(got))
	}
	if got[0].Close != 192.5 || got[2].Close != 186.0 {
		t.Errorf("closes = %v, %v; want 192.5, 186.0", got[0].Close, got[2].Close)
	}

	// Narrow range filters by timestamp.
	got, err = ps.ReadBars(ctx, "AAPL", time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), end)
	if err != nil {
		t.Fatalf("ReadBars: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("narrow ReadBars returned %d bars, want 1", len(got))
	}

	// Unknown symbol is empty, not an error.
	got, err = ps.ReadBars(ctx, "NOPE", start, end)
	if err != nil || len(got) != 0 {
		t.Errorf("ReadBars(NOPE) = %v, %v; want empty, nil", got, err)
	}
}

func TestParquetStoreMergeBars(t *testing.T) {
	dir := t.TempDir()
	ps := NewParquetStore(dir, "")
	ctx := context.Background()

	day1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	if err := ps.WriteBars(ctx, []domain.Bar{{Symbol: "MSFT", Timestamp: day1, Close: 403}}); err != nil {
		t.Fatalf("WriteBars (first): %v", err)
	}
	// Same day rewritten plus a new day: merge, newest wins.
	if err := ps.WriteBars(ctx, []domain.Bar{
		{Symbol: "MSFT", Timestamp: day1, Close: 404},
		{Symbol: "MSFT", Timestamp: day2, Close: 408},
	}); err != nil {
		t.Fatalf("WriteBars (second): %v", err)
	}

	got, err := ps.ReadBars(ctx, "MSFT", day1, day2)
	if err != nil {
		t.Fatalf("ReadBars: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadBars returned %d bars after merge, want 2", len(got))
	}
	if got[0].Close != 404 {
		t.Errorf("merged first close = %v, want 404", got[0].Close)
	}
}

func TestParquetStoreListSymbols(t *testing.T) {
	dir := t.TempDir()
	ps := NewParquetStore(dir, "")
	ctx := context.Background()

	if syms, err := ps.ListSymbols(ctx); err != nil || len(syms) != 0 {
		t.Fatalf("ListSymbols on empty dir = %v, %v", syms, err)
	}

	bars := []domain.Bar{
		{Symbol: "GOOGL", Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 140.5},
		{Symbol: "AAPL", Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 185.5},
	}
	if err := ps.WriteBars(ctx, bars); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	symbols, err := ps.ListSymbols(ctx)
	if err != nil {
		t.Fatalf("ListSymbols: %v", err)
	}
	if len(symbols) != 2 || symbols[0] != "AAPL" || symbols[1] != "GOOGL" {
		t.Errorf("ListSymbols = %v, want [AAPL GOOGL]", symbols)
	}
}

func TestParquetStoreDataSetRoundTrip(t *testing.T) {
	ps := NewParquetStore(t.TempDir(), "test")
	ctx := context.Background()

	if _, err := ps.LoadDataSet(ctx); err == nil {
		t.Fatal("LoadDataSet before save should fail")
	}

	want := testDataSet()
	if err := ps.SaveDataSet(ctx, want); err != nil {
		t.Fatalf("SaveDataSet: %v", err)
	}
	got, err := ps.LoadDataSet(ctx)
	if err != nil {
		t.Fatalf("LoadDataSet: %v", err)
	}
	assertDataSet(t, got, want)
}

func TestSQLiteStoreOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore(%q) returned error: %v", dbPath, err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			t.Errorf("Close() returned error: %v", cerr)
		}
	}()

	if err := store.db.Ping(); err != nil {
		t.Fatalf("db.Ping() returned error: %v", err)
	}

	if _, err := store.LoadDataSet(context.Background()); !errors.Is(err, ErrNoData) {
		t.Errorf("LoadDataSet on empty db = %v, want ErrNoData", err)
	}
}

func TestSQLiteStoreSaveLoad(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "returns.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	if err := store.SaveDataSet(ctx, testDataSet()); err != nil {
		t.Fatalf("SaveDataSet: %v", err)
	}

	// A second save replaces, it does not append.
	replacement := domain.DataSet{
		domain.Period3Months: {{Symbol: "QQQ", Industry: "Funds", Returns: 4}},
	}
	if err := store.SaveDataSet(ctx, replacement); err != nil {
		t.Fatalf("SaveDataSet (replace): %v", err)
	}

	got, err := store.LoadDataSet(ctx)
	if err != nil {
		t.Fatalf("LoadDataSet: %v", err)
	}
	assertDataSet(t, got, replacement)

	if err := store.SaveDataSet(ctx, testDataSet()); err != nil {
		t.Fatalf("SaveDataSet: %v", err)
	}
	got, err = store.LoadDataSet(ctx)
	if err != nil {
		t.Fatalf("LoadDataSet: %v", err)
	}
	assertDataSet(t, got, testDataSet())
}

func TestReadUniverse(t *testing.T) {
	csvData := `Company Name,Industry,Series,Symbol,ISIN Code
Alpha Ltd.,Information Technology,EQ,alpha,INE000A01
Beta Corp,Oil Gas & Consumable Fuels,EQ,BETA,INE000B01
Missing,Banks,EQ,,INE000C01
`
	got, err := ReadUniverse(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ReadUniverse: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d companies, want 2", len(got))
	}
	if got[0].Symbol != "ALPHA" || got[0].Name != "Alpha Ltd." || got[0].Industry != "Information Technology" {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Symbol != "BETA" {
		t.Errorf("got[1].Symbol = %q, want BETA", got[1].Symbol)
	}
}

func TestReadUniverseBadHeader(t *testing.T) {
	if _, err := ReadUniverse(strings.NewReader("Name,Sector\nA,B\n")); err == nil {
		t.Error("expected error for header without Symbol/Industry")
	}
	if _, err := ReadUniverse(strings.NewReader("")); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestOpenSource(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	src, closer, err := OpenSource("sqlite", filepath.Join(dir, "returns.db"), "", "")
	if err != nil {
		t.Fatalf("OpenSource(sqlite): %v", err)
	}
	if _, ok := src.(*SQLiteStore); !ok {
		t.Errorf("sqlite source is %T", src)
	}
	closer.Close()

	ps := NewParquetStore(dir, "")
	if err := ps.SaveDataSet(ctx, testDataSet()); err != nil {
		t.Fatalf("SaveDataSet: %v", err)
	}
	src, closer, err = OpenSource("parquet", "", dir, "latest")
	if err != nil {
		t.Fatalf("OpenSource(parquet): %v", err)
	}
	defer closer.Close()
	got, err := src.LoadDataSet(ctx)
	if err != nil {
		t.Fatalf("LoadDataSet: %v", err)
	}
	assertDataSet(t, got, testDataSet())

	if _, _, err := OpenSource("postgres", "", "", ""); err == nil {
		t.Error("expected error for unknown source kind")
	}
}

func TestParquetStoreReadBarsEndExclusive(t *testing.T) {
	ps := NewParquetStore(t.TempDir(), "")
	ctx := context.Background()

	bars := []domain.Bar{
		{Symbol: "MSFT", Timestamp: time.Date(2024, 6, 27, 4, 0, 0, 0, time.UTC), Close: 450},
		{Symbol: "MSFT", Timestamp: time.Date(2024, 6, 28, 4, 0, 0, 0, time.UTC), Close: 446},
	}
	if err := ps.WriteBars(ctx, bars); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	got, err := ps.ReadBars(ctx, "MSFT", start, time.Date(2024, 6, 29, 0, 0, 0, 0, time.UTC))
	if err != nil || len(got) != 2 {
		t.Fatalf("ReadBars to 6/29 = %d bars, %v; want 2", len(got), err)
	}
	got, err = ps.ReadBars(ctx, "MSFT", start, time.Date(2024, 6, 28, 4, 0, 0, 0, time.UTC))
	if err != nil || len(got) != 1 {
		t.Errorf("ReadBars to the 6/28 bar's own time = %d bars, %v; want 1", len(got), err)
	}
}

func TestReadBarCSV(t *testing.T) {
	csvData := `Date,Symbol,Open,High,Low,Close,Volume
2024-06-27,aapl,214.69,215.74,212.35,214.10,49772700
2024-06-28T04:00:00Z,AAPL,215.77,216.07,210.30,210.62,82542700
2024-06-28,,1,1,1,1,1
`
	got, err := ReadBarCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ReadBarCSV: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d bars, want 2", len(got))
	}
	if got[0].Symbol != "AAPL" || got[0].Close != 214.10 || got[0].Volume != 49772700 {
		t.Errorf("got[0] = %+v", got[0])
	}
	if want := time.Date(2024, 6, 28, 4, 0, 0, 0, time.UTC); !got[1].Timestamp.Equal(want) {
		t.Errorf("got[1].Timestamp = %v, want %v", got[1].Timestamp, want)
	}
}

func TestReadBarCSVErrors(t *testing.T) {
	tests := map[string]string{
		"missing close": "symbol,date\nAAA,2024-06-28\n",
		"bad date":      "symbol,date,close\nAAA,28/06/2024,1\n",
		"bad close":     "symbol,date,close\nAAA,2024-06-28,abc\n",
		"empty":         "",
	}
	for name, data := range tests {
		if _, err := ReadBarCSV(strings.NewReader(data)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
