package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

const csvHeader = "date,price,cost,comp1_price,comp2_price,comp3_price,volume\n"

func TestCSVHistoryStoreLoad(t *testing.T) {
	path := writeCSV(t, csvHeader+
		"2024-01-02,90.5,80,91,89,90,1010\n"+
		"2024-01-01,90.0,80,91,89,90,1000\n")

	recs, err := NewCSVHistoryStore(path).LoadHistory(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}

	// Rows come back sorted ascending regardless of file order.
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !recs[0].Date.Equal(want) {
		t.Fatalf("first date = %v, want %v", recs[0].Date, want)
	}
	if recs[0].Price != 90.0 || recs[0].Volume != 1000 {
		t.Fatalf("unexpected first record: %+v", recs[0])
	}
	if recs[1].Comp2Price != 89 {
		t.Fatalf("comp2 price = %v, want 89", recs[1].Comp2Price)
	}
}

func TestCSVHistoryStoreSkipsBadRows(t *testing.T) {
	path := writeCSV(t, csvHeader+
		"2024-01-01,90.0,80,91,89,90,1000\n"+
		"not-a-date,90.0,80,91,89,90,1000\n"+
		"2024-01-03,abc,80,91,89,90,1000\n"+
		"2024-01-04,90.0,80,91,89\n"+
		"2024-01-05,91.0,80,91,89,90,1020\n")

	recs, err := NewCSVHistoryStore(path).LoadHistory(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2 (bad rows skipped)", len(recs))
	}
}

func TestCSVHistoryStoreMissingColumn(t *testing.T) {
	path := writeCSV(t, "date,price,cost,volume\n2024-01-01,90,80,1000\n")
	if _, err := NewCSVHistoryStore(path).LoadHistory(context.Background()); err == nil {
		t.Fatal("expected error for missing columns")
	}
}

func TestCSVHistoryStoreMissingFile(t *testing.T) {
	if _, err := NewCSVHistoryStore("/nonexistent/history.csv").LoadHistory(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}
