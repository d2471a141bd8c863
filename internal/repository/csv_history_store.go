package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"FuelPricer/internal/domain/models"
	domrepo "FuelPricer/internal/domain/repository"
	applogger "FuelPricer/pkg/logger"
	"FuelPricer/pkg/util"
)

// CSVHistoryStore loads daily fuel history from a CSV file with the
// columns date, price, cost, comp1_price, comp2_price, comp3_price,
// volume. Rows that fail to parse are skipped with a warning rather than
// failing the whole load.
type CSVHistoryStore struct {
	path string
	l    *applogger.Logger
}

func NewCSVHistoryStore(path string) *CSVHistoryStore {
	return &CSVHistoryStore{path: path}
}

// SetLogger injects a structured logger.
func (s *CSVHistoryStore) SetLogger(l *applogger.Logger) { s.l = l }

var requiredColumns = []string{"date", "price", "cost", "comp1_price", "comp2_price", "comp3_price", "volume"}

func (s *CSVHistoryStore) LoadHistory(ctx context.Context) ([]models.PriceRecord, error) {
	start := time.Now()

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open history csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read history header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("history csv %s: missing column %q", s.path, col)
		}
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read history rows: %w", err)
	}

	out := make([]models.PriceRecord, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		rec, err := parseRecord(row, idx)
		if err != nil {
			skipped++
			if s.l != nil {
				s.l.Warn("csv history row skipped",
					applogger.String("path", s.path),
					applogger.Error(err),
				)
			}
			continue
		}
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	if s.l != nil {
		s.l.Info("csv history loaded",
			applogger.String("path", s.path),
			applogger.Int("rows", len(out)),
			applogger.Int("skipped", skipped),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func parseRecord(row []string, idx map[string]int) (models.PriceRecord, error) {
	var rec models.PriceRecord

	field := func(name string) (string, error) {
		i := idx[name]
		if i >= len(row) {
			return "", fmt.Errorf("short row: missing %s", name)
		}
		return row[i], nil
	}

	raw, err := field("date")
	if err != nil {
		return rec, err
	}
	date, ok := util.ParseDate(raw)
	if !ok {
		return rec, fmt.Errorf("parse date %q", raw)
	}
	rec.Date = date

	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"price", &rec.Price},
		{"cost", &rec.Cost},
		{"comp1_price", &rec.Comp1Price},
		{"comp2_price", &rec.Comp2Price},
		{"comp3_price", &rec.Comp3Price},
		{"volume", &rec.Volume},
	} {
		raw, err := field(f.name)
		if err != nil {
			return rec, err
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return rec, fmt.Errorf("parse %s %q: %w", f.name, raw, err)
		}
		*f.dst = v
	}
	return rec, nil
}

var _ domrepo.HistoryStore = (*CSVHistoryStore)(nil)
