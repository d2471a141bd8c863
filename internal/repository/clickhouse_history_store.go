package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"FuelPricer/internal/domain/models"
	domrepo "FuelPricer/internal/domain/repository"
	pkgch "FuelPricer/pkg/clickhouse"
	applogger "FuelPricer/pkg/logger"
)

// CHHistoryStore implements HistoryStore backed by ClickHouse.
type CHHistoryStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHHistoryStore(ch *pkgch.Client, table string) *CHHistoryStore {
	if table == "" {
		table = "fuelpricer.daily_history"
	}
	return &CHHistoryStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHHistoryStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHHistoryStore) LoadHistory(ctx context.Context) ([]models.PriceRecord, error) {
	start := time.Now()
	const qtpl = `
        SELECT date, price, cost, comp1_price, comp2_price, comp3_price, volume
        FROM %s
        ORDER BY date ASC
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse load_history query error",
				applogger.String("table", s.table),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	out := make([]models.PriceRecord, 0, 1024)
	for rows.Next() {
		var r models.PriceRecord
		if err := rows.Scan(&r.Date, &r.Price, &r.Cost, &r.Comp1Price, &r.Comp2Price, &r.Comp3Price, &r.Volume); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse load_history scan error",
					applogger.String("table", s.table),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse load_history rows error",
				applogger.String("table", s.table),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse load_history ok",
			applogger.String("table", s.table),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

var _ domrepo.HistoryStore = (*CHHistoryStore)(nil)
