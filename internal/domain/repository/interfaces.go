package repository

import (
	"context"

	"FuelPricer/internal/domain/models"
)

// HistoryStore provides read-only access to the raw fuel price history,
// sorted ascending by date.
type HistoryStore interface {
	LoadHistory(ctx context.Context) ([]models.PriceRecord, error)
}

// AuditPublisher publishes accepted recommendations for downstream analysis.
type AuditPublisher interface {
	PublishRecommendation(ctx context.Context, ctxDate string, rec models.Recommendation) error
	Close() error
}

// Metrics records operational metrics.
type Metrics interface {
	RecordRecommendation(source string, price, profit float64, candidates int, relaxed bool)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
