package service

import "context"

// DemandModel is the capability the pricing engine needs from the trained
// volume regressor: one batch prediction over rows that follow a fixed,
// agreed column order. Implementations must be safe for concurrent use.
type DemandModel interface {
	Predict(ctx context.Context, rows [][]float64) ([]float64, error)
}
