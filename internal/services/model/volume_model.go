package model

import (
	"context"
	"fmt"

	domsvc "FuelPricer/internal/domain/service"
	"FuelPricer/pkg/config"
)

// HTTPVolumeModel predicts daily sales volume by calling the external
// model inference service over HTTP. The trained regressor lives behind
// that service; this client only ships feature matrices and reads back
// volumes.
type HTTPVolumeModel struct {
	base     *HTTPServiceBase
	columns  []string
	attempts int
}

func NewHTTPVolumeModel(cfg *config.Config, columns []string) *HTTPVolumeModel {
	attempts := cfg.Model.Retries
	if attempts < 1 {
		attempts = 1
	}
	return &HTTPVolumeModel{
		base:     NewHTTPServiceBase(cfg),
		columns:  columns,
		attempts: attempts,
	}
}

type predictReq struct {
	Columns []string    `json:"columns"`
	Rows    [][]float64 `json:"rows"`
}

type predictResp struct {
	Volumes []float64 `json:"volumes"`
}

// Predict posts the full candidate feature matrix as one batch and
// returns one predicted volume per input row, in order.
func (m *HTTPVolumeModel) Predict(ctx context.Context, rows [][]float64) ([]float64, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	var pr predictResp
	err := m.base.PostJSONWithRetry(ctx, "/predict", predictReq{Columns: m.columns, Rows: rows}, &pr, m.attempts)
	if err != nil {
		return nil, fmt.Errorf("post predict: %w", err)
	}
	if len(pr.Volumes) != len(rows) {
		return nil, fmt.Errorf("predict returned %d volumes for %d rows", len(pr.Volumes), len(rows))
	}
	return pr.Volumes, nil
}

var _ domsvc.DemandModel = (*HTTPVolumeModel)(nil)
