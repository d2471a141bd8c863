package model

import (
	"encoding/json"
	"fmt"
	"os"

	"FuelPricer/internal/domain/models"
)

// FeatureConfig is the feature schema persisted at training time. The
// inference side must feed the model columns in exactly this order.
type FeatureConfig struct {
	FeatureColumns []string `json:"feature_columns"`
	TargetColumn   string   `json:"target_column"`
}

// LoadFeatureConfig reads the training-time feature schema from disk.
// An empty path falls back to the built-in default column order.
func LoadFeatureConfig(path string) (FeatureConfig, error) {
	if path == "" {
		return FeatureConfig{
			FeatureColumns: models.DefaultFeatureColumns(),
			TargetColumn:   "volume",
		}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return FeatureConfig{}, fmt.Errorf("read feature config: %w", err)
	}

	var fc FeatureConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return FeatureConfig{}, fmt.Errorf("parse feature config: %w", err)
	}
	if len(fc.FeatureColumns) == 0 {
		return FeatureConfig{}, fmt.Errorf("feature config %s: no feature_columns", path)
	}
	if fc.TargetColumn == "" {
		fc.TargetColumn = "volume"
	}
	return fc, nil
}
