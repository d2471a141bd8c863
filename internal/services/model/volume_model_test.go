package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"FuelPricer/internal/domain/models"
	"FuelPricer/pkg/config"
)

func testConfig(url string) *config.Config {
	cfg := &config.Config{}
	cfg.Model.ServiceURL = url
	cfg.Model.Timeout = 2 * time.Second
	cfg.Model.Retries = 1
	return cfg
}

func TestHTTPVolumeModelPredict(t *testing.T) {
	var got predictReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(predictResp{Volumes: []float64{100, 200}})
	}))
	defer srv.Close()

	cols := models.DefaultFeatureColumns()
	m := NewHTTPVolumeModel(testConfig(srv.URL), cols)

	rows := [][]float64{make([]float64, len(cols)), make([]float64, len(cols))}
	vols, err := m.Predict(context.Background(), rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vols) != 2 || vols[0] != 100 || vols[1] != 200 {
		t.Fatalf("unexpected volumes: %v", vols)
	}
	if len(got.Columns) != len(cols) || got.Columns[0] != models.ColPrice {
		t.Fatalf("request did not carry the training column order: %v", got.Columns)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("request carried %d rows, want 2", len(got.Rows))
	}
}

func TestHTTPVolumeModelCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(predictResp{Volumes: []float64{1}})
	}))
	defer srv.Close()

	m := NewHTTPVolumeModel(testConfig(srv.URL), models.DefaultFeatureColumns())
	if _, err := m.Predict(context.Background(), [][]float64{{1}, {2}}); err == nil {
		t.Fatal("expected error on volume count mismatch")
	}
}

func TestHTTPVolumeModelUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	m := NewHTTPVolumeModel(testConfig(srv.URL), models.DefaultFeatureColumns())
	if _, err := m.Predict(context.Background(), [][]float64{{1}}); err == nil {
		t.Fatal("expected error on upstream failure")
	}
}

func TestHTTPVolumeModelEmptyBatch(t *testing.T) {
	m := NewHTTPVolumeModel(testConfig("http://unreachable.invalid"), models.DefaultFeatureColumns())
	vols, err := m.Predict(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vols != nil {
		t.Fatalf("expected no volumes for empty batch, got %v", vols)
	}
}

func TestLoadFeatureConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feature_config.json")
	payload := `{"feature_columns": ["price", "cost", "trend_index"], "target_column": "volume"}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	fc, err := LoadFeatureConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fc.FeatureColumns) != 3 || fc.FeatureColumns[2] != "trend_index" {
		t.Fatalf("unexpected columns: %v", fc.FeatureColumns)
	}
	if fc.TargetColumn != "volume" {
		t.Fatalf("unexpected target: %s", fc.TargetColumn)
	}
}

func TestLoadFeatureConfigDefault(t *testing.T) {
	fc, err := LoadFeatureConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fc.FeatureColumns) != len(models.DefaultFeatureColumns()) {
		t.Fatalf("default config should use the built-in column order, got %v", fc.FeatureColumns)
	}
}

func TestLoadFeatureConfigEmptyColumns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feature_config.json")
	if err := os.WriteFile(path, []byte(`{"feature_columns": []}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadFeatureConfig(path); err == nil {
		t.Fatal("expected error for empty feature_columns")
	}
}
