package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"FuelPricer/internal/domain/models"
	"FuelPricer/internal/pricing"
	"FuelPricer/internal/repository"
	"FuelPricer/internal/usecase"
	"FuelPricer/pkg/cache"
	xhttp "FuelPricer/pkg/http"
	applogger "FuelPricer/pkg/logger"
)

type stubStore struct{ records []models.PriceRecord }

func (s *stubStore) LoadHistory(context.Context) ([]models.PriceRecord, error) {
	return s.records, nil
}

type stubModel struct{ err error }

func (m *stubModel) Predict(_ context.Context, rows [][]float64) ([]float64, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]float64, len(rows))
	for i := range out {
		out[i] = 1000
	}
	return out, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordRecommendation(string, float64, float64, int, bool) {}
func (nopMetrics) RecordError(string)                                       {}
func (nopMetrics) RecordLatency(string, float64)                            {}

func testRecords(n int) []models.PriceRecord {
	recs := make([]models.PriceRecord, 0, n)
	for i := 0; i < n; i++ {
		recs = append(recs, models.PriceRecord{
			Date:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Price:      90,
			Cost:       80,
			Comp1Price: 91,
			Comp2Price: 89,
			Comp3Price: 90,
			Volume:     1000,
		})
	}
	return recs
}

func newHandler(t *testing.T, model *stubModel, refresh bool) *RecommendHandler {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	rules := pricing.Rules{
		MinPrice: 50, MaxPrice: 120, GridStep: 0.05,
		MaxAbsChange: 1.0, MinMarginPerLiter: 0.5, CompetitiveMaxDelta: 0.5,
	}
	rec := usecase.NewRecommender(
		pricing.NewEngine(rules),
		model,
		&stubStore{records: testRecords(20)},
		cache.NewMemoryCache(),
		time.Minute,
		repository.NopAuditPublisher{},
		nopMetrics{},
		l,
		models.DefaultFeatureColumns(),
	)
	if refresh {
		if err := rec.Refresh(context.Background()); err != nil {
			t.Fatalf("refresh: %v", err)
		}
	}
	h := NewRecommendHandler(rec)
	h.SetLogger(l)
	return h
}

func doRequest(h *RecommendHandler, method, path, body string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	return rr
}

const validBody = `{"date":"2024-01-21","price":90,"cost":80,"comp1_price":91,"comp2_price":89,"comp3_price":90}`

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) xhttp.APIResponse {
	t.Helper()
	var env xhttp.APIResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rr.Body.String())
	}
	return env
}

func TestRecommendEndpoint(t *testing.T) {
	h := newHandler(t, &stubModel{}, true)
	rr := doRequest(h, http.MethodPost, "/api/recommend", validBody)

	env := decodeEnvelope(t, rr)
	if env.Status != http.StatusOK {
		t.Fatalf("envelope status = %d, want 200 (%s)", env.Status, rr.Body.String())
	}

	data, err := json.Marshal(env.Data)
	if err != nil {
		t.Fatalf("remarshal data: %v", err)
	}
	var rec models.Recommendation
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("decode recommendation: %v", err)
	}
	if rec.RecommendedPrice < 89.0 || rec.RecommendedPrice > 90.5 {
		t.Fatalf("price %v outside the feasible band", rec.RecommendedPrice)
	}
	if rec.NumCandidatesEvaluated == 0 {
		t.Fatal("no candidates evaluated")
	}
}

func TestRecommendEndpointMissingField(t *testing.T) {
	h := newHandler(t, &stubModel{}, true)
	body := `{"date":"2024-01-21","price":90,"cost":80,"comp1_price":91,"comp2_price":89}`
	rr := doRequest(h, http.MethodPost, "/api/recommend", body)

	if env := decodeEnvelope(t, rr); env.Status != http.StatusBadRequest {
		t.Fatalf("envelope status = %d, want 400", env.Status)
	}
}

func TestRecommendEndpointBadDate(t *testing.T) {
	h := newHandler(t, &stubModel{}, true)
	body := `{"date":"21/01/2024","price":90,"cost":80,"comp1_price":91,"comp2_price":89,"comp3_price":90}`
	rr := doRequest(h, http.MethodPost, "/api/recommend", body)

	if env := decodeEnvelope(t, rr); env.Status != http.StatusBadRequest {
		t.Fatalf("envelope status = %d, want 400", env.Status)
	}
}

func TestRecommendEndpointNegativePrice(t *testing.T) {
	h := newHandler(t, &stubModel{}, true)
	body := `{"date":"2024-01-21","price":-5,"cost":80,"comp1_price":91,"comp2_price":89,"comp3_price":90}`
	rr := doRequest(h, http.MethodPost, "/api/recommend", body)

	if env := decodeEnvelope(t, rr); env.Status != http.StatusBadRequest {
		t.Fatalf("envelope status = %d, want 400", env.Status)
	}
}

func TestRecommendEndpointModelDown(t *testing.T) {
	h := newHandler(t, &stubModel{err: context.DeadlineExceeded}, true)
	rr := doRequest(h, http.MethodPost, "/api/recommend", validBody)

	if env := decodeEnvelope(t, rr); env.Status != http.StatusBadGateway {
		t.Fatalf("envelope status = %d, want 502", env.Status)
	}
}

func TestRulesEndpoint(t *testing.T) {
	h := newHandler(t, &stubModel{}, true)
	rr := doRequest(h, http.MethodGet, "/api/rules", "")

	env := decodeEnvelope(t, rr)
	if env.Status != http.StatusOK {
		t.Fatalf("envelope status = %d, want 200", env.Status)
	}
	rules, ok := env.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected rules payload: %v", env.Data)
	}
	if rules["grid_step"] != 0.05 {
		t.Fatalf("grid_step = %v, want 0.05", rules["grid_step"])
	}
}

func TestHealthEndpoint(t *testing.T) {
	cold := newHandler(t, &stubModel{}, false)
	if rr := doRequest(cold, http.MethodGet, "/health", ""); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("cold health status = %d, want 503", rr.Code)
	}

	warm := newHandler(t, &stubModel{}, true)
	if rr := doRequest(warm, http.MethodGet, "/health", ""); rr.Code != http.StatusOK {
		t.Fatalf("warm health status = %d, want 200", rr.Code)
	}
}
