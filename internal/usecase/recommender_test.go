package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"FuelPricer/internal/domain/models"
	domrepo "FuelPricer/internal/domain/repository"
	"FuelPricer/internal/pricing"
	"FuelPricer/internal/repository"
	"FuelPricer/pkg/cache"
	applogger "FuelPricer/pkg/logger"
)

type stubStore struct {
	records []models.PriceRecord
	err     error
}

func (s *stubStore) LoadHistory(context.Context) ([]models.PriceRecord, error) {
	return s.records, s.err
}

type stubModel struct {
	volume float64
	err    error
	calls  int
}

func (m *stubModel) Predict(_ context.Context, rows [][]float64) ([]float64, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]float64, len(rows))
	for i := range out {
		out[i] = m.volume
	}
	return out, nil
}

type failingAudit struct{ calls int }

func (a *failingAudit) PublishRecommendation(context.Context, string, models.Recommendation) error {
	a.calls++
	return errors.New("broker unreachable")
}

func (a *failingAudit) Close() error { return nil }

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

func testRules() pricing.Rules {
	return pricing.Rules{
		MinPrice:            50,
		MaxPrice:            120,
		GridStep:            0.05,
		MaxAbsChange:        1.0,
		MinMarginPerLiter:   0.5,
		CompetitiveMaxDelta: 0.5,
	}
}

func newRecommender(t *testing.T, store *stubStore, model *stubModel, audit *failingAudit) *Recommender {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	var pub domrepo.AuditPublisher = repository.NopAuditPublisher{}
	if audit != nil {
		pub = audit
	}
	return NewRecommender(
		pricing.NewEngine(testRules()),
		model,
		store,
		cache.NewMemoryCache(),
		time.Minute,
		pub,
		nopMetrics{},
		l,
		models.DefaultFeatureColumns(),
	)
}

func fptr(v float64) *float64 { return &v }

func testRequest() *models.RecommendRequest {
	return &models.RecommendRequest{
		Date:       "2024-01-21",
		Price:      fptr(90),
		Cost:       fptr(80),
		Comp1Price: fptr(91),
		Comp2Price: fptr(89),
		Comp3Price: fptr(90),
	}
}

func TestRecommendTodayHappyPath(t *testing.T) {
	model := &stubModel{volume: 1000}
	r := newRecommender(t, &stubStore{records: testRecords(20)}, model, nil)

	if r.Ready() {
		t.Fatal("recommender should not be ready before refresh")
	}
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !r.Ready() {
		t.Fatal("recommender should be ready after refresh")
	}

	rec, err := r.RecommendToday(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.RecommendedPrice < 89.0 || rec.RecommendedPrice > 90.5 {
		t.Fatalf("price %v outside the feasible band", rec.RecommendedPrice)
	}
	if rec.NumCandidatesEvaluated == 0 {
		t.Fatal("no candidates evaluated")
	}
}

func TestRecommendTodayCacheHit(t *testing.T) {
	model := &stubModel{volume: 1000}
	r := newRecommender(t, &stubStore{records: testRecords(20)}, model, nil)
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	first, err := r.RecommendToday(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := r.RecommendToday(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("cached result differs: %+v vs %+v", first, second)
	}
	if model.calls != 1 {
		t.Fatalf("model called %d times, want 1 (second request served from cache)", model.calls)
	}
}

func TestRecommendTodayRefreshInvalidatesCache(t *testing.T) {
	model := &stubModel{volume: 1000}
	r := newRecommender(t, &stubStore{records: testRecords(20)}, model, nil)
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if _, err := r.RecommendToday(context.Background(), testRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := r.RecommendToday(context.Background(), testRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model.calls != 2 {
		t.Fatalf("model called %d times, want 2 (refresh invalidates cache)", model.calls)
	}
}

func TestRecommendTodayBeforeRefresh(t *testing.T) {
	r := newRecommender(t, &stubStore{records: testRecords(20)}, &stubModel{volume: 1}, nil)
	_, err := r.RecommendToday(context.Background(), testRequest())
	if !errors.Is(err, pricing.ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestRecommendTodayInvalidDate(t *testing.T) {
	r := newRecommender(t, &stubStore{records: testRecords(20)}, &stubModel{volume: 1}, nil)
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	req := testRequest()
	req.Date = "21/01/2024"
	_, err := r.RecommendToday(context.Background(), req)
	if !errors.Is(err, pricing.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRecommendTodayModelFailure(t *testing.T) {
	model := &stubModel{err: fmt.Errorf("service down")}
	r := newRecommender(t, &stubStore{records: testRecords(20)}, model, nil)
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	_, err := r.RecommendToday(context.Background(), testRequest())
	if !errors.Is(err, pricing.ErrModelInference) {
		t.Fatalf("expected ErrModelInference, got %v", err)
	}
}

func TestRecommendTodayAuditFailureDoesNotFail(t *testing.T) {
	audit := &failingAudit{}
	r := newRecommender(t, &stubStore{records: testRecords(20)}, &stubModel{volume: 1000}, audit)
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if _, err := r.RecommendToday(context.Background(), testRequest()); err != nil {
		t.Fatalf("audit failure must not fail the decision: %v", err)
	}
	if audit.calls != 1 {
		t.Fatalf("audit called %d times, want 1", audit.calls)
	}
}

func TestRefreshTooShortHistory(t *testing.T) {
	r := newRecommender(t, &stubStore{records: testRecords(5)}, &stubModel{volume: 1}, nil)
	if err := r.Refresh(context.Background()); !errors.Is(err, pricing.ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestRefreshStoreError(t *testing.T) {
	r := newRecommender(t, &stubStore{err: fmt.Errorf("disk gone")}, &stubModel{volume: 1}, nil)
	if err := r.Refresh(context.Background()); err == nil {
		t.Fatal("expected error from failing store")
	}
}
