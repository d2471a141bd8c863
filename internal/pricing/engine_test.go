package pricing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"FuelPricer/internal/domain/models"
)

type stubModel struct {
	fn    func(rows [][]float64) ([]float64, error)
	calls int
}

func (m *stubModel) Predict(_ context.Context, rows [][]float64) ([]float64, error) {
	m.calls++
	return m.fn(rows)
}

func constantVolume(v float64) *stubModel {
	return &stubModel{fn: func(rows [][]float64) ([]float64, error) {
		out := make([]float64, len(rows))
		for i := range out {
			out[i] = v
		}
		return out, nil
	}}
}

func TestRecommendArgmax(t *testing.T) {
	history := testHistory(10)
	model := constantVolume(1000)

	// Constant volume means profit grows with price, so the top of the
	// grid must win: high = min(120, 91.5, 90.5) = 90.5.
	rec, err := NewEngine(testRules()).Recommend(context.Background(), testToday(), history, model, models.DefaultFeatureColumns())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.RecommendedPrice != 90.5 {
		t.Fatalf("recommended price = %v, want 90.5", rec.RecommendedPrice)
	}
	if rec.ExpectedVolume != 1000 {
		t.Fatalf("expected volume = %v, want 1000", rec.ExpectedVolume)
	}
	wantProfit := (90.5 - 80) * 1000
	if rec.ExpectedProfit != wantProfit {
		t.Fatalf("expected profit = %v, want %v", rec.ExpectedProfit, wantProfit)
	}
	if rec.ConstraintsRelaxed {
		t.Fatalf("feasible constraints flagged as relaxed")
	}
	if model.calls != 1 {
		t.Fatalf("expected a single batch predict call, got %d", model.calls)
	}
}

func TestRecommendCandidateCount(t *testing.T) {
	history := testHistory(10)
	today := models.TodayContext{
		Date: testToday().Date, Price: 90, Cost: 80,
		Comp1Price: 91, Comp2Price: 89, Comp3Price: 90,
	}
	// Grid is 89.00..90.50 step 0.05: 31 candidates.
	rec, err := NewEngine(testRules()).Recommend(context.Background(), today, history, constantVolume(500), models.DefaultFeatureColumns())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.NumCandidatesEvaluated != 31 {
		t.Fatalf("candidates evaluated = %d, want 31", rec.NumCandidatesEvaluated)
	}
}

func TestRecommendTieBreakLowestPrice(t *testing.T) {
	history := testHistory(10)

	// Exactly two candidates tie on profit: 89.50 at volume 2100 and
	// 90.50 at volume 1900 both yield 19950 exactly. The lower price
	// must win.
	model := &stubModel{fn: func(rows [][]float64) ([]float64, error) {
		out := make([]float64, len(rows))
		for i, row := range rows {
			switch row[0] { // price is the first default column
			case 89.50:
				out[i] = 2100
			case 90.50:
				out[i] = 1900
			}
		}
		return out, nil
	}}

	rec, err := NewEngine(testRules()).Recommend(context.Background(), testToday(), history, model, models.DefaultFeatureColumns())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.RecommendedPrice != 89.50 {
		t.Fatalf("tie should resolve to lowest price 89.50, got %v", rec.RecommendedPrice)
	}
}

func TestRecommendDeterministic(t *testing.T) {
	history := testHistory(10)
	engine := NewEngine(testRules())
	cols := models.DefaultFeatureColumns()

	a, err := engine.Recommend(context.Background(), testToday(), history, constantVolume(800), cols)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := engine.Recommend(context.Background(), testToday(), history, constantVolume(800), cols)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Fatalf("recommendation not deterministic: %+v vs %+v", a, b)
	}
}

func TestRecommendDegenerateConstraints(t *testing.T) {
	history := testHistory(10)
	today := models.TodayContext{
		Date: testToday().Date, Price: 50, Cost: 100,
		Comp1Price: 40, Comp2Price: 40, Comp3Price: 40,
	}

	rec, err := NewEngine(testRules()).Recommend(context.Background(), today, history, constantVolume(100), models.DefaultFeatureColumns())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.ConstraintsRelaxed {
		t.Fatalf("expected constraints_relaxed for infeasible bounds")
	}
	if rec.RecommendedPrice < 100.5 {
		t.Fatalf("collapsed grid should start at the floor 100.5, got %v", rec.RecommendedPrice)
	}
}

func TestRecommendModelFailure(t *testing.T) {
	history := testHistory(10)
	model := &stubModel{fn: func(rows [][]float64) ([]float64, error) {
		return nil, fmt.Errorf("predict service unavailable")
	}}

	_, err := NewEngine(testRules()).Recommend(context.Background(), testToday(), history, model, models.DefaultFeatureColumns())
	if !errors.Is(err, ErrModelInference) {
		t.Fatalf("expected ErrModelInference, got %v", err)
	}
}

func TestRecommendPredictionCountMismatch(t *testing.T) {
	history := testHistory(10)
	model := &stubModel{fn: func(rows [][]float64) ([]float64, error) {
		return []float64{1}, nil
	}}

	_, err := NewEngine(testRules()).Recommend(context.Background(), testToday(), history, model, models.DefaultFeatureColumns())
	if !errors.Is(err, ErrModelInference) {
		t.Fatalf("expected ErrModelInference for count mismatch, got %v", err)
	}
}

func TestRecommendEmptyHistory(t *testing.T) {
	_, err := NewEngine(testRules()).Recommend(context.Background(), testToday(), nil, constantVolume(1), models.DefaultFeatureColumns())
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}
