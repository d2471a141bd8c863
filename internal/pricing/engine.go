package pricing

import (
	"context"
	"fmt"

	"FuelPricer/internal/domain/models"
	domsvc "FuelPricer/internal/domain/service"
)

// Engine searches the constrained candidate price grid for the price with
// the highest predicted profit. It is stateless per call: every
// recommendation is a pure function of the decision context, the history
// snapshot, the model and the feature column order.
type Engine struct {
	rules Rules
}

func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules}
}

// Rules returns the business constraints the engine prices under.
func (e *Engine) Rules() Rules {
	return e.rules
}

// Recommend evaluates every candidate price and returns the profit argmax.
//
// All candidates are scored in a single batch predict call; a failure for
// any candidate fails the whole request, since a partial candidate set
// could silently bias the profit-maximizing choice. The grid is ascending
// and the selection scan keeps the first maximum, so exact profit ties
// resolve to the lowest tied price no matter how the model call was
// executed.
func (e *Engine) Recommend(
	ctx context.Context,
	today models.TodayContext,
	history []models.FeatureRow,
	model domsvc.DemandModel,
	featureCols []string,
) (models.Recommendation, error) {
	if len(history) == 0 {
		return models.Recommendation{}, ErrInsufficientHistory
	}

	prices, collapsed := e.rules.BuildGrid(today.Cost, today.Price, today.AvgCompPrice())
	if len(prices) == 0 {
		return models.Recommendation{}, ErrNoCandidates
	}

	rows := make([][]float64, len(prices))
	for i, p := range prices {
		feat, err := BuildFeatureRow(today, p, history)
		if err != nil {
			return models.Recommendation{}, err
		}
		vec, err := ProjectRow(feat, featureCols)
		if err != nil {
			return models.Recommendation{}, err
		}
		rows[i] = vec
	}

	volumes, err := model.Predict(ctx, rows)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("%w: %v", ErrModelInference, err)
	}
	if len(volumes) != len(prices) {
		return models.Recommendation{}, fmt.Errorf("%w: got %d predictions for %d candidates",
			ErrModelInference, len(volumes), len(prices))
	}

	best := models.CandidateEvaluation{}
	for i, p := range prices {
		eval := models.CandidateEvaluation{
			Price:           p,
			PredictedVolume: volumes[i],
			PredictedProfit: (p - today.Cost) * volumes[i],
		}
		if i == 0 || eval.PredictedProfit > best.PredictedProfit {
			best = eval
		}
	}

	return models.Recommendation{
		RecommendedPrice:       best.Price,
		ExpectedVolume:         best.PredictedVolume,
		ExpectedProfit:         best.PredictedProfit,
		NumCandidatesEvaluated: len(prices),
		ConstraintsRelaxed:     collapsed,
	}, nil
}
