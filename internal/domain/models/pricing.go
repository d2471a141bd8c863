package models

import "time"

// PriceRecord is one raw daily row of fuel history as ingested, before
// feature engineering.
type PriceRecord struct {
	Date       time.Time
	Price      float64
	Cost       float64
	Comp1Price float64
	Comp2Price float64
	Comp3Price float64
	Volume     float64
}

// FeatureRow is one engineered row of the history feature table: the raw
// economics plus competitor, calendar, lag, rolling and trend features.
// Rows are uniquely keyed by Date and held sorted ascending; all lag and
// rolling fields are fully populated (the table builder drops incomplete
// windows). Treated as immutable once built.
type FeatureRow struct {
	Date               time.Time
	Price              float64
	Cost               float64
	Comp1Price         float64
	Comp2Price         float64
	Comp3Price         float64
	AvgCompPrice       float64
	PriceGapVsAvg      float64
	DayOfWeek          float64
	Month              float64
	Lag1Volume         float64
	Lag7Volume         float64
	Rolling7dVolMean   float64
	Rolling7dPriceMean float64
	TrendIndex         float64
	Volume             float64
}

// Feature column names as the demand model was trained with them.
const (
	ColPrice              = "price"
	ColCost               = "cost"
	ColComp1Price         = "comp1_price"
	ColComp2Price         = "comp2_price"
	ColComp3Price         = "comp3_price"
	ColAvgCompPrice       = "avg_comp_price"
	ColPriceGapVsAvg      = "price_gap_vs_avg"
	ColDayOfWeek          = "day_of_week"
	ColMonth              = "month"
	ColLag1Volume         = "lag1_volume"
	ColLag7Volume         = "lag7_volume"
	ColRolling7dVolMean   = "rolling_7d_vol_mean"
	ColRolling7dPriceMean = "rolling_7d_price_mean"
	ColTrendIndex         = "trend_index"
)

// DefaultFeatureColumns is the training-time column order, used when the
// persisted feature config does not override it.
func DefaultFeatureColumns() []string {
	return []string{
		ColPrice,
		ColCost,
		ColComp1Price,
		ColComp2Price,
		ColComp3Price,
		ColAvgCompPrice,
		ColPriceGapVsAvg,
		ColDayOfWeek,
		ColMonth,
		ColLag1Volume,
		ColLag7Volume,
		ColRolling7dVolMean,
		ColRolling7dPriceMean,
		ColTrendIndex,
	}
}

// Value returns the named feature value.
func (r FeatureRow) Value(column string) (float64, bool) {
	switch column {
	case ColPrice:
		return r.Price, true
	case ColCost:
		return r.Cost, true
	case ColComp1Price:
		return r.Comp1Price, true
	case ColComp2Price:
		return r.Comp2Price, true
	case ColComp3Price:
		return r.Comp3Price, true
	case ColAvgCompPrice:
		return r.AvgCompPrice, true
	case ColPriceGapVsAvg:
		return r.PriceGapVsAvg, true
	case ColDayOfWeek:
		return r.DayOfWeek, true
	case ColMonth:
		return r.Month, true
	case ColLag1Volume:
		return r.Lag1Volume, true
	case ColLag7Volume:
		return r.Lag7Volume, true
	case ColRolling7dVolMean:
		return r.Rolling7dVolMean, true
	case ColRolling7dPriceMean:
		return r.Rolling7dPriceMean, true
	case ColTrendIndex:
		return r.TrendIndex, true
	default:
		return 0, false
	}
}

// TodayContext is the decision context for one pricing decision. Price is
// yesterday's realized company price.
type TodayContext struct {
	Date       time.Time
	Price      float64
	Cost       float64
	Comp1Price float64
	Comp2Price float64
	Comp3Price float64
}

// AvgCompPrice returns the mean competitor price for the day.
func (t TodayContext) AvgCompPrice() float64 {
	return (t.Comp1Price + t.Comp2Price + t.Comp3Price) / 3.0
}

// CandidateEvaluation is one evaluated point of the price grid.
type CandidateEvaluation struct {
	Price           float64
	PredictedVolume float64
	PredictedProfit float64
}

// Recommendation is the final pricing decision returned to the caller.
// ConstraintsRelaxed reports that the candidate grid had to be collapsed
// because the business constraints were mutually infeasible.
type Recommendation struct {
	RecommendedPrice       float64 `json:"recommended_price"`
	ExpectedVolume         float64 `json:"expected_volume"`
	ExpectedProfit         float64 `json:"expected_profit"`
	NumCandidatesEvaluated int     `json:"num_candidates_evaluated"`
	ConstraintsRelaxed     bool    `json:"constraints_relaxed"`
}
