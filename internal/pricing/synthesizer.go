package pricing

import (
	"fmt"

	"FuelPricer/internal/domain/models"
	"FuelPricer/pkg/util"
)

// BuildFeatureRow synthesizes the feature row for a single candidate price
// on today's date. True lag/rolling data for today does not exist yet, so
// the most recent historical statistics stand in:
//
//   - lag1_volume is the last realized volume (the true lag-1)
//   - lag7_volume reuses the last row's own lag7 value. This is a proxy
//     relative to the last history date, not a true 7-day-back lookup from
//     today; kept as-is for compatibility with the trained model.
//   - rolling means are copied from the last row, not recomputed with the
//     candidate price injected.
//
// The trend index is always computed fresh from today's date against the
// start of history. The function never mutates history and is
// deterministic for identical inputs.
func BuildFeatureRow(today models.TodayContext, candidatePrice float64, history []models.FeatureRow) (models.FeatureRow, error) {
	if len(history) == 0 {
		return models.FeatureRow{}, ErrInsufficientHistory
	}

	last := history[len(history)-1]
	avgComp := today.AvgCompPrice()

	row := models.FeatureRow{
		Date:               today.Date,
		Price:              candidatePrice,
		Cost:               today.Cost,
		Comp1Price:         today.Comp1Price,
		Comp2Price:         today.Comp2Price,
		Comp3Price:         today.Comp3Price,
		AvgCompPrice:       avgComp,
		PriceGapVsAvg:      candidatePrice - avgComp,
		DayOfWeek:          float64(mondayIndexedWeekday(today)),
		Month:              float64(today.Date.Month()),
		Lag1Volume:         last.Volume,
		Lag7Volume:         last.Lag7Volume,
		Rolling7dVolMean:   last.Rolling7dVolMean,
		Rolling7dPriceMean: last.Rolling7dPriceMean,
		TrendIndex:         float64(util.DaysBetween(history[0].Date, today.Date)),
	}

	return row, nil
}

// ProjectRow flattens a feature row onto the exact column order the model
// was trained with. The model is order-sensitive, so an unknown column is
// an input error rather than a silently skipped field.
func ProjectRow(row models.FeatureRow, columns []string) ([]float64, error) {
	vec := make([]float64, len(columns))
	for i, col := range columns {
		v, ok := row.Value(col)
		if !ok {
			return nil, fmt.Errorf("%w: unknown feature column %q", ErrInvalidInput, col)
		}
		vec[i] = v
	}
	return vec, nil
}

// mondayIndexedWeekday maps the calendar weekday to the 0=Monday..6=Sunday
// convention the feature table uses.
func mondayIndexedWeekday(today models.TodayContext) int {
	return (int(today.Date.Weekday()) + 6) % 7
}
