package features

import (
	"sort"
	"time"

	"FuelPricer/internal/domain/models"
	"FuelPricer/pkg/util"
)

// lag/rolling window length in days
const windowDays = 7

// Clean drops rows that are not economically valid: zero dates,
// non-positive prices or costs, and negative volumes. The input is not
// mutated.
func Clean(records []models.PriceRecord) []models.PriceRecord {
	out := make([]models.PriceRecord, 0, len(records))
	for _, r := range records {
		if r.Date.IsZero() {
			continue
		}
		if r.Price <= 0 || r.Cost <= 0 {
			continue
		}
		if r.Volume < 0 {
			continue
		}
		out = append(out, r)
	}
	return out
}

// BuildFeatureTable runs the full feature engineering pipeline over raw
// daily history: competitor averages and gaps, calendar features, lag and
// rolling-window demand statistics, and a trend index anchored at the
// first date of the raw series.
//
// The first windowDays rows have incomplete lag/rolling windows and are
// dropped, so the result is len(records)-windowDays rows (or empty when
// the history is too short). Rows are returned sorted by date ascending.
func BuildFeatureTable(records []models.PriceRecord) []models.FeatureRow {
	if len(records) <= windowDays {
		return nil
	}

	sorted := make([]models.PriceRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	start := sorted[0].Date
	rows := make([]models.FeatureRow, 0, len(sorted)-windowDays)
	for i := windowDays; i < len(sorted); i++ {
		rec := sorted[i]
		avgComp := (rec.Comp1Price + rec.Comp2Price + rec.Comp3Price) / 3.0

		rows = append(rows, models.FeatureRow{
			Date:               rec.Date,
			Price:              rec.Price,
			Cost:               rec.Cost,
			Comp1Price:         rec.Comp1Price,
			Comp2Price:         rec.Comp2Price,
			Comp3Price:         rec.Comp3Price,
			AvgCompPrice:       avgComp,
			PriceGapVsAvg:      rec.Price - avgComp,
			DayOfWeek:          float64(mondayIndexedWeekday(rec.Date)),
			Month:              float64(rec.Date.Month()),
			Lag1Volume:         sorted[i-1].Volume,
			Lag7Volume:         sorted[i-windowDays].Volume,
			Rolling7dVolMean:   rollingMean(sorted, i, func(r models.PriceRecord) float64 { return r.Volume }),
			Rolling7dPriceMean: rollingMean(sorted, i, func(r models.PriceRecord) float64 { return r.Price }),
			TrendIndex:         float64(util.DaysBetween(start, rec.Date)),
			Volume:             rec.Volume,
		})
	}
	return rows
}

// rollingMean averages the field over the windowDays rows ending at and
// including index i.
func rollingMean(records []models.PriceRecord, i int, field func(models.PriceRecord) float64) float64 {
	sum := 0.0
	for j := i - windowDays + 1; j <= i; j++ {
		sum += field(records[j])
	}
	return sum / float64(windowDays)
}

// mondayIndexedWeekday maps the calendar weekday to the 0=Monday..6=Sunday
// convention the demand model was trained with.
func mondayIndexedWeekday(d time.Time) int {
	return (int(d.Weekday()) + 6) % 7
}
