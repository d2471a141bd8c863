package pricing

import "math"

// Rules holds the business constraints bounding the candidate price grid.
type Rules struct {
	MinPrice            float64
	MaxPrice            float64
	GridStep            float64
	MaxAbsChange        float64
	MinMarginPerLiter   float64
	CompetitiveMaxDelta float64
}

// BuildGrid returns the ascending candidate price grid for today, bounded
// by:
//   - overall min/max allowed price
//   - max absolute change vs yesterday's company price
//   - minimum margin vs cost
//   - maximum allowed gap above avg competitor price
//
// Each lower bound enforces one constraint, so max() of them is the
// tightest feasible floor; likewise min() of the upper bounds. When the
// constraints are mutually infeasible (low >= high) the grid collapses to
// a single step above the floor so a recommendation is always produced;
// the second return value reports that the constraints were relaxed.
func (r Rules) BuildGrid(cost, lastPrice, avgComp float64) ([]float64, bool) {
	low := math.Max(r.MinPrice, math.Max(cost+r.MinMarginPerLiter, lastPrice-r.MaxAbsChange))
	high := math.Min(r.MaxPrice, math.Min(lastPrice+r.MaxAbsChange, avgComp+r.CompetitiveMaxDelta))

	collapsed := false
	if low >= high {
		high = low + r.GridStep
		collapsed = true
	}

	// Step from low up to and including high. Candidates are computed as
	// low + i*step rather than accumulated, so float error does not drift
	// across the grid; each is rounded to cents before reporting.
	prices := make([]float64, 0, int((high-low)/r.GridStep)+2)
	for i := 0; ; i++ {
		v := low + float64(i)*r.GridStep
		if v > high+1e-9 {
			break
		}
		p := math.Round(v*100) / 100
		if n := len(prices); n > 0 && prices[n-1] == p {
			continue
		}
		prices = append(prices, p)
	}

	return prices, collapsed
}
