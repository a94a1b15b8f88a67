package engine

import (
	"math"
	"sort"

	"github.com/basketwise/basket-cli/internal/model"
)

// maxDrivers bounds how many top-magnitude score deltas a trace surfaces.
const maxDrivers = 3

// buildIngredientTrace projects one ingredient's filter and scoring outputs
// into an audit record. Strictly read-only over its inputs: nothing here is
// consulted by the decision path.
func buildIngredientTrace(key string, fr FilterResult, ranked []model.ScoredCandidate, sel *Selection) model.IngredientTrace {
	tr := model.IngredientTrace{
		Key:                key,
		RetrievedByVendor:  fr.RetrievedByVendor,
		ConsideredByVendor: fr.ConsideredByVendor,
		Scored:             ranked,
		Eliminated:         fr.Eliminated,
		DataGaps:           fr.DataGaps,
	}
	if sel == nil {
		return tr
	}
	tr.WinnerID = sel.Winner.Candidate.ID
	tr.Margin = sel.Margin
	tr.Drivers = topDrivers(sel.Winner.Score)
	return tr
}

// topDrivers returns the highest-magnitude non-base factor deltas behind a
// score, largest first.
func topDrivers(b model.ScoreBreakdown) []model.ScoreDriver {
	drivers := []model.ScoreDriver{
		{Factor: "safety", Delta: b.Safety},
		{Factor: "seasonality", Delta: b.Season},
		{Factor: "locality", Delta: b.Locality},
		{Factor: "packaging", Delta: b.Packaging},
		{Factor: "unit_price_rank", Delta: b.PriceRank},
		{Factor: "outlier", Delta: b.Outlier},
	}
	sort.SliceStable(drivers, func(i, j int) bool {
		return math.Abs(drivers[i].Delta) > math.Abs(drivers[j].Delta)
	})

	var top []model.ScoreDriver
	for _, d := range drivers {
		if d.Delta == 0 || len(top) == maxDrivers {
			break
		}
		top = append(top, d)
	}
	return top
}
