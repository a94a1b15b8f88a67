package engine

import (
	"github.com/basketwise/basket-cli/internal/model"
)

// FilterResult is the candidate filter's output for one ingredient: the
// surviving set, the eliminations, and the per-vendor counts for the trace.
type FilterResult struct {
	Considered         []model.Candidate
	Eliminated         []model.EliminatedCandidate
	RetrievedByVendor  map[string]int
	ConsideredByVendor map[string]int
	DataGaps           []string
}

// Filter removes structurally ineligible candidates from the retrieved set:
// active recalls, out-of-stock items, and form mismatches. If the form
// constraint alone would eliminate everything, it is relaxed once and the
// relaxation is recorded as a data-gap note.
func Filter(ing model.Ingredient, retrieved []model.Candidate) FilterResult {
	res := FilterResult{
		RetrievedByVendor:  make(map[string]int),
		ConsideredByVendor: make(map[string]int),
	}
	for _, c := range retrieved {
		res.RetrievedByVendor[c.VendorID]++
	}

	res.Considered, res.Eliminated = applyFilter(ing.Form, retrieved)

	// Relax the form constraint once before declaring the ingredient
	// unfulfillable, keeping the stricter eliminations in place.
	if len(res.Considered) == 0 && ing.Form != model.FormAny && len(retrieved) > 0 {
		relaxed, eliminated := applyFilter(model.FormAny, retrieved)
		if len(relaxed) > 0 {
			res.Considered = relaxed
			res.Eliminated = eliminated
			res.DataGaps = append(res.DataGaps,
				"form constraint '"+string(ing.Form)+"' relaxed: no candidate matched the required form")
		}
	}

	for _, c := range res.Considered {
		res.ConsideredByVendor[c.VendorID]++
	}
	return res
}

func applyFilter(form model.Form, retrieved []model.Candidate) ([]model.Candidate, []model.EliminatedCandidate) {
	var considered []model.Candidate
	var eliminated []model.EliminatedCandidate
	for _, c := range retrieved {
		switch {
		case c.Recalled:
			eliminated = append(eliminated, model.EliminatedCandidate{Candidate: c, Reason: model.EliminatedRecalled})
		case !c.InStock:
			eliminated = append(eliminated, model.EliminatedCandidate{Candidate: c, Reason: model.EliminatedOutOfStock})
		case form != model.FormAny && c.Form != model.FormAny && c.Form != form:
			eliminated = append(eliminated, model.EliminatedCandidate{Candidate: c, Reason: model.EliminatedFormMismatch})
		default:
			considered = append(considered, c)
		}
	}
	return considered, eliminated
}
