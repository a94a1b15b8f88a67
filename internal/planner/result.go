package planner

import (
	"github.com/basketwise/basket-cli/internal/engine"
	"github.com/basketwise/basket-cli/internal/model"
)

// ComputeTotals aggregates the plan's money figures: the recommended-tier
// total, the cheapest achievable total if every cheaper neighbor were taken,
// the savings between them, and per-vendor subtotals.
func ComputeTotals(out *engine.RunOutput, plan model.VendorPlan) model.Totals {
	totals := model.Totals{PerVendor: make(map[string]float64)}

	for _, item := range out.Items {
		cost := item.Quantity.PurchaseCost(item.Winner)
		totals.Recommended += cost
		if cheaper, ok := out.CheaperCosts[item.Ingredient.Key]; ok && cheaper < cost {
			totals.Cheapest += cheaper
		} else {
			totals.Cheapest += cost
		}
	}
	totals.Savings = totals.Recommended - totals.Cheapest

	for _, a := range plan.Assignments {
		totals.PerVendor[a.VendorID] = a.Subtotal
	}
	return totals
}

// BuildResult composes a finished run: decided items, the vendor plan, and
// aggregate totals, with the trace attached only when asked for.
func BuildResult(runID string, out *engine.RunOutput, vendors []model.Vendor, primaryVendor string, includeTrace bool) *model.PlanResult {
	plan := Plan(out, vendors, primaryVendor)
	result := &model.PlanResult{
		RunID:    runID,
		Items:    out.Items,
		Plan:     plan,
		Totals:   ComputeTotals(out, plan),
		Warnings: out.Warnings,
	}
	if includeTrace {
		result.Trace = &model.DecisionTrace{Ingredients: out.Traces}
	}
	return result
}
