package model

// VendorAssignment is one vendor's share of the plan.
type VendorAssignment struct {
	VendorID       string   `json:"vendor_id"`
	IngredientKeys []string `json:"ingredient_keys"`
	Subtotal       float64  `json:"subtotal"`
	Rationale      string   `json:"rationale"`
}

// VendorPlan is the single source of truth for who buys what from where.
// The union of assigned and unfulfillable keys always equals the full input
// ingredient set.
type VendorPlan struct {
	Assignments   []VendorAssignment      `json:"assignments"`
	Unfulfillable []UnfulfilledIngredient `json:"unfulfillable,omitempty"`
}

// AssignedKeys returns every ingredient key placed with a vendor, in
// assignment order.
func (p VendorPlan) AssignedKeys() []string {
	var keys []string
	for _, a := range p.Assignments {
		keys = append(keys, a.IngredientKeys...)
	}
	return keys
}

// Totals aggregates plan-level money figures for the caller to render.
type Totals struct {
	Recommended float64            `json:"recommended"` // sum at the recommended tier
	Cheapest    float64            `json:"cheapest"`    // sum if every cheaper neighbor is taken
	Savings     float64            `json:"savings"`     // recommended - cheapest
	PerVendor   map[string]float64 `json:"per_vendor"`
}

// PlanResult is the complete output of one decision run.
type PlanResult struct {
	RunID    string         `json:"run_id"`
	Items    []DecisionItem `json:"items"`
	Plan     VendorPlan     `json:"plan"`
	Totals   Totals         `json:"totals"`
	Warnings []string       `json:"warnings,omitempty"`
	Trace    *DecisionTrace `json:"trace,omitempty"`
}
