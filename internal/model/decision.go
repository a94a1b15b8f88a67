package model

// Tier is the price/ethics label applied to a winning candidate.
type Tier string

const (
	TierCheaper   Tier = "cheaper"
	TierBalanced  Tier = "balanced"
	TierConscious Tier = "conscious"
)

// Reconciliation describes how a required amount maps onto the winning
// candidate's packaging.
type Reconciliation struct {
	Packages      int      `json:"packages"`               // 0 for continuous items
	ExactAmount   float64  `json:"exact_amount,omitempty"` // fractional amount for continuous items
	CanonicalUnit string   `json:"canonical_unit"`
	RequiredCanon float64  `json:"required_canonical"`
	PackageCanon  float64  `json:"package_canonical,omitempty"`
	Notes         []string `json:"notes,omitempty"`
	FallbackToOne bool     `json:"fallback_to_one,omitempty"` // unparsable package size
}

// PurchaseCost returns the cost of the reconciled purchase.
func (r Reconciliation) PurchaseCost(c Candidate) float64 {
	if c.Continuous {
		return r.ExactAmount * c.Price
	}
	return float64(r.Packages) * c.Price
}

// DecisionItem is the finalized outcome for one ingredient. Created once per
// run and never mutated; the optional Narrative field is attached on a copy
// in the run output, after the decision is final.
type DecisionItem struct {
	Ingredient  Ingredient     `json:"ingredient"`
	Winner      Candidate      `json:"winner"`
	WinnerScore ScoreBreakdown `json:"winner_score"`
	CheaperID   string         `json:"cheaper_id,omitempty"`
	PremiumID   string         `json:"premium_id,omitempty"`
	Tier        Tier           `json:"tier"`
	Quantity    Reconciliation `json:"quantity"`
	Annotations []string       `json:"annotations,omitempty"` // safety/seasonal notes
	Narrative   string         `json:"narrative,omitempty"`   // optional, non-authoritative
}

// UnfulfilledReason codes why an ingredient could not be fulfilled.
type UnfulfilledReason string

const (
	ReasonNoCandidates     UnfulfilledReason = "no_candidates"
	ReasonAllEliminated    UnfulfilledReason = "all_candidates_eliminated"
	ReasonNoVendorCoverage UnfulfilledReason = "no_vendor_coverage"
	ReasonInvalidQuantity  UnfulfilledReason = "invalid_quantity"
	ReasonInvalidSpec      UnfulfilledReason = "invalid_spec"
)

// UnfulfilledIngredient is an ingredient the plan could not place.
type UnfulfilledIngredient struct {
	Key    string            `json:"key"`
	Reason UnfulfilledReason `json:"reason"`
	Detail string            `json:"detail,omitempty"`
}
