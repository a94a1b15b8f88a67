package model

// ResidueClass is the catalog-provided pesticide residue classification
// for the produce type a candidate belongs to.
type ResidueClass string

const (
	ResidueUnknown ResidueClass = ""
	ResidueHigh    ResidueClass = "high"
	ResidueLow     ResidueClass = "low"
)

// Packaging describes a candidate's packaging material as tagged by the
// catalog. Unknown packaging scores neutral.
type Packaging string

const (
	PackagingUnspecified Packaging = ""
	PackagingGlass       Packaging = "glass"
	PackagingMinimal     Packaging = "minimal"
	PackagingPlastic     Packaging = "plastic"
)

// Candidate is one purchasable product from the catalog snapshot. Owned by
// the catalog collaborator and referenced read-only by the engine.
type Candidate struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Brand         string       `json:"brand,omitempty"`
	VendorID      string       `json:"vendor_id"`
	Price         float64      `json:"price"`
	PackageAmount float64      `json:"package_amount"`
	PackageUnit   string       `json:"package_unit"`
	Continuous    bool         `json:"continuous,omitempty"` // priced per unit, no discrete package
	Organic       bool         `json:"organic,omitempty"`
	Residue       ResidueClass `json:"residue,omitempty"`
	InSeason      bool         `json:"in_season,omitempty"`
	Distance      *float64     `json:"distance,omitempty"` // nil = domestic, no locality label
	Packaging     Packaging    `json:"packaging,omitempty"`
	Form          Form         `json:"form,omitempty"`
	Recalled      bool         `json:"recalled,omitempty"`
	InStock       bool         `json:"in_stock"`
}

// UnitPrice returns price per one package-unit of product, and whether it is
// computable. Candidates with no parsable package amount have no unit price
// and sit out the price-rank factor.
func (c Candidate) UnitPrice() (float64, bool) {
	if c.PackageAmount <= 0 {
		return 0, false
	}
	return c.Price / c.PackageAmount, true
}

// EliminationReason codes why the candidate filter removed a candidate.
type EliminationReason string

const (
	EliminatedRecalled     EliminationReason = "recalled"
	EliminatedOutOfStock   EliminationReason = "out_of_stock"
	EliminatedFormMismatch EliminationReason = "form_mismatch"
)

// EliminatedCandidate pairs a candidate with the reason it was removed.
// Consumed only by the decision trace.
type EliminatedCandidate struct {
	Candidate Candidate         `json:"candidate"`
	Reason    EliminationReason `json:"reason"`
}

// ScoreBreakdown holds the individual factor deltas and the clamped total.
// One named field per factor so audits and tests can assert on each
// contribution independently.
type ScoreBreakdown struct {
	Base      float64 `json:"base"`
	Safety    float64 `json:"safety"`
	Season    float64 `json:"season"`
	Locality  float64 `json:"locality"`
	Packaging float64 `json:"packaging"`
	PriceRank float64 `json:"price_rank"`
	Outlier   float64 `json:"outlier"`
	Total     float64 `json:"total"` // clamped to [0,100]
}

// ScoredCandidate wraps a candidate with its score breakdown. Created once
// per decision run, never mutated.
type ScoredCandidate struct {
	Candidate Candidate      `json:"candidate"`
	Score     ScoreBreakdown `json:"score"`
}
