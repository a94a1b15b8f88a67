package model

// ScoreDriver names one factor and its delta, used to surface the
// top-magnitude contributors behind a winner.
type ScoreDriver struct {
	Factor string  `json:"factor"`
	Delta  float64 `json:"delta"`
}

// IngredientTrace is the audit record for one ingredient's decision.
type IngredientTrace struct {
	Key                string                `json:"key"`
	RetrievedByVendor  map[string]int        `json:"retrieved_by_vendor"`
	ConsideredByVendor map[string]int        `json:"considered_by_vendor"`
	Scored             []ScoredCandidate     `json:"scored,omitempty"`
	Eliminated         []EliminatedCandidate `json:"eliminated,omitempty"`
	WinnerID           string                `json:"winner_id,omitempty"`
	Margin             float64               `json:"margin"` // winner total minus runner-up total
	Drivers            []ScoreDriver         `json:"drivers,omitempty"`
	DataGaps           []string              `json:"data_gaps,omitempty"` // e.g. form-constraint relaxation
}

// DecisionTrace is a read-only projection over a finished run. Deleting it
// changes no DecisionItem.
type DecisionTrace struct {
	Ingredients []IngredientTrace `json:"ingredients"`
}

// ForKey returns the trace entry for an ingredient key, or nil.
func (t *DecisionTrace) ForKey(key string) *IngredientTrace {
	if t == nil {
		return nil
	}
	for i := range t.Ingredients {
		if t.Ingredients[i].Key == key {
			return &t.Ingredients[i]
		}
	}
	return nil
}
