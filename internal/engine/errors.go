// Package engine implements the per-ingredient decision core: candidate
// filtering, deterministic scoring, tier selection, quantity reconciliation,
// and the decision trace.
package engine

import "github.com/rotisserie/eris"

// Sentinel errors for the per-ingredient failure taxonomy. All of these are
// scoped to a single ingredient and never abort the batch.
var (
	// ErrInvalidQuantity marks a non-positive required amount.
	ErrInvalidQuantity = eris.New("invalid quantity")

	// ErrAllEliminated marks an ingredient whose every candidate was removed
	// by the filter, even after relaxing the form constraint.
	ErrAllEliminated = eris.New("all candidates eliminated")
)
