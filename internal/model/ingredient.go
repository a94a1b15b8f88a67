// Package model defines the immutable value types shared by the
// recommendation engine, the vendor planner, and the persistence layer.
package model

// Form tags an ingredient's required physical form (e.g. powder, whole).
type Form string

const (
	FormAny    Form = ""
	FormWhole  Form = "whole"
	FormPowder Form = "powder"
	FormGround Form = "ground"
	FormFresh  Form = "fresh"
	FormFrozen Form = "frozen"
	FormCanned Form = "canned"
	FormDried  Form = "dried"
)

// Ingredient is one requested ingredient as produced by the extraction
// collaborator. Immutable once constructed.
type Ingredient struct {
	Key          string  `json:"key"`  // canonical catalog key
	DisplayName  string  `json:"display_name"`
	Amount       float64 `json:"amount"` // base required amount
	Unit         string  `json:"unit"`
	Form         Form    `json:"form,omitempty"`
	Servings     int     `json:"servings,omitempty"`
	ScaledAmount float64 `json:"scaled_amount,omitempty"` // servings-adjusted, 0 = use Amount
}

// RequiredAmount returns the servings-adjusted amount when the extraction
// collaborator supplied one, else the base amount.
func (i Ingredient) RequiredAmount() float64 {
	if i.ScaledAmount > 0 {
		return i.ScaledAmount
	}
	return i.Amount
}

// Valid reports whether the spec carries the fields the engine requires.
// A missing key or unit is a boundary error: the ingredient is rejected
// while the rest of the batch proceeds.
func (i Ingredient) Valid() bool {
	return i.Key != "" && i.Unit != ""
}
