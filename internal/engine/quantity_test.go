package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basketwise/basket-cli/internal/model"
)

func TestReconcilePackages(t *testing.T) {
	tests := []struct {
		name         string
		ing          model.Ingredient
		winner       model.Candidate
		wantPackages int
	}{
		{
			name:         "exact multiple",
			ing:          model.Ingredient{Key: "chicken", Amount: 6, Unit: "lb"},
			winner:       model.Candidate{PackageAmount: 2, PackageUnit: "lb"},
			wantPackages: 3,
		},
		{
			name:         "rounds up partial package",
			ing:          model.Ingredient{Key: "chicken", Amount: 5, Unit: "lb"},
			winner:       model.Candidate{PackageAmount: 2, PackageUnit: "lb"},
			wantPackages: 3,
		},
		{
			name:         "cross-unit mass conversion",
			ing:          model.Ingredient{Key: "flour", Amount: 500, Unit: "g"},
			winner:       model.Candidate{PackageAmount: 1, PackageUnit: "lb"},
			wantPackages: 2,
		},
		{
			name:         "oversized package needs one",
			ing:          model.Ingredient{Key: "rice", Amount: 1, Unit: "kg"},
			winner:       model.Candidate{PackageAmount: 5, PackageUnit: "kg"},
			wantPackages: 1,
		},
		{
			name:         "dozen covers count demand",
			ing:          model.Ingredient{Key: "eggs", Amount: 6, Unit: "each"},
			winner:       model.Candidate{PackageAmount: 1, PackageUnit: "dozen"},
			wantPackages: 1,
		},
		{
			name:         "volume family",
			ing:          model.Ingredient{Key: "stock", Amount: 6, Unit: "cup"},
			winner:       model.Candidate{PackageAmount: 1, PackageUnit: "l"},
			wantPackages: 2,
		},
		{
			name:         "servings-scaled amount wins",
			ing:          model.Ingredient{Key: "pasta", Amount: 1, Unit: "lb", ScaledAmount: 3},
			winner:       model.Candidate{PackageAmount: 1, PackageUnit: "lb"},
			wantPackages: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Reconcile(tt.ing, tt.winner)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPackages, rec.Packages)
			assert.False(t, rec.FallbackToOne)
		})
	}
}

func TestReconcileContinuous(t *testing.T) {
	// Bulk per-unit pricing buys the exact fractional amount, no rounding.
	rec, err := Reconcile(
		model.Ingredient{Key: "beef", Amount: 1.5, Unit: "lb"},
		model.Candidate{Continuous: true, PackageUnit: "lb", Price: 8.99},
	)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, rec.ExactAmount, 1e-9)
	assert.Zero(t, rec.Packages)
}

func TestReconcileContinuousCrossUnit(t *testing.T) {
	// 900 g of bulk product priced per lb.
	rec, err := Reconcile(
		model.Ingredient{Key: "beef", Amount: 900, Unit: "g"},
		model.Candidate{Continuous: true, PackageUnit: "lb", Price: 8.99},
	)
	require.NoError(t, err)
	assert.InDelta(t, 900.0/453.592, rec.ExactAmount, 1e-9)
}

func TestReconcilePackagingEquivalence(t *testing.T) {
	// A "bunch" package against a mass requirement bridges through the
	// fixed equivalence table and records the approximation.
	rec, err := Reconcile(
		model.Ingredient{Key: "cilantro", Amount: 300, Unit: "g"},
		model.Candidate{PackageAmount: 1, PackageUnit: "bunch"},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Packages)
	require.NotEmpty(t, rec.Notes)
	assert.Contains(t, rec.Notes[0], "packaging equivalence")
}

func TestReconcileFallbacks(t *testing.T) {
	tests := []struct {
		name   string
		ing    model.Ingredient
		winner model.Candidate
	}{
		{
			name:   "unknown package unit",
			ing:    model.Ingredient{Key: "cereal", Amount: 500, Unit: "g"},
			winner: model.Candidate{PackageAmount: 1, PackageUnit: "box"},
		},
		{
			name:   "unknown required unit",
			ing:    model.Ingredient{Key: "herbs", Amount: 2, Unit: "sprig"},
			winner: model.Candidate{PackageAmount: 30, PackageUnit: "g"},
		},
		{
			name:   "family mismatch",
			ing:    model.Ingredient{Key: "milk", Amount: 2, Unit: "cup"},
			winner: model.Candidate{PackageAmount: 1, PackageUnit: "lb"},
		},
		{
			name:   "zero package amount",
			ing:    model.Ingredient{Key: "salt", Amount: 100, Unit: "g"},
			winner: model.Candidate{PackageAmount: 0, PackageUnit: "g"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Reconcile(tt.ing, tt.winner)
			require.NoError(t, err)
			assert.True(t, rec.FallbackToOne)
			assert.Equal(t, 1, rec.Packages)
			assert.NotEmpty(t, rec.Notes)
		})
	}
}

func TestReconcileInvalidQuantity(t *testing.T) {
	for _, amount := range []float64{0, -2} {
		_, err := Reconcile(
			model.Ingredient{Key: "sugar", Amount: amount, Unit: "g"},
			model.Candidate{PackageAmount: 500, PackageUnit: "g"},
		)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
}

func TestNormalizeUnit(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"LB", "lb"},
		{" oz. ", "oz"},
		{"pounds", "pound"},
		{"bunches", "bunch"},
		{"cups", "cup"},
		{"cloves", "clove"},
		{"each", "each"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeUnit(tt.in))
		})
	}
}
