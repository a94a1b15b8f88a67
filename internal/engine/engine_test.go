package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/basketwise/basket-cli/internal/config"
	"github.com/basketwise/basket-cli/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakePool is an in-memory Pool for engine tests. Keys present with a nil
// slice model an ingredient the catalog knows but no scoped vendor stocks.
type fakePool struct {
	candidates map[string][]model.Candidate
}

func (p *fakePool) CandidatesFor(key string) []model.Candidate { return p.candidates[key] }

func (p *fakePool) Known(key string) bool {
	_, ok := p.candidates[key]
	return ok
}

func testPool() *fakePool {
	return &fakePool{candidates: map[string][]model.Candidate{
		"strawberries": {
			{ID: "straw-organic", VendorID: "greenmart", Price: 3.99, PackageAmount: 1, PackageUnit: "lb",
				Organic: true, Residue: model.ResidueHigh, Distance: ptrFloat64(30), InStock: true},
			{ID: "straw-conv", VendorID: "rivercoop", Price: 2.49, PackageAmount: 1, PackageUnit: "lb",
				Residue: model.ResidueHigh, InStock: true},
		},
		"chicken": {
			{ID: "chicken-2lb", VendorID: "greenmart", Price: 9.98, PackageAmount: 2, PackageUnit: "lb", InStock: true},
		},
		"saffron": nil, // known, nobody stocks it
	}}
}

func TestRunDecidesInInputOrder(t *testing.T) {
	eng := New(config.DefaultWeights(), 4)
	ingredients := []model.Ingredient{
		{Key: "chicken", Unit: "lb", Amount: 6},
		{Key: "strawberries", Unit: "lb", Amount: 2},
	}

	out, err := eng.Run(context.Background(), ingredients, testPool())
	require.NoError(t, err)
	require.Len(t, out.Items, 2)

	assert.Equal(t, "chicken", out.Items[0].Ingredient.Key)
	assert.Equal(t, "chicken-2lb", out.Items[0].Winner.ID)
	assert.Equal(t, 3, out.Items[0].Quantity.Packages)

	assert.Equal(t, "strawberries", out.Items[1].Ingredient.Key)
	assert.Equal(t, "straw-organic", out.Items[1].Winner.ID)
	// base 50 + safety 20 + locality 25 - worst unit price 10.
	assert.Equal(t, 85.0, out.Items[1].WinnerScore.Total)
	assert.Equal(t, "straw-conv", out.Items[1].CheaperID)
}

func TestRunUnfulfilledRouting(t *testing.T) {
	pool := testPool()
	pool.candidates["lettuce"] = []model.Candidate{
		{ID: "lettuce-recalled", VendorID: "greenmart", Recalled: true, InStock: true},
	}

	tests := []struct {
		name string
		ing  model.Ingredient
		want model.UnfulfilledReason
	}{
		{
			name: "unknown ingredient",
			ing:  model.Ingredient{Key: "unobtainium", Unit: "g", Amount: 10},
			want: model.ReasonNoCandidates,
		},
		{
			name: "known but unstocked",
			ing:  model.Ingredient{Key: "saffron", Unit: "g", Amount: 1},
			want: model.ReasonNoVendorCoverage,
		},
		{
			name: "everything eliminated",
			ing:  model.Ingredient{Key: "lettuce", Unit: "head", Amount: 1},
			want: model.ReasonAllEliminated,
		},
		{
			name: "non-positive amount",
			ing:  model.Ingredient{Key: "chicken", Unit: "lb", Amount: 0},
			want: model.ReasonInvalidQuantity,
		},
		{
			name: "missing unit",
			ing:  model.Ingredient{Key: "chicken", Amount: 2},
			want: model.ReasonInvalidSpec,
		},
	}

	eng := New(config.DefaultWeights(), 2)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := eng.Run(context.Background(), []model.Ingredient{tt.ing}, pool)
			require.NoError(t, err)
			assert.Empty(t, out.Items)
			require.Len(t, out.Unfulfilled, 1)
			assert.Equal(t, tt.want, out.Unfulfilled[0].Reason)
		})
	}
}

func TestRunPartialBatch(t *testing.T) {
	// One dead ingredient never aborts the rest of the batch.
	eng := New(config.DefaultWeights(), 4)
	ingredients := []model.Ingredient{
		{Key: "strawberries", Unit: "lb", Amount: 1},
		{Key: "saffron", Unit: "g", Amount: 1},
		{Key: "chicken", Unit: "lb", Amount: 2},
	}

	out, err := eng.Run(context.Background(), ingredients, testPool())
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)
	require.Len(t, out.Unfulfilled, 1)
	assert.Equal(t, "saffron", out.Unfulfilled[0].Key)
	assert.Equal(t, model.ReasonNoVendorCoverage, out.Unfulfilled[0].Reason)
	assert.Len(t, out.Traces, 3)
}

func TestRunConcurrencyEquivalence(t *testing.T) {
	ingredients := []model.Ingredient{
		{Key: "strawberries", Unit: "lb", Amount: 2},
		{Key: "chicken", Unit: "lb", Amount: 6},
		{Key: "saffron", Unit: "g", Amount: 1},
		{Key: "unknown-thing", Unit: "g", Amount: 5},
	}

	serial, err := New(config.DefaultWeights(), 1).Run(context.Background(), ingredients, testPool())
	require.NoError(t, err)
	parallel, err := New(config.DefaultWeights(), 8).Run(context.Background(), ingredients, testPool())
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(config.DefaultWeights(), 2).Run(ctx, []model.Ingredient{
		{Key: "chicken", Unit: "lb", Amount: 2},
	}, testPool())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunVendorOptionsAndCheaperCosts(t *testing.T) {
	out, err := New(config.DefaultWeights(), 1).Run(context.Background(), []model.Ingredient{
		{Key: "strawberries", Unit: "lb", Amount: 2},
	}, testPool())
	require.NoError(t, err)

	opts := out.VendorOptions["strawberries"]
	require.NotNil(t, opts)
	// 2 lb demand against 1 lb packages: 2 packages at each vendor's best.
	assert.InDelta(t, 2*3.99, opts["greenmart"], 1e-9)
	assert.InDelta(t, 2*2.49, opts["rivercoop"], 1e-9)

	// Cheaper neighbor cost backs the savings aggregate.
	assert.InDelta(t, 2*2.49, out.CheaperCosts["strawberries"], 1e-9)
}

func TestRunTrace(t *testing.T) {
	pool := testPool()
	pool.candidates["strawberries"] = append(pool.candidates["strawberries"],
		model.Candidate{ID: "straw-recalled", VendorID: "greenmart", Price: 1.99,
			PackageAmount: 1, PackageUnit: "lb", Recalled: true, InStock: true})

	out, err := New(config.DefaultWeights(), 1).Run(context.Background(), []model.Ingredient{
		{Key: "strawberries", Unit: "lb", Amount: 1},
	}, pool)
	require.NoError(t, err)
	require.Len(t, out.Traces, 1)

	tr := out.Traces[0]
	assert.Equal(t, "strawberries", tr.Key)
	assert.Equal(t, "straw-organic", tr.WinnerID)
	assert.Equal(t, map[string]int{"greenmart": 2, "rivercoop": 1}, tr.RetrievedByVendor)
	assert.Equal(t, map[string]int{"greenmart": 1, "rivercoop": 1}, tr.ConsideredByVendor)
	require.Len(t, tr.Eliminated, 1)
	assert.Equal(t, model.EliminatedRecalled, tr.Eliminated[0].Reason)

	require.NotEmpty(t, tr.Drivers)
	// Locality (+25) outweighs safety (+20) for the organic local winner.
	assert.Equal(t, "locality", tr.Drivers[0].Factor)
	assert.Equal(t, 25.0, tr.Drivers[0].Delta)
}
