package engine

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/basketwise/basket-cli/internal/config"
	"github.com/basketwise/basket-cli/internal/model"
)

// Pool supplies per-ingredient candidate sets from an already-loaded,
// read-only catalog snapshot scoped to the requested vendors. Lookups
// resolve registered synonyms.
type Pool interface {
	// CandidatesFor returns every candidate tagged with the key within the
	// vendor scope.
	CandidatesFor(key string) []model.Candidate
	// Known reports whether the key exists anywhere in the catalog,
	// regardless of vendor scope.
	Known(key string) bool
}

// RunOutput is the engine's complete per-ingredient output, fed to the
// vendor assignment planner.
type RunOutput struct {
	Items       []model.DecisionItem
	Unfulfilled []model.UnfulfilledIngredient
	Traces      []model.IngredientTrace
	Warnings    []string

	// VendorOptions maps ingredient key to the purchase cost of each
	// vendor's best considered candidate, for the planner's coverage and
	// subtotal computation.
	VendorOptions map[string]map[string]float64

	// CheaperCosts maps ingredient key to the reconciled cost of its
	// cheaper neighbor, where one exists, for the savings aggregate.
	CheaperCosts map[string]float64
}

// Engine runs the decision core. Per-ingredient processing is embarrassingly
// parallel: every ingredient works on an independent read-only snapshot, so
// the only coordination is the fan-out itself.
type Engine struct {
	weights     config.Weights
	concurrency int
}

// New returns an Engine. The weight table must already be validated against
// the governing contract.
func New(weights config.Weights, concurrency int) *Engine {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Engine{weights: weights, concurrency: concurrency}
}

// Run decides every ingredient concurrently. Failures scoped to a single
// ingredient are routed into the unfulfilled list or the warnings, never
// aborting the rest of the batch; the only returned error is context
// cancellation.
func (e *Engine) Run(ctx context.Context, ingredients []model.Ingredient, pool Pool) (*RunOutput, error) {
	outcomes := make([]itemOutcome, len(ingredients))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, ing := range ingredients {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = e.decideOne(ing, pool)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "engine: run")
	}

	out := &RunOutput{
		VendorOptions: make(map[string]map[string]float64),
		CheaperCosts:  make(map[string]float64),
	}
	for _, oc := range outcomes {
		if oc.item != nil {
			out.Items = append(out.Items, *oc.item)
			out.VendorOptions[oc.item.Ingredient.Key] = oc.vendorOptions
			if oc.cheaperCost > 0 {
				out.CheaperCosts[oc.item.Ingredient.Key] = oc.cheaperCost
			}
		}
		if oc.unfulfilled != nil {
			out.Unfulfilled = append(out.Unfulfilled, *oc.unfulfilled)
		}
		out.Traces = append(out.Traces, oc.trace)
		out.Warnings = append(out.Warnings, oc.warnings...)
	}

	zap.L().Info("engine: run complete",
		zap.Int("ingredients", len(ingredients)),
		zap.Int("decided", len(out.Items)),
		zap.Int("unfulfilled", len(out.Unfulfilled)),
	)
	return out, nil
}

// itemOutcome is one ingredient's decision plus its audit byproducts.
type itemOutcome struct {
	item          *model.DecisionItem
	unfulfilled   *model.UnfulfilledIngredient
	trace         model.IngredientTrace
	vendorOptions map[string]float64
	cheaperCost   float64
	warnings      []string
}

func (e *Engine) decideOne(ing model.Ingredient, pool Pool) itemOutcome {
	oc := itemOutcome{trace: model.IngredientTrace{Key: ing.Key}}

	if !ing.Valid() {
		oc.unfulfilled = &model.UnfulfilledIngredient{
			Key:    ing.Key,
			Reason: model.ReasonInvalidSpec,
			Detail: "missing required field",
		}
		oc.warnings = append(oc.warnings, "ingredient "+ing.Key+": rejected, missing required field")
		return oc
	}
	if ing.RequiredAmount() <= 0 {
		oc.unfulfilled = &model.UnfulfilledIngredient{
			Key:    ing.Key,
			Reason: model.ReasonInvalidQuantity,
			Detail: "required amount must be positive",
		}
		oc.warnings = append(oc.warnings, "ingredient "+ing.Key+": invalid quantity")
		return oc
	}

	retrieved := pool.CandidatesFor(ing.Key)
	if len(retrieved) == 0 {
		// Distinguish an unknown ingredient from one no scoped vendor
		// stocks: the latter is a coverage gap, not a catalog gap.
		reason := model.ReasonNoVendorCoverage
		if !pool.Known(ing.Key) {
			reason = model.ReasonNoCandidates
		}
		oc.unfulfilled = &model.UnfulfilledIngredient{Key: ing.Key, Reason: reason}
		return oc
	}

	fr := Filter(ing, retrieved)
	oc.warnings = append(oc.warnings, fr.DataGaps...)
	if len(fr.Considered) == 0 {
		oc.trace = buildIngredientTrace(ing.Key, fr, nil, nil)
		oc.unfulfilled = &model.UnfulfilledIngredient{Key: ing.Key, Reason: model.ReasonAllEliminated}
		return oc
	}

	ranked := ScoreSet(fr.Considered, e.weights)
	sel, err := Select(ranked)
	if err != nil {
		// Unreachable with a non-empty considered set; treat as a defect.
		zap.L().Error("engine: selection failed on non-empty set",
			zap.String("ingredient", ing.Key), zap.Error(err))
		oc.unfulfilled = &model.UnfulfilledIngredient{Key: ing.Key, Reason: model.ReasonAllEliminated}
		return oc
	}

	rec, err := Reconcile(ing, sel.Winner.Candidate)
	if err != nil {
		oc.trace = buildIngredientTrace(ing.Key, fr, ranked, &sel)
		oc.unfulfilled = &model.UnfulfilledIngredient{
			Key:    ing.Key,
			Reason: model.ReasonInvalidQuantity,
			Detail: eris.Cause(err).Error(),
		}
		return oc
	}
	if rec.FallbackToOne {
		oc.warnings = append(oc.warnings, "ingredient "+ing.Key+": "+rec.Notes[len(rec.Notes)-1])
	}

	oc.item = &model.DecisionItem{
		Ingredient:  ing,
		Winner:      sel.Winner.Candidate,
		WinnerScore: sel.Winner.Score,
		CheaperID:   sel.CheaperID,
		PremiumID:   sel.PremiumID,
		Tier:        sel.Tier,
		Quantity:    rec,
		Annotations: annotations(sel.Winner.Candidate),
	}
	oc.trace = buildIngredientTrace(ing.Key, fr, ranked, &sel)
	oc.vendorOptions = vendorOptions(ing, ranked)
	oc.cheaperCost = cheaperCost(ing, ranked, sel.CheaperID)
	return oc
}

// cheaperCost reconciles the cheaper neighbor, when one exists, to price
// the savings aggregate.
func cheaperCost(ing model.Ingredient, ranked []model.ScoredCandidate, cheaperID string) float64 {
	if cheaperID == "" {
		return 0
	}
	for _, sc := range ranked {
		if sc.Candidate.ID != cheaperID {
			continue
		}
		rec, err := Reconcile(ing, sc.Candidate)
		if err != nil {
			return 0
		}
		return rec.PurchaseCost(sc.Candidate)
	}
	return 0
}

// annotations derives the safety and seasonal notes carried on a decision.
func annotations(winner model.Candidate) []string {
	var notes []string
	if winner.Residue == model.ResidueHigh {
		if winner.Organic {
			notes = append(notes, "organic pick for high-residue produce")
		} else {
			notes = append(notes, "high-residue produce, organic alternative recommended")
		}
	}
	if winner.InSeason {
		notes = append(notes, "in season")
	}
	return notes
}

// vendorOptions computes, per vendor, the purchase cost of that vendor's
// best considered candidate. The ranked set is ordered best-first, so the
// first candidate seen per vendor is its best.
func vendorOptions(ing model.Ingredient, ranked []model.ScoredCandidate) map[string]float64 {
	options := make(map[string]float64)
	for _, sc := range ranked {
		vendor := sc.Candidate.VendorID
		if _, seen := options[vendor]; seen {
			continue
		}
		rec, err := Reconcile(ing, sc.Candidate)
		if err != nil {
			continue
		}
		options[vendor] = rec.PurchaseCost(sc.Candidate)
	}
	return options
}
