package engine

import (
	"github.com/basketwise/basket-cli/internal/model"
)

// Selection is the tier selector's output: the winner plus its optional
// cheaper and premium/ethical neighbors, and the winner's tier label.
type Selection struct {
	Winner    model.ScoredCandidate
	CheaperID string
	PremiumID string
	Tier      model.Tier
	Margin    float64 // winner total minus runner-up total, 0 if no runner-up
}

// Select picks the winner and its neighbors from a ranked, non-empty scored
// set. The winner is the top-ranked candidate; tier labeling only annotates
// it and never re-selects.
func Select(ranked []model.ScoredCandidate) (Selection, error) {
	if len(ranked) == 0 {
		return Selection{}, ErrAllEliminated
	}

	sel := Selection{Winner: ranked[0]}
	if len(ranked) > 1 {
		sel.Margin = ranked[0].Score.Total - ranked[1].Score.Total
	}

	winner := ranked[0].Candidate

	// Cheaper neighbor: the lowest-priced candidate strictly below the
	// winner's price.
	var cheaper *model.Candidate
	for i := range ranked {
		c := ranked[i].Candidate
		if c.Price >= winner.Price {
			continue
		}
		if cheaper == nil || c.Price < cheaper.Price ||
			(c.Price == cheaper.Price && c.ID < cheaper.ID) {
			cheaper = &ranked[i].Candidate
		}
	}
	if cheaper != nil {
		sel.CheaperID = cheaper.ID
	}

	// Premium/ethical neighbor: the highest-scoring organic candidate
	// distinct from the winner. The set is already ranked, so the first
	// match is the best one.
	for i := range ranked {
		c := ranked[i].Candidate
		if c.Organic && c.ID != winner.ID {
			sel.PremiumID = c.ID
			break
		}
	}

	sel.Tier = tierLabel(ranked, winner)
	return sel, nil
}

// tierLabel derives the winner's price/ethics tier from its position in the
// considered set's price distribution: bottom third cheaper, top third
// conscious, middle balanced.
func tierLabel(ranked []model.ScoredCandidate, winner model.Candidate) model.Tier {
	n := len(ranked)
	if n <= 1 {
		return model.TierBalanced
	}
	var below int
	for _, sc := range ranked {
		if sc.Candidate.Price < winner.Price {
			below++
		}
	}
	frac := float64(below) / float64(n)
	switch {
	case frac < 1.0/3:
		return model.TierCheaper
	case frac >= 2.0/3:
		return model.TierConscious
	default:
		return model.TierBalanced
	}
}
