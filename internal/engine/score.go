package engine

import (
	"math"
	"sort"

	"github.com/basketwise/basket-cli/internal/config"
	"github.com/basketwise/basket-cli/internal/model"
)

// ScoreSet scores every considered candidate and returns them ranked
// best-first. The score is a pure function of candidate attributes and
// properties of the considered set (price median, unit-price rank), so the
// result is identical for any permutation of the input.
func ScoreSet(considered []model.Candidate, w config.Weights) []model.ScoredCandidate {
	if len(considered) == 0 {
		return nil
	}

	median := medianPrice(considered)
	ranks := unitPriceRanks(considered, w.PriceRankSpread)

	scored := make([]model.ScoredCandidate, 0, len(considered))
	for i, c := range considered {
		b := model.ScoreBreakdown{
			Base:      w.Base,
			Safety:    safetyDelta(c, w),
			Season:    seasonDelta(c, w),
			Locality:  localityDelta(c, w),
			Packaging: packagingDelta(c, w),
			PriceRank: ranks[i],
			Outlier:   outlierDelta(c, median, w),
		}
		b.Total = clamp(b.Base+b.Safety+b.Season+b.Locality+b.Packaging+b.PriceRank+b.Outlier, 0, 100)
		scored = append(scored, model.ScoredCandidate{Candidate: c, Score: b})
	}

	rank(scored)
	return scored
}

// rank orders scored candidates best-first using the total tie-break order:
// higher total, then lower price, then organic, then lexical id ascending.
func rank(scored []model.ScoredCandidate) {
	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score.Total != b.Score.Total {
			return a.Score.Total > b.Score.Total
		}
		if a.Candidate.Price != b.Candidate.Price {
			return a.Candidate.Price < b.Candidate.Price
		}
		if a.Candidate.Organic != b.Candidate.Organic {
			return a.Candidate.Organic
		}
		return a.Candidate.ID < b.Candidate.ID
	})
}

// safetyDelta rewards organic candidates of high-residue produce and
// penalizes conventional ones. Low or unclassified residue is neutral.
func safetyDelta(c model.Candidate, w config.Weights) float64 {
	if c.Residue != model.ResidueHigh {
		return 0
	}
	if c.Organic {
		return w.SafetyOrganic
	}
	return w.SafetyConventional
}

func seasonDelta(c model.Candidate, w config.Weights) float64 {
	if c.InSeason {
		return w.InSeason
	}
	return 0
}

// localityDelta maps the candidate's distance label onto the locality
// bands. No label means domestic and scores neutral.
func localityDelta(c model.Candidate, w config.Weights) float64 {
	if c.Distance == nil {
		return 0
	}
	d := *c.Distance
	switch {
	case d < w.LocalMaxDistance:
		return w.Local
	case d <= w.RegionalMaxDistance:
		return w.Regional
	case d > w.ImportMinDistance:
		return w.Import
	default:
		return 0
	}
}

func packagingDelta(c model.Candidate, w config.Weights) float64 {
	switch c.Packaging {
	case model.PackagingGlass, model.PackagingMinimal:
		return w.PackagingGlass
	case model.PackagingPlastic:
		return w.PackagingPlastic
	default:
		return 0
	}
}

func outlierDelta(c model.Candidate, median float64, w config.Weights) float64 {
	if median > 0 && c.Price > w.OutlierMedianFactor*median {
		return w.OutlierPenalty
	}
	return 0
}

// unitPriceRanks returns the price-rank delta per considered candidate:
// best unit price gets +spread, worst gets -spread, ranks in between are
// interpolated linearly. Candidates whose unit price is not computable (no
// parsable package amount) sit out with a zero delta, as does everyone when
// fewer than two unit prices are known. Ties share a mid-rank so the result
// does not depend on input ordering.
func unitPriceRanks(considered []model.Candidate, spread float64) []float64 {
	deltas := make([]float64, len(considered))

	prices := make([]float64, len(considered))
	known := 0
	for i, c := range considered {
		up, ok := c.UnitPrice()
		if !ok {
			prices[i] = math.NaN()
			continue
		}
		prices[i] = up
		known++
	}
	if known < 2 {
		return deltas
	}

	for i, up := range prices {
		if math.IsNaN(up) {
			continue
		}
		var below, equal float64
		for j, other := range prices {
			if j == i || math.IsNaN(other) {
				continue
			}
			switch {
			case other < up:
				below++
			case other == up:
				equal++
			}
		}
		midrank := below + equal/2
		// rank 0 maps to +spread, rank known-1 to -spread, linear in between.
		frac := midrank / float64(known-1)
		deltas[i] = spread * (1 - 2*frac)
	}
	return deltas
}

func medianPrice(considered []model.Candidate) float64 {
	prices := make([]float64, len(considered))
	for i, c := range considered {
		prices[i] = c.Price
	}
	sort.Float64s(prices)
	n := len(prices)
	if n%2 == 1 {
		return prices[n/2]
	}
	return (prices[n/2-1] + prices[n/2]) / 2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
