package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// Weights is the scoring weight table. The values below are the governing
// contract for the scoring engine; the table is surfaced in configuration
// for visibility and auditing, and Validate rejects any deviation outright
// instead of reconciling it silently.
type Weights struct {
	Base               float64 `yaml:"base" mapstructure:"base"`
	SafetyOrganic      float64 `yaml:"safety_organic" mapstructure:"safety_organic"`
	SafetyConventional float64 `yaml:"safety_conventional" mapstructure:"safety_conventional"`
	InSeason           float64 `yaml:"in_season" mapstructure:"in_season"`
	Local              float64 `yaml:"local" mapstructure:"local"`
	Regional           float64 `yaml:"regional" mapstructure:"regional"`
	Import             float64 `yaml:"import" mapstructure:"import"`
	PackagingGlass     float64 `yaml:"packaging_glass" mapstructure:"packaging_glass"`
	PackagingPlastic   float64 `yaml:"packaging_plastic" mapstructure:"packaging_plastic"`
	PriceRankSpread    float64 `yaml:"price_rank_spread" mapstructure:"price_rank_spread"`
	OutlierPenalty     float64 `yaml:"outlier_penalty" mapstructure:"outlier_penalty"`

	// Factor thresholds.
	LocalMaxDistance    float64 `yaml:"local_max_distance" mapstructure:"local_max_distance"`
	RegionalMaxDistance float64 `yaml:"regional_max_distance" mapstructure:"regional_max_distance"`
	ImportMinDistance   float64 `yaml:"import_min_distance" mapstructure:"import_min_distance"`
	OutlierMedianFactor float64 `yaml:"outlier_median_factor" mapstructure:"outlier_median_factor"`
}

// DefaultWeights returns the governing weight contract.
func DefaultWeights() Weights {
	return Weights{
		Base:               50,
		SafetyOrganic:      20,
		SafetyConventional: -20,
		InSeason:           15,
		Local:              25,
		Regional:           15,
		Import:             -15,
		PackagingGlass:     10,
		PackagingPlastic:   -5,
		PriceRankSpread:    10,
		OutlierPenalty:     -10,

		LocalMaxDistance:    50,
		RegionalMaxDistance: 150,
		ImportMinDistance:   3000,
		OutlierMedianFactor: 2,
	}
}

func weightDefaults() map[string]float64 {
	w := DefaultWeights()
	return map[string]float64{
		"base":                  w.Base,
		"safety_organic":        w.SafetyOrganic,
		"safety_conventional":   w.SafetyConventional,
		"in_season":             w.InSeason,
		"local":                 w.Local,
		"regional":              w.Regional,
		"import":                w.Import,
		"packaging_glass":       w.PackagingGlass,
		"packaging_plastic":     w.PackagingPlastic,
		"price_rank_spread":     w.PriceRankSpread,
		"outlier_penalty":       w.OutlierPenalty,
		"local_max_distance":    w.LocalMaxDistance,
		"regional_max_distance": w.RegionalMaxDistance,
		"import_min_distance":   w.ImportMinDistance,
		"outlier_median_factor": w.OutlierMedianFactor,
	}
}

// Validate checks a weight table against the governing contract. Older
// documentation of this system circulated with inconsistent seasonality and
// locality values, so a mismatch is reported as an error rather than
// silently reconciled.
func (w Weights) Validate() error {
	contract := DefaultWeights()
	pairs := []struct {
		name      string
		got, want float64
	}{
		{"base", w.Base, contract.Base},
		{"safety_organic", w.SafetyOrganic, contract.SafetyOrganic},
		{"safety_conventional", w.SafetyConventional, contract.SafetyConventional},
		{"in_season", w.InSeason, contract.InSeason},
		{"local", w.Local, contract.Local},
		{"regional", w.Regional, contract.Regional},
		{"import", w.Import, contract.Import},
		{"packaging_glass", w.PackagingGlass, contract.PackagingGlass},
		{"packaging_plastic", w.PackagingPlastic, contract.PackagingPlastic},
		{"price_rank_spread", w.PriceRankSpread, contract.PriceRankSpread},
		{"outlier_penalty", w.OutlierPenalty, contract.OutlierPenalty},
		{"local_max_distance", w.LocalMaxDistance, contract.LocalMaxDistance},
		{"regional_max_distance", w.RegionalMaxDistance, contract.RegionalMaxDistance},
		{"import_min_distance", w.ImportMinDistance, contract.ImportMinDistance},
		{"outlier_median_factor", w.OutlierMedianFactor, contract.OutlierMedianFactor},
	}

	var errs []string
	for _, p := range pairs {
		if math.Abs(p.got-p.want) > 1e-9 {
			errs = append(errs, fmt.Sprintf("%s = %g, contract requires %g", p.name, p.got, p.want))
		}
	}
	if len(errs) > 0 {
		return eris.Errorf("config: weight table deviates from contract: %s", strings.Join(errs, "; "))
	}
	return nil
}
