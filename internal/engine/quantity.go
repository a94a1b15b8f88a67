package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/basketwise/basket-cli/internal/model"
)

// unitFamily is a canonical unit family for quantity reconciliation.
type unitFamily string

const (
	familyMass   unitFamily = "mass"   // canonical: grams
	familyVolume unitFamily = "volume" // canonical: milliliters
	familyCount  unitFamily = "count"  // canonical: each
)

// canonicalUnits maps a normalized unit name to its family and the factor
// into the family's canonical unit.
var canonicalUnits = map[string]struct {
	family unitFamily
	factor float64
}{
	"g":     {familyMass, 1},
	"gram":  {familyMass, 1},
	"kg":    {familyMass, 1000},
	"mg":    {familyMass, 0.001},
	"lb":    {familyMass, 453.592},
	"pound": {familyMass, 453.592},
	"oz":    {familyMass, 28.3495},
	"ounce": {familyMass, 28.3495},

	"ml":     {familyVolume, 1},
	"l":      {familyVolume, 1000},
	"liter":  {familyVolume, 1000},
	"litre":  {familyVolume, 1000},
	"cup":    {familyVolume, 240},
	"tbsp":   {familyVolume, 15},
	"tsp":    {familyVolume, 5},
	"fl oz":  {familyVolume, 29.5735},
	"floz":   {familyVolume, 29.5735},
	"gallon": {familyVolume, 3785.41},
	"quart":  {familyVolume, 946.353},
	"pint":   {familyVolume, 473.176},

	"each":  {familyCount, 1},
	"piece": {familyCount, 1},
	"count": {familyCount, 1},
	"item":  {familyCount, 1},
	"dozen": {familyCount, 12},
}

// packagingEquivalence gives a fixed mass-equivalent in grams for packaging
// units that have no direct conversion. Using one is always recorded as a
// conversion note.
var packagingEquivalence = map[string]float64{
	"bunch": 150,
	"head":  600,
	"clove": 5,
	"stalk": 40,
	"ear":   90,
	"can":   400,
	"jar":   350,
	"bag":   500,
}

// Reconcile converts the required amount and the winner's package size into
// a purchasable quantity. Continuous (bulk, per-unit-priced) candidates get
// an exact fractional amount; everything else gets a whole package count
// that covers the demand. An unparsable package size is recoverable and
// falls back to one package with a warning; a non-positive required amount
// is a hard error for the ingredient.
func Reconcile(ing model.Ingredient, winner model.Candidate) (model.Reconciliation, error) {
	amt := ing.RequiredAmount()
	if amt <= 0 {
		return model.Reconciliation{}, eris.Wrapf(ErrInvalidQuantity,
			"quantity: ingredient %q requires %g %s", ing.Key, amt, ing.Unit)
	}

	rec := model.Reconciliation{}

	reqCanon, reqFam, reqNote, ok := toCanonical(amt, ing.Unit)
	if !ok {
		// Required unit we cannot interpret: buy a single package and flag it.
		rec.Packages = 1
		rec.FallbackToOne = true
		rec.CanonicalUnit = ing.Unit
		rec.Notes = append(rec.Notes, fmt.Sprintf("required unit %q not recognized, defaulting to 1 package", ing.Unit))
		return rec, nil
	}
	rec.RequiredCanon = reqCanon
	rec.CanonicalUnit = canonicalName(reqFam)
	if reqNote != "" {
		rec.Notes = append(rec.Notes, reqNote)
	}

	if winner.Continuous {
		// Priced per unit with no discrete package: exact fractional amount
		// in the candidate's pricing unit, no rounding.
		unitCanon, fam, note, ok := toCanonical(1, winner.PackageUnit)
		if !ok || fam != reqFam {
			rec.Packages = 1
			rec.FallbackToOne = true
			rec.Notes = append(rec.Notes, fmt.Sprintf("bulk pricing unit %q incompatible with %s, defaulting to 1 package", winner.PackageUnit, ing.Unit))
			return rec, nil
		}
		if note != "" {
			rec.Notes = append(rec.Notes, note)
		}
		rec.ExactAmount = reqCanon / unitCanon
		return rec, nil
	}

	pkgCanon, pkgFam, pkgNote, ok := toCanonical(winner.PackageAmount, winner.PackageUnit)
	if !ok || winner.PackageAmount <= 0 {
		rec.Packages = 1
		rec.FallbackToOne = true
		rec.Notes = append(rec.Notes, fmt.Sprintf("package size %q not parsable, defaulting to 1 package", packageLabel(winner)))
		return rec, nil
	}
	if pkgFam != reqFam {
		// Mass-equivalence can bridge a count-style package ("1 bunch")
		// against a mass requirement, but not e.g. volume against mass.
		rec.Packages = 1
		rec.FallbackToOne = true
		rec.Notes = append(rec.Notes, fmt.Sprintf("cannot convert package %s to %s, defaulting to 1 package", packageLabel(winner), canonicalName(reqFam)))
		return rec, nil
	}
	if pkgNote != "" {
		rec.Notes = append(rec.Notes, pkgNote)
	}
	rec.PackageCanon = pkgCanon

	rec.Packages = int(math.Ceil(reqCanon / pkgCanon))
	if rec.Packages < 1 {
		rec.Packages = 1
	}
	return rec, nil
}

// toCanonical converts an amount in the given unit to its family's
// canonical unit. Packaging units (bunch, head, ...) convert through the
// fixed mass-equivalence table and return a conversion note.
func toCanonical(amount float64, unit string) (float64, unitFamily, string, bool) {
	normalized := normalizeUnit(unit)
	if cu, ok := canonicalUnits[normalized]; ok {
		return amount * cu.factor, cu.family, "", true
	}
	if grams, ok := packagingEquivalence[normalized]; ok {
		note := fmt.Sprintf("using packaging equivalence: 1 %s ~ %.0f g", normalized, grams)
		return amount * grams, familyMass, note, true
	}
	return 0, "", "", false
}

func normalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	u = strings.TrimSuffix(u, ".")
	if _, ok := canonicalUnits[u]; ok {
		return u
	}
	if _, ok := packagingEquivalence[u]; ok {
		return u
	}
	// Singularize: bunches → bunch, cups → cup.
	if trimmed := strings.TrimSuffix(u, "es"); trimmed != u {
		if _, ok := canonicalUnits[trimmed]; ok {
			return trimmed
		}
		if _, ok := packagingEquivalence[trimmed]; ok {
			return trimmed
		}
	}
	if trimmed := strings.TrimSuffix(u, "s"); trimmed != u {
		if _, ok := canonicalUnits[trimmed]; ok {
			return trimmed
		}
		if _, ok := packagingEquivalence[trimmed]; ok {
			return trimmed
		}
	}
	return u
}

func canonicalName(f unitFamily) string {
	switch f {
	case familyMass:
		return "g"
	case familyVolume:
		return "ml"
	default:
		return "each"
	}
}

func packageLabel(c model.Candidate) string {
	return fmt.Sprintf("%g %s", c.PackageAmount, c.PackageUnit)
}
