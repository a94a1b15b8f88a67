// Package catalog materializes the catalog collaborator's data — product
// candidates, the vendor registry, and ingredient synonyms — into immutable
// in-memory snapshots. All file I/O lives here; the decision engine only
// ever sees loaded values.
package catalog

import (
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/basketwise/basket-cli/internal/model"
)

// Snapshot is a loaded, read-only view of the product catalog. Lookups
// resolve registered synonyms to canonical keys.
type Snapshot struct {
	byKey    map[string][]model.Candidate
	synonyms map[string]string // alias -> canonical key
	scope    map[string]bool   // nil = all vendors
}

// productFile is the on-disk shape of a catalog snapshot.
type productFile struct {
	Products []productEntry `yaml:"products"`
}

type productEntry struct {
	Key           string   `yaml:"key"`
	ID            string   `yaml:"id"`
	Title         string   `yaml:"title"`
	Brand         string   `yaml:"brand"`
	VendorID      string   `yaml:"vendor_id"`
	Price         float64  `yaml:"price"`
	PackageAmount float64  `yaml:"package_amount"`
	PackageUnit   string   `yaml:"package_unit"`
	Continuous    bool     `yaml:"continuous"`
	Organic       bool     `yaml:"organic"`
	Residue       string   `yaml:"residue"`
	InSeason      bool     `yaml:"in_season"`
	Distance      *float64 `yaml:"distance"`
	Packaging     string   `yaml:"packaging"`
	Form          string   `yaml:"form"`
	Recalled      bool     `yaml:"recalled"`
	InStock       *bool    `yaml:"in_stock"` // nil = in stock
}

// LoadSnapshot reads a product catalog and a synonym registry from YAML
// files. Malformed product entries are skipped with a warning; the rest of
// the snapshot loads normally.
func LoadSnapshot(productsPath, synonymsPath string) (*Snapshot, error) {
	data, err := os.ReadFile(productsPath)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: read products")
	}

	var pf productFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, eris.Wrap(err, "catalog: unmarshal products")
	}

	synonyms, err := loadSynonyms(synonymsPath)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		byKey:    make(map[string][]model.Candidate),
		synonyms: synonyms,
	}
	for _, p := range pf.Products {
		if p.Key == "" || p.ID == "" || p.VendorID == "" {
			zap.L().Warn("catalog: skipping malformed product entry",
				zap.String("id", p.ID),
				zap.String("key", p.Key),
			)
			continue
		}
		inStock := p.InStock == nil || *p.InStock
		key := normalizeKey(p.Key)
		snap.byKey[key] = append(snap.byKey[key], model.Candidate{
			ID:            p.ID,
			Title:         p.Title,
			Brand:         p.Brand,
			VendorID:      p.VendorID,
			Price:         p.Price,
			PackageAmount: p.PackageAmount,
			PackageUnit:   p.PackageUnit,
			Continuous:    p.Continuous,
			Organic:       p.Organic,
			Residue:       model.ResidueClass(p.Residue),
			InSeason:      p.InSeason,
			Distance:      p.Distance,
			Packaging:     model.Packaging(p.Packaging),
			Form:          model.Form(p.Form),
			Recalled:      p.Recalled,
			InStock:       inStock,
		})
	}

	// Deterministic candidate order per key regardless of file order.
	for key := range snap.byKey {
		cands := snap.byKey[key]
		sort.Slice(cands, func(i, j int) bool { return cands[i].ID < cands[j].ID })
	}

	zap.L().Info("catalog: snapshot loaded",
		zap.Int("keys", len(snap.byKey)),
		zap.Int("synonyms", len(snap.synonyms)),
	)
	return snap, nil
}

// NewSnapshot builds a snapshot from already-materialized values, for
// callers (and tests) that bypass the file formats.
func NewSnapshot(byKey map[string][]model.Candidate, synonyms map[string]string) *Snapshot {
	if synonyms == nil {
		synonyms = map[string]string{}
	}
	return &Snapshot{byKey: byKey, synonyms: synonyms}
}

// Scoped returns a view of the snapshot restricted to the given vendor ids.
// An empty scope means all vendors.
func (s *Snapshot) Scoped(vendorIDs []string) *Snapshot {
	if len(vendorIDs) == 0 {
		return s
	}
	scope := make(map[string]bool, len(vendorIDs))
	for _, id := range vendorIDs {
		scope[id] = true
	}
	return &Snapshot{byKey: s.byKey, synonyms: s.synonyms, scope: scope}
}

// CandidatesFor returns every candidate tagged with the key, or a
// registered synonym of it, within the vendor scope.
func (s *Snapshot) CandidatesFor(key string) []model.Candidate {
	cands := s.byKey[s.resolve(key)]
	if s.scope == nil {
		return cands
	}
	var scoped []model.Candidate
	for _, c := range cands {
		if s.scope[c.VendorID] {
			scoped = append(scoped, c)
		}
	}
	return scoped
}

// Known reports whether the key (or a synonym) exists anywhere in the
// catalog, regardless of vendor scope.
func (s *Snapshot) Known(key string) bool {
	_, ok := s.byKey[s.resolve(key)]
	return ok
}

func (s *Snapshot) resolve(key string) string {
	k := normalizeKey(key)
	if canonical, ok := s.synonyms[k]; ok {
		return canonical
	}
	return k
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
