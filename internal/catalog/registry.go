package catalog

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/basketwise/basket-cli/internal/model"
)

type vendorFile struct {
	Vendors []model.Vendor `yaml:"vendors"`
}

// LoadVendors reads the vendor registry from a YAML file. Entries without an
// id are skipped with a warning. The result is ordered by priority (lower
// first, unranked last), then by id.
func LoadVendors(path string) ([]model.Vendor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: read vendors")
	}

	var vf vendorFile
	if err := yaml.Unmarshal(data, &vf); err != nil {
		return nil, eris.Wrap(err, "catalog: unmarshal vendors")
	}

	var vendors []model.Vendor
	for _, v := range vf.Vendors {
		if v.ID == "" {
			zap.L().Warn("catalog: skipping vendor entry without id", zap.String("name", v.Name))
			continue
		}
		vendors = append(vendors, v)
	}

	sort.Slice(vendors, func(i, j int) bool {
		pi, pj := vendors[i].Priority, vendors[j].Priority
		if pi == 0 {
			pi = int(^uint(0) >> 1)
		}
		if pj == 0 {
			pj = int(^uint(0) >> 1)
		}
		if pi != pj {
			return pi < pj
		}
		return vendors[i].ID < vendors[j].ID
	})
	return vendors, nil
}

type synonymFile struct {
	Synonyms map[string][]string `yaml:"synonyms"` // canonical key -> aliases
}

// loadSynonyms reads the synonym registry and inverts it into an
// alias-to-canonical map. A missing file is not an error; matching is then
// exact-key only.
func loadSynonyms(path string) (map[string]string, error) {
	synonyms := make(map[string]string)
	if path == "" {
		return synonyms, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return synonyms, nil
		}
		return nil, eris.Wrap(err, "catalog: read synonyms")
	}

	var sf synonymFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, eris.Wrap(err, "catalog: unmarshal synonyms")
	}

	for canonical, aliases := range sf.Synonyms {
		for _, alias := range aliases {
			synonyms[normalizeKey(alias)] = normalizeKey(canonical)
		}
	}
	return synonyms, nil
}
