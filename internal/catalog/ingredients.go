package catalog

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/basketwise/basket-cli/internal/model"
)

type ingredientFile struct {
	Ingredients []ingredientEntry `yaml:"ingredients"`
}

type ingredientEntry struct {
	Key          string  `yaml:"key"`
	DisplayName  string  `yaml:"display_name"`
	Amount       float64 `yaml:"amount"`
	Unit         string  `yaml:"unit"`
	Form         string  `yaml:"form"`
	Servings     int     `yaml:"servings"`
	ScaledAmount float64 `yaml:"scaled_amount"`
}

// LoadIngredients reads an ingredient list, as produced by the extraction
// collaborator, from a YAML file. Field validation is left to the engine,
// which rejects malformed entries individually.
func LoadIngredients(path string) ([]model.Ingredient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: read ingredients")
	}
	return ParseIngredients(data)
}

// ParseIngredients decodes an ingredient list from YAML bytes.
func ParseIngredients(data []byte) ([]model.Ingredient, error) {
	var f ingredientFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "catalog: unmarshal ingredients")
	}

	ingredients := make([]model.Ingredient, 0, len(f.Ingredients))
	for _, e := range f.Ingredients {
		name := e.DisplayName
		if name == "" {
			name = e.Key
		}
		ingredients = append(ingredients, model.Ingredient{
			Key:          normalizeKey(e.Key),
			DisplayName:  name,
			Amount:       e.Amount,
			Unit:         e.Unit,
			Form:         model.Form(e.Form),
			Servings:     e.Servings,
			ScaledAmount: e.ScaledAmount,
		})
	}
	return ingredients, nil
}
