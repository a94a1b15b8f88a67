// Package planner partitions decided ingredients across the fewest vendors
// that can fulfill them, using a greedy set-cover heuristic.
package planner

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/basketwise/basket-cli/internal/engine"
	"github.com/basketwise/basket-cli/internal/model"
)

// Plan assigns every decided ingredient to a vendor. Each round picks the
// vendor covering the most remaining ingredients; ties go to the configured
// primary vendor first, then to registry priority, then to vendor id
// lexically, so the output is identical for any input ordering. Ingredients
// no vendor covers land in the unfulfillable list.
func Plan(out *engine.RunOutput, vendors []model.Vendor, primaryVendor string) model.VendorPlan {
	plan := model.VendorPlan{Unfulfillable: append([]model.UnfulfilledIngredient(nil), out.Unfulfilled...)}

	remaining := make(map[string]bool, len(out.Items))
	for _, item := range out.Items {
		remaining[item.Ingredient.Key] = true
	}

	priority := make(map[string]int, len(vendors))
	for _, v := range vendors {
		priority[v.ID] = v.Priority
	}

	for len(remaining) > 0 {
		vendorID, covered := bestVendor(remaining, out.VendorOptions, priority, primaryVendor)
		if vendorID == "" {
			// No vendor covers anything left.
			for _, key := range sortedKeys(remaining) {
				plan.Unfulfillable = append(plan.Unfulfillable, model.UnfulfilledIngredient{
					Key:    key,
					Reason: model.ReasonNoVendorCoverage,
				})
			}
			break
		}

		assignment := model.VendorAssignment{
			VendorID:       vendorID,
			IngredientKeys: covered,
			Rationale:      rationale(vendorID, primaryVendor, len(covered), len(remaining)),
		}
		for _, key := range covered {
			assignment.Subtotal += out.VendorOptions[key][vendorID]
			delete(remaining, key)
		}
		plan.Assignments = append(plan.Assignments, assignment)
	}

	zap.L().Debug("planner: plan built",
		zap.Int("vendors", len(plan.Assignments)),
		zap.Int("unfulfillable", len(plan.Unfulfillable)),
	)
	return plan
}

// bestVendor returns the vendor covering the most remaining ingredients and
// the sorted keys it covers, or "" when nothing is coverable.
func bestVendor(remaining map[string]bool, options map[string]map[string]float64, priority map[string]int, primaryVendor string) (string, []string) {
	coverage := make(map[string][]string)
	for key := range remaining {
		for vendorID := range options[key] {
			coverage[vendorID] = append(coverage[vendorID], key)
		}
	}
	if len(coverage) == 0 {
		return "", nil
	}

	vendorIDs := make([]string, 0, len(coverage))
	for id := range coverage {
		vendorIDs = append(vendorIDs, id)
	}
	sort.Slice(vendorIDs, func(i, j int) bool {
		a, b := vendorIDs[i], vendorIDs[j]
		if len(coverage[a]) != len(coverage[b]) {
			return len(coverage[a]) > len(coverage[b])
		}
		if (a == primaryVendor) != (b == primaryVendor) {
			return a == primaryVendor
		}
		if priority[a] != priority[b] {
			return rankedPriority(priority[a]) < rankedPriority(priority[b])
		}
		return a < b
	})

	best := vendorIDs[0]
	covered := coverage[best]
	sort.Strings(covered)
	return best, covered
}

// rankedPriority orders configured priorities ascending with 0 (unranked)
// last.
func rankedPriority(p int) int {
	if p == 0 {
		return int(^uint(0) >> 1)
	}
	return p
}

func rationale(vendorID, primaryVendor string, covered, remaining int) string {
	switch {
	case covered == remaining && vendorID == primaryVendor:
		return "primary vendor covers all remaining ingredients"
	case covered == remaining:
		return "covers all remaining ingredients"
	default:
		return fmt.Sprintf("covers largest remaining share (%d of %d)", covered, remaining)
	}
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
