package main

import (
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/basketwise/basket-cli/internal/catalog"
	"github.com/basketwise/basket-cli/internal/narrative"
	"github.com/basketwise/basket-cli/internal/planner"
	"github.com/basketwise/basket-cli/internal/store"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build a full shopping plan from an ingredient list",
	Long: `Decides one product per ingredient, labels tiers, reconciles package
quantities, and assigns the basket across the fewest fulfilling vendors.

Examples:
  # Plan from an ingredient file against the whole catalog
  plan --ingredients dinner.yaml

  # Restrict to two vendors and show the decision trace
  plan --ingredients dinner.yaml --vendors greenmart,rivercoop --trace

  # Export the plan and persist the run
  plan --ingredients dinner.yaml --format xlsx --output plan.xlsx --save`,
	RunE: runPlan,
}

func init() {
	f := planCmd.Flags()
	f.String("ingredients", "", "path to the ingredient list YAML (required)")
	f.String("vendors", "", "comma-separated vendor ids to scope the catalog (default: all)")
	f.Bool("trace", false, "include the decision trace in the output")
	f.Bool("narrative", false, "attach LLM narratives to decided items (requires anthropic key)")
	f.Bool("save", false, "persist the run to the configured store")
	f.String("format", "table", "output format: table, json, csv, or xlsx")
	f.String("output", "", "output file path (default: stdout; required for xlsx)")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ingredientsPath, _ := cmd.Flags().GetString("ingredients")
	vendorScope, _ := cmd.Flags().GetString("vendors")
	withTrace, _ := cmd.Flags().GetBool("trace")
	withNarrative, _ := cmd.Flags().GetBool("narrative")
	save, _ := cmd.Flags().GetBool("save")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	if ingredientsPath == "" {
		return eris.New("plan: --ingredients is required")
	}
	switch format {
	case "table", "json", "csv", "xlsx":
	default:
		return eris.Errorf("plan: --format must be table, json, csv, or xlsx (got %q)", format)
	}
	if format == "xlsx" && outputPath == "" {
		return eris.New("plan: --format xlsx requires --output")
	}

	env, err := initPlanEnv()
	if err != nil {
		return err
	}

	ingredients, err := catalog.LoadIngredients(ingredientsPath)
	if err != nil {
		return err
	}
	if len(ingredients) == 0 {
		return eris.New("plan: ingredient list is empty")
	}

	pool := env.Snapshot
	if vendorScope != "" {
		pool = pool.Scoped(splitCommaList(vendorScope))
	}

	out, err := env.Engine.Run(ctx, ingredients, pool)
	if err != nil {
		return err
	}

	result := planner.BuildResult(uuid.NewString(), out, env.Vendors, cfg.Engine.PrimaryVendor, withTrace)

	if withNarrative {
		if ann := newAnnotator(); ann != nil {
			result.Items = narrative.Apply(ctx, ann, result.Items)
		} else {
			zap.L().Warn("plan: --narrative requested but no anthropic key configured")
		}
	}

	if save {
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		run, err := store.NewStoredRun(result)
		if err != nil {
			return err
		}
		if err := s.SaveRun(ctx, run); err != nil {
			return err
		}
		zap.L().Info("plan: run saved", zap.String("run_id", result.RunID))
	}

	return writeResult(result, format, outputPath)
}

func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
