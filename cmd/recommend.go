package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/basketwise/basket-cli/internal/model"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend a single product for one ingredient",
	Long: `Runs the full decision pipeline for a single ingredient and prints the
winner with its score breakdown, tier neighbors, and package math.

Examples:
  recommend --ingredient strawberries --amount 2 --unit lb
  recommend --ingredient garlic --amount 4 --unit clove --form fresh --trace`,
	RunE: runRecommend,
}

func init() {
	f := recommendCmd.Flags()
	f.String("ingredient", "", "ingredient key (required)")
	f.Float64("amount", 1, "required amount")
	f.String("unit", "each", "unit of the required amount")
	f.String("form", "", "required form: fresh, frozen, canned, dried (default: any)")
	f.String("vendors", "", "comma-separated vendor ids to scope the catalog")
	f.Bool("trace", false, "print the score drivers and elimination detail")

	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	key, _ := cmd.Flags().GetString("ingredient")
	amount, _ := cmd.Flags().GetFloat64("amount")
	unit, _ := cmd.Flags().GetString("unit")
	form, _ := cmd.Flags().GetString("form")
	vendorScope, _ := cmd.Flags().GetString("vendors")
	withTrace, _ := cmd.Flags().GetBool("trace")

	if key == "" {
		return eris.New("recommend: --ingredient is required")
	}

	env, err := initPlanEnv()
	if err != nil {
		return err
	}

	pool := env.Snapshot
	if vendorScope != "" {
		pool = pool.Scoped(splitCommaList(vendorScope))
	}

	ing := model.Ingredient{
		Key:         strings.ToLower(strings.TrimSpace(key)),
		DisplayName: key,
		Amount:      amount,
		Unit:        unit,
		Form:        model.Form(form),
	}

	out, err := env.Engine.Run(ctx, []model.Ingredient{ing}, pool)
	if err != nil {
		return err
	}

	p := message.NewPrinter(language.English)

	if len(out.Unfulfilled) > 0 {
		u := out.Unfulfilled[0]
		p.Printf("No recommendation for %s: %s\n", u.Key, u.Reason)
		if u.Detail != "" {
			p.Printf("  %s\n", u.Detail)
		}
		return nil
	}

	item := out.Items[0]
	w := item.Winner
	p.Printf("%s — %s\n", item.Ingredient.Key, w.Title)
	p.Printf("  vendor   %s\n", w.VendorID)
	p.Printf("  price    $%.2f (%s, tier: %s)\n", w.Price, packagingLine(w), item.Tier)
	p.Printf("  score    %.0f (base %.0f, safety %+.0f, season %+.0f, locality %+.0f, packaging %+.0f, price rank %+.0f, outlier %+.0f)\n",
		item.WinnerScore.Total, item.WinnerScore.Base, item.WinnerScore.Safety,
		item.WinnerScore.Season, item.WinnerScore.Locality, item.WinnerScore.Packaging,
		item.WinnerScore.PriceRank, item.WinnerScore.Outlier)
	p.Printf("  buy      %s\n", quantityLine(item.Quantity, w))
	if item.CheaperID != "" {
		p.Printf("  cheaper  %s\n", item.CheaperID)
	}
	if item.PremiumID != "" {
		p.Printf("  premium  %s\n", item.PremiumID)
	}
	for _, a := range item.Annotations {
		p.Printf("  note     %s\n", a)
	}

	if withTrace {
		trace := model.DecisionTrace{Ingredients: out.Traces}
		if tr := trace.ForKey(item.Ingredient.Key); tr != nil {
			p.Printf("\nDecision trace\n")
			p.Printf("  margin over runner-up: %.0f\n", tr.Margin)
			for _, d := range tr.Drivers {
				p.Printf("  driver  %-12s %+.0f\n", d.Factor, d.Delta)
			}
			for _, e := range tr.Eliminated {
				p.Printf("  dropped %s (%s)\n", e.Candidate.ID, e.Reason)
			}
			for _, gap := range tr.DataGaps {
				p.Printf("  gap     %s\n", gap)
			}
		}
	}
	return nil
}

func packagingLine(c model.Candidate) string {
	label := fmt.Sprintf("%.4g %s", c.PackageAmount, c.PackageUnit)
	if c.Organic {
		label += ", organic"
	}
	return label
}

func quantityLine(q model.Reconciliation, c model.Candidate) string {
	if c.Continuous {
		return fmt.Sprintf("%.4g %s", q.ExactAmount, c.PackageUnit)
	}
	unit := "package"
	if q.Packages != 1 {
		unit = "packages"
	}
	return fmt.Sprintf("%d %s", q.Packages, unit)
}
