package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/basketwise/basket-cli/internal/model"
)

// writeResult renders a finished plan in the requested format. Table, json,
// and csv write to stdout unless an output path is given; xlsx always needs
// a path.
func writeResult(result *model.PlanResult, format, outputPath string) error {
	if format == "xlsx" {
		return writeXLSX(result, outputPath)
	}

	out := io.Writer(os.Stdout)
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "output: create %s", outputPath)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "table":
		return writeTable(out, result)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(result), "output: encode json")
	case "csv":
		return writeCSV(out, result)
	}
	return eris.Errorf("output: unknown format %q", format)
}

func writeTable(out io.Writer, result *model.PlanResult) error {
	p := message.NewPrinter(language.English)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	p.Fprintln(tw, "INGREDIENT\tPRODUCT\tVENDOR\tTIER\tSCORE\tBUY\tCOST")
	for _, item := range result.Items {
		p.Fprintf(tw, "%s\t%s\t%s\t%s\t%.0f\t%s\t$%.2f\n",
			item.Ingredient.Key, item.Winner.Title, item.Winner.VendorID,
			item.Tier, item.WinnerScore.Total,
			buyLabel(item), item.Quantity.PurchaseCost(item.Winner))
	}
	if err := tw.Flush(); err != nil {
		return eris.Wrap(err, "output: flush table")
	}

	p.Fprintf(out, "\nVendor plan\n")
	for _, a := range result.Plan.Assignments {
		p.Fprintf(out, "  %s  $%.2f  %v\n", a.VendorID, a.Subtotal, a.IngredientKeys)
		if a.Rationale != "" {
			p.Fprintf(out, "    %s\n", a.Rationale)
		}
	}
	for _, u := range result.Plan.Unfulfillable {
		p.Fprintf(out, "  unfulfillable: %s (%s)\n", u.Key, u.Reason)
	}

	p.Fprintf(out, "\nTotals\n")
	p.Fprintf(out, "  recommended  $%.2f\n", result.Totals.Recommended)
	p.Fprintf(out, "  cheapest     $%.2f\n", result.Totals.Cheapest)
	p.Fprintf(out, "  savings gap  $%.2f\n", result.Totals.Savings)

	for _, w := range result.Warnings {
		p.Fprintf(out, "\nwarning: %s\n", w)
	}

	if result.Trace != nil {
		p.Fprintf(out, "\nDecision trace\n")
		for _, tr := range result.Trace.Ingredients {
			p.Fprintf(out, "  %s  winner=%s  margin=%.0f\n", tr.Key, tr.WinnerID, tr.Margin)
			for _, d := range tr.Drivers {
				p.Fprintf(out, "    driver  %-12s %+.0f\n", d.Factor, d.Delta)
			}
			for _, e := range tr.Eliminated {
				p.Fprintf(out, "    dropped %s (%s)\n", e.Candidate.ID, e.Reason)
			}
			for _, gap := range tr.DataGaps {
				p.Fprintf(out, "    gap     %s\n", gap)
			}
		}
	}
	return nil
}

func writeCSV(out io.Writer, result *model.PlanResult) error {
	w := csv.NewWriter(out)
	header := []string{
		"ingredient", "product_id", "product", "vendor", "tier", "score",
		"packages", "exact_amount", "cost", "cheaper_id", "premium_id",
	}
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "output: write csv header")
	}
	for _, item := range result.Items {
		row := []string{
			item.Ingredient.Key,
			item.Winner.ID,
			item.Winner.Title,
			item.Winner.VendorID,
			string(item.Tier),
			strconv.FormatFloat(item.WinnerScore.Total, 'f', 0, 64),
			strconv.Itoa(item.Quantity.Packages),
			strconv.FormatFloat(item.Quantity.ExactAmount, 'f', -1, 64),
			strconv.FormatFloat(item.Quantity.PurchaseCost(item.Winner), 'f', 2, 64),
			item.CheaperID,
			item.PremiumID,
		}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "output: write csv row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "output: flush csv")
}

func writeXLSX(result *model.PlanResult, path string) error {
	f := xlsx.NewFile()

	items, err := f.AddSheet("Items")
	if err != nil {
		return eris.Wrap(err, "output: add items sheet")
	}
	addRow(items, "Ingredient", "Product", "Vendor", "Tier", "Score", "Buy", "Cost")
	for _, item := range result.Items {
		addRow(items,
			item.Ingredient.Key, item.Winner.Title, item.Winner.VendorID,
			string(item.Tier),
			fmt.Sprintf("%.0f", item.WinnerScore.Total),
			buyLabel(item),
			fmt.Sprintf("%.2f", item.Quantity.PurchaseCost(item.Winner)))
	}

	vendors, err := f.AddSheet("Vendors")
	if err != nil {
		return eris.Wrap(err, "output: add vendors sheet")
	}
	addRow(vendors, "Vendor", "Subtotal", "Ingredients", "Rationale")
	for _, a := range result.Plan.Assignments {
		addRow(vendors, a.VendorID,
			fmt.Sprintf("%.2f", a.Subtotal),
			fmt.Sprintf("%v", a.IngredientKeys), a.Rationale)
	}
	for _, u := range result.Plan.Unfulfillable {
		addRow(vendors, "-", "-", u.Key, string(u.Reason))
	}

	totals, err := f.AddSheet("Totals")
	if err != nil {
		return eris.Wrap(err, "output: add totals sheet")
	}
	addRow(totals, "Recommended", fmt.Sprintf("%.2f", result.Totals.Recommended))
	addRow(totals, "Cheapest", fmt.Sprintf("%.2f", result.Totals.Cheapest))
	addRow(totals, "Savings gap", fmt.Sprintf("%.2f", result.Totals.Savings))

	return eris.Wrapf(f.Save(path), "output: save %s", path)
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().Value = v
	}
}

func buyLabel(item model.DecisionItem) string {
	if item.Winner.Continuous {
		return fmt.Sprintf("%.4g %s", item.Quantity.ExactAmount, item.Winner.PackageUnit)
	}
	return fmt.Sprintf("%d pkg", item.Quantity.Packages)
}
