package main

import (
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the loaded catalog snapshot",
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <ingredient>",
	Short: "List the candidates for one ingredient key",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogShow,
}

var catalogVendorsCmd = &cobra.Command{
	Use:   "vendors",
	Short: "List the vendor registry",
	RunE:  runCatalogVendors,
}

func init() {
	catalogShowCmd.Flags().String("vendors", "", "comma-separated vendor ids to scope the listing")

	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogVendorsCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	env, err := initPlanEnv()
	if err != nil {
		return err
	}

	pool := env.Snapshot
	if scope, _ := cmd.Flags().GetString("vendors"); scope != "" {
		pool = pool.Scoped(splitCommaList(scope))
	}

	key := args[0]
	cands := pool.CandidatesFor(key)
	if len(cands) == 0 {
		if pool.Known(key) {
			cmd.Printf("%s: known, but no scoped vendor stocks it\n", key)
		} else {
			cmd.Printf("%s: not in the catalog\n", key)
		}
		return nil
	}

	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	p.Fprintln(tw, "ID\tVENDOR\tPRICE\tPACKAGE\tORGANIC\tFORM\tSTOCK")
	for _, c := range cands {
		stock := "in stock"
		switch {
		case c.Recalled:
			stock = "recalled"
		case !c.InStock:
			stock = "out of stock"
		}
		p.Fprintf(tw, "%s\t%s\t$%.2f\t%.4g %s\t%t\t%s\t%s\n",
			c.ID, c.VendorID, c.Price, c.PackageAmount, c.PackageUnit,
			c.Organic, c.Form, stock)
	}
	return tw.Flush()
}

func runCatalogVendors(cmd *cobra.Command, _ []string) error {
	env, err := initPlanEnv()
	if err != nil {
		return err
	}

	vendors := env.Vendors
	sort.SliceStable(vendors, func(i, j int) bool { return vendors[i].ID < vendors[j].ID })

	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	p.Fprintln(tw, "ID\tNAME\tTYPE\tPRIORITY\tFULFILLMENT")
	for _, v := range vendors {
		priority := "-"
		if v.Priority > 0 {
			priority = p.Sprintf("%d", v.Priority)
		}
		p.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			v.ID, v.Name, v.Type, priority, v.FulfillmentEstimate)
	}
	return tw.Flush()
}
