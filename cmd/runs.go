package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/basketwise/basket-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect persisted plan runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent plan runs",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a stored plan run as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	runsListCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	runsListCmd.Flags().Int("offset", 0, "number of runs to skip")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	summaries, err := s.ListRuns(ctx, store.RunFilter{Limit: limit, Offset: offset})
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		cmd.Println("no stored runs")
		return nil
	}

	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	p.Fprintln(tw, "RUN ID\tITEMS\tUNFULFILLED\tTOTAL\tCREATED")
	for _, r := range summaries {
		p.Fprintf(tw, "%s\t%d\t%d\t$%.2f\t%s\n",
			r.RunID, r.Items, r.Unfulfilled, r.Recommended,
			r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	raw, err := s.GetRun(ctx, args[0])
	if err != nil {
		return err
	}

	var buf map[string]any
	if err := json.Unmarshal(raw, &buf); err != nil {
		return eris.Wrap(err, "runs: stored result is not valid JSON")
	}
	pretty, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		return eris.Wrap(err, "runs: re-encode result")
	}
	cmd.Println(string(pretty))
	return nil
}
