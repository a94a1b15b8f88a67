package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/basketwise/basket-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "basket-cli",
	Short: "Grocery recommendation and vendor planning engine",
	Long:  "Picks one product per requested ingredient from a catalog snapshot, labels it with a price/ethics tier, reconciles package quantities, and assigns the basket across the fewest fulfilling vendors.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
