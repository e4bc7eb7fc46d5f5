package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nivesh",
	Short: "A deterministic backtest engine with Kelly-criterion position sizing",
	Long: `Nivesh replays historical price bars against entry signals and produces
position-sized virtual trades under strict capital and drawdown constraints.

It provides tools for:
  - Backtesting signal sequences over OHLCV bar files (csv, csv.xz, zip)
  - Kelly-criterion position sizing with half-Kelly damping and risk clamps
  - Realistic Indian equity/F&O transaction costs and slippage
  - Performance analytics: win rate, Sharpe ratio, maximum drawdown
  - SQLite/CSV run journals and org-mode reports`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
