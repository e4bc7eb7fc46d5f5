package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/niveshlab/nivesh/journal"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "List journaled backtest runs",
	RunE:  runReport,
}

var (
	reportDBPath string
	reportRunID  string
	reportLimit  int
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportDBPath, "db", "d", "./backtests.sqlite", "path to SQLite journal DB")
	reportCmd.Flags().StringVarP(&reportRunID, "run", "r", "", "show trades for one run ID")
	reportCmd.Flags().IntVarP(&reportLimit, "limit", "n", 20, "max runs to list")
}

func runReport(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(reportDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	if reportRunID != "" {
		return reportTrades(j, reportRunID)
	}

	runs, err := j.ListRuns(reportLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs journaled yet")
		return nil
	}

	fmt.Printf("%-27s %-10s %-8s %8s %8s %8s %8s\n",
		"RUN", "SYMBOL", "TRADES", "WIN%", "SHARPE", "MAXDD%", "RET%")
	for _, r := range runs {
		fmt.Printf("%-27s %-10s %-8d %8.1f %8.2f %8.2f %8.2f\n",
			r.RunID, r.Symbol, r.Trades,
			r.WinRate*100, r.SharpeRatio, r.MaxDrawdown*100, r.TotalReturn*100)
	}
	return nil
}

func reportTrades(j *journal.SQLiteJournal, runID string) error {
	run, err := j.GetRun(runID)
	if err != nil {
		return err
	}
	trades, err := j.ListTradesByRun(runID)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s: %s, %d trades, net %.2f\n\n", run.RunID, run.Symbol, run.Trades, run.NetPnL)
	fmt.Printf("%-9s %6s %10s %10s %10s %8s %-10s\n",
		"POSITION", "QTY", "ENTRY", "EXIT", "NET P/L", "RET%", "REASON")
	for _, t := range trades {
		fmt.Printf("%-9s %6d %10.2f %10.2f %10.2f %8.2f %-10s\n",
			t.PositionID, t.Quantity, t.EntryPrice, t.ExitPrice, t.NetPnL, t.ReturnPct*100, t.Reason)
	}
	return nil
}
