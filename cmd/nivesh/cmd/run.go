package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/niveshlab/nivesh/backtest"
	"github.com/niveshlab/nivesh/config"
	"github.com/niveshlab/nivesh/internal/id"
	"github.com/niveshlab/nivesh/journal"
	"github.com/niveshlab/nivesh/market/data"
	"github.com/niveshlab/nivesh/signals"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest over a bar file",
	Long: `Run replays a historical bar file against an entry-signal sequence,
sizing each entry with the Kelly engine and applying the configured
transaction cost model.

Example:
  nivesh run --bars data/reliance_d1.csv --config backtest.yaml`,
	RunE: runBacktest,
}

var (
	runBarsPath   string
	runConfigPath string
	runOrgPath    string
	runVerbose    bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runBarsPath, "bars", "b", "", "path to bar file: time,open,high,low,close,volume (.csv, .csv.xz or .zip) (required)")
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to YAML/JSON run config (defaults used when omitted)")
	runCmd.Flags().StringVar(&runOrgPath, "org", "", "write an org-mode run report to this path")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "log entry skips and exits")

	runCmd.MarkFlagRequired("bars")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if runConfigPath != "" {
		var err error
		cfg, err = config.LoadFromFile(runConfigPath)
		if err != nil {
			return err
		}
	}

	log := zap.NewNop()
	if runVerbose {
		var err error
		log, err = zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer log.Sync()
	}

	bs, err := data.LoadBars(cfg.Engine.Symbol, runBarsPath)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}

	gen := signals.NewEMACross(cfg.Signals.FastPeriod, cfg.Signals.SlowPeriod)
	seq, err := gen.Generate(bs)
	if err != nil {
		return fmt.Errorf("generate signals: %w", err)
	}

	btCfg, err := cfg.BacktestConfig()
	if err != nil {
		return err
	}

	engine := backtest.New(btCfg, cfg.SizerConfig(), cfg.CostModel(), log)

	result, err := engine.Run(bs, seq)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	runID := id.New()
	printResult(runID, result)

	if j, err := openJournal(cfg); err != nil {
		return err
	} else if j != nil {
		defer j.Close()
		if err := journal.RecordResult(j, runID, time.Now(), result); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
	}

	if runOrgPath != "" {
		rec := runRecord(runID, result)
		if err := rec.WriteOrg(runOrgPath); err != nil {
			return fmt.Errorf("write org report: %w", err)
		}
	}

	return nil
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "", "none":
		return nil, nil
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(cfg.Journal.RunsFile, cfg.Journal.TradesFile, cfg.Journal.EquityFile)
	}
	return nil, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
}

func runRecord(runID string, r *backtest.Result) journal.RunRecord {
	return journal.RunRecord{
		RunID:          runID,
		Created:        time.Now(),
		Symbol:         r.Symbol,
		Instrument:     r.Instrument.String(),
		Start:          r.Start,
		End:            r.End,
		InitialCapital: r.InitialCapital,
		FinalEquity:    r.FinalEquity,
		Trades:         r.Metrics.Trades,
		Wins:           r.Metrics.Wins,
		Losses:         r.Metrics.Losses,
		WinRate:        r.Metrics.WinRate,
		SharpeRatio:    r.Metrics.SharpeRatio,
		MaxDrawdown:    r.Metrics.MaxDrawdown,
		TotalReturn:    r.Metrics.TotalReturn,
		ProfitFactor:   r.Metrics.ProfitFactor,
		NetPnL:         r.Metrics.NetPnL,
		TotalCosts:     r.Metrics.TotalCosts,
	}
}

func printResult(runID string, r *backtest.Result) {
	m := r.Metrics
	fmt.Printf("Backtest complete: %s (%s)\n", r.Symbol, runID)
	fmt.Printf("  Period:        %s -> %s\n", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	fmt.Printf("  Capital:       %.2f -> %.2f\n", r.InitialCapital, r.FinalEquity)
	fmt.Printf("  Net P/L:       %.2f (costs %.2f)\n", m.NetPnL, m.TotalCosts)
	fmt.Printf("  Total Return:  %.2f%%\n", m.TotalReturn*100)
	fmt.Printf("  Trades:        %d (W %d / L %d, win rate %.1f%%)\n", m.Trades, m.Wins, m.Losses, m.WinRate*100)
	fmt.Printf("  Sharpe Ratio:  %.2f\n", m.SharpeRatio)
	fmt.Printf("  Max Drawdown:  %.2f%%\n", m.MaxDrawdown*100)
}
