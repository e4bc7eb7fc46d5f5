// Package journal persists backtest runs: per-trade records, per-bar equity
// snapshots and whole-run summary rows. SQLite and CSV backends are provided;
// the engine itself never journals, callers record a Result after the run.
package journal

import (
	"time"

	"github.com/niveshlab/nivesh/backtest"
)

// TradeRecord mirrors the trades table.
type TradeRecord struct {
	RunID      string
	PositionID string
	Symbol     string
	Quantity   int64
	EntryPrice float64
	ExitPrice  float64
	EntryTime  time.Time
	ExitTime   time.Time
	GrossPnL   float64
	Costs      float64
	NetPnL     float64
	ReturnPct  float64
	Reason     string
}

// EquityRecord mirrors the equity table.
type EquityRecord struct {
	RunID  string
	Time   time.Time
	Equity float64
}

// RunRecord mirrors the runs table: one row per completed backtest.
type RunRecord struct {
	RunID      string
	Created    time.Time
	Symbol     string
	Instrument string

	Start time.Time
	End   time.Time

	InitialCapital float64
	FinalEquity    float64

	Trades int
	Wins   int
	Losses int

	WinRate      float64
	SharpeRatio  float64
	MaxDrawdown  float64
	TotalReturn  float64
	ProfitFactor float64
	NetPnL       float64
	TotalCosts   float64
}

type Journal interface {
	RecordRun(RunRecord) error
	RecordTrade(TradeRecord) error
	RecordEquity(EquityRecord) error
	Close() error
}

// RecordResult writes a full backtest Result under runID: the run summary,
// every closed trade and every equity sample.
func RecordResult(j Journal, runID string, created time.Time, r *backtest.Result) error {
	run := RunRecord{
		RunID:          runID,
		Created:        created,
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
	if err := j.RecordRun(run); err != nil {
		return err
	}

	for _, t := range r.Trades {
		rec := TradeRecord{
			RunID:      runID,
			PositionID: t.PositionID,
			Symbol:     t.Symbol,
			Quantity:   t.Quantity,
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			EntryTime:  t.EntryTime,
			ExitTime:   t.ExitTime,
			GrossPnL:   t.GrossPnL,
			Costs:      t.Costs,
			NetPnL:     t.NetPnL,
			ReturnPct:  t.ReturnPct,
			Reason:     string(t.Reason),
		}
		if err := j.RecordTrade(rec); err != nil {
			return err
		}
	}

	for _, ep := range r.Equity {
		if err := j.RecordEquity(EquityRecord{RunID: runID, Time: ep.Time, Equity: ep.Equity}); err != nil {
			return err
		}
	}
	return nil
}
