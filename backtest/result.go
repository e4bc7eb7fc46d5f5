package backtest

import (
	"time"

	"github.com/niveshlab/nivesh/analytics"
	"github.com/niveshlab/nivesh/ledger"
	"github.com/niveshlab/nivesh/market"
)

// Result is the in-memory bundle a run produces: closed trades, the equity
// curve and derived metrics. Reporting and journaling consumers read it; the
// core mandates no persisted format.
type Result struct {
	Symbol     string
	Instrument market.Instrument

	Start time.Time
	End   time.Time

	InitialCapital float64
	FinalCash      float64
	FinalEquity    float64

	Trades  []ledger.Trade
	Equity  []ledger.EquityPoint
	Metrics analytics.Metrics
}

func newResult(cfg Config, bs *market.BarSet, led *ledger.Ledger) *Result {
	trades := led.Trades()
	curve := led.EquityCurve()

	r := &Result{
		Symbol:         cfg.Symbol,
		Instrument:     cfg.Instrument,
		Start:          bs.Start(),
		End:            bs.End(),
		InitialCapital: cfg.InitialCapital,
		FinalCash:      led.Cash(),
		Trades:         trades,
		Equity:         curve,
		Metrics:        analytics.Summarize(trades, curve, cfg.InitialCapital),
	}
	if len(curve) > 0 {
		r.FinalEquity = curve[len(curve)-1].Equity
	}
	return r
}
