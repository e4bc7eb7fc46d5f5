// Package analytics derives performance statistics from a run's closed
// trades and equity curve.
package analytics

import (
	"math"

	"github.com/niveshlab/nivesh/ledger"
)

// annualization factor for trade-level Sharpe (trading days per year).
const annualize = 252

// Metrics is the summary bundle computed after a run.
type Metrics struct {
	Trades      int
	Wins        int
	Losses      int
	WinRate     float64
	SharpeRatio float64
	// MaxDrawdown is the worst peak-to-trough equity decline as a
	// non-positive fraction (-0.12 = 12% below the running peak).
	MaxDrawdown  float64
	TotalReturn  float64
	ProfitFactor float64
	NetPnL       float64
	TotalCosts   float64
}

// Map flattens the metrics for reporting consumers.
func (m Metrics) Map() map[string]float64 {
	return map[string]float64{
		"trades":        float64(m.Trades),
		"wins":          float64(m.Wins),
		"losses":        float64(m.Losses),
		"win_rate":      m.WinRate,
		"sharpe_ratio":  m.SharpeRatio,
		"max_drawdown":  m.MaxDrawdown,
		"total_return":  m.TotalReturn,
		"profit_factor": m.ProfitFactor,
		"net_pnl":       m.NetPnL,
		"total_costs":   m.TotalCosts,
	}
}

// WinRate is closed wins over closed trades, 0 with no trades.
func WinRate(trades []ledger.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	wins := 0
	for _, t := range trades {
		if t.NetPnL > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(trades))
}

// SharpeRatio computes mean/stddev of per-trade return fractions, annualized
// by sqrt(252). Fewer than 2 trades has undefined variance and returns 0.
func SharpeRatio(trades []ledger.Trade) float64 {
	if len(trades) < 2 {
		return 0
	}

	var sum float64
	for _, t := range trades {
		sum += t.ReturnPct
	}
	mean := sum / float64(len(trades))

	var sq float64
	for _, t := range trades {
		d := t.ReturnPct - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(len(trades)-1))
	if std == 0 {
		return 0
	}

	return mean / std * math.Sqrt(annualize)
}

// MaxDrawdown returns the minimum of (equity - runningPeak)/runningPeak over
// the curve: 0 if equity never fell below its running peak, negative
// otherwise.
func MaxDrawdown(curve []ledger.EquityPoint) float64 {
	var (
		peak float64
		dd   float64
	)
	for _, ep := range curve {
		if ep.Equity > peak {
			peak = ep.Equity
		}
		if peak > 0 {
			d := (ep.Equity - peak) / peak
			if d < dd {
				dd = d
			}
		}
	}
	return dd
}

// ProfitFactor is gross profit over gross loss; 0 with no losing trades.
func ProfitFactor(trades []ledger.Trade) float64 {
	var profit, loss float64
	for _, t := range trades {
		if t.NetPnL > 0 {
			profit += t.NetPnL
		} else {
			loss += -t.NetPnL
		}
	}
	if loss == 0 {
		return 0
	}
	return profit / loss
}

// Summarize computes the full metrics bundle.
func Summarize(trades []ledger.Trade, curve []ledger.EquityPoint, initialCapital float64) Metrics {
	m := Metrics{
		Trades:       len(trades),
		WinRate:      WinRate(trades),
		SharpeRatio:  SharpeRatio(trades),
		MaxDrawdown:  MaxDrawdown(curve),
		ProfitFactor: ProfitFactor(trades),
	}

	for _, t := range trades {
		m.NetPnL += t.NetPnL
		m.TotalCosts += t.Costs
		if t.NetPnL > 0 {
			m.Wins++
		} else if t.NetPnL < 0 {
			m.Losses++
		}
	}

	if len(curve) > 0 && initialCapital > 0 {
		m.TotalReturn = (curve[len(curve)-1].Equity - initialCapital) / initialCapital
	}

	return m
}
