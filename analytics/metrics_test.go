package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/niveshlab/nivesh/ledger"
)

func tradeWith(net, retPct float64) ledger.Trade {
	return ledger.Trade{NetPnL: net, ReturnPct: retPct}
}

func TestWinRate(t *testing.T) {
	t.Parallel()

	assert.Zero(t, WinRate(nil), "no trades yields 0, not NaN")

	trades := []ledger.Trade{
		tradeWith(100, 0.02),
		tradeWith(-50, -0.01),
		tradeWith(200, 0.04),
		tradeWith(-25, -0.005),
	}
	assert.InDelta(t, 0.5, WinRate(trades), 1e-12)
}

func TestSharpeRatio(t *testing.T) {
	t.Parallel()

	assert.Zero(t, SharpeRatio(nil))
	assert.Zero(t, SharpeRatio([]ledger.Trade{tradeWith(10, 0.01)}),
		"variance undefined under 2 trades")

	// returns 0.01 and 0.03: mean 0.02, sample std 0.0141421356
	trades := []ledger.Trade{tradeWith(10, 0.01), tradeWith(30, 0.03)}
	want := 0.02 / 0.014142135623730951 * math.Sqrt(252)
	assert.InDelta(t, want, SharpeRatio(trades), 1e-9)

	// Identical returns: zero variance yields 0, never a division blowup.
	flat := []ledger.Trade{tradeWith(10, 0.01), tradeWith(10, 0.01)}
	assert.Zero(t, SharpeRatio(flat))
}

func curve(values ...float64) []ledger.EquityPoint {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	out := make([]ledger.EquityPoint, len(values))
	for i, v := range values {
		out[i] = ledger.EquityPoint{Time: start.AddDate(0, 0, i), Equity: v}
	}
	return out
}

func TestMaxDrawdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		equity []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"monotonic_up", []float64{100, 110, 120}, 0},
		{"flat", []float64{100, 100, 100}, 0},
		{"single_dip", []float64{100, 120, 90}, (90.0 - 120.0) / 120.0},
		{"recovers_after_dip", []float64{100, 80, 130}, -0.20},
		{"deepest_of_two_dips", []float64{100, 90, 110, 77}, (77.0 - 110.0) / 110.0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := MaxDrawdown(curve(tt.equity...))
			assert.InDelta(t, tt.want, got, 1e-12)
			assert.LessOrEqual(t, got, 0.0, "drawdown is never positive")
		})
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	trades := []ledger.Trade{
		{NetPnL: 300, ReturnPct: 0.03, Costs: 12},
		{NetPnL: -100, ReturnPct: -0.01, Costs: 10},
		{NetPnL: 200, ReturnPct: 0.02, Costs: 11},
	}
	eq := curve(100_000, 100_300, 100_200, 100_400)

	m := Summarize(trades, eq, 100_000)

	assert.Equal(t, 3, m.Trades)
	assert.Equal(t, 2, m.Wins)
	assert.Equal(t, 1, m.Losses)
	assert.InDelta(t, 2.0/3.0, m.WinRate, 1e-12)
	assert.InDelta(t, 400, m.NetPnL, 1e-9)
	assert.InDelta(t, 33, m.TotalCosts, 1e-9)
	assert.InDelta(t, 0.004, m.TotalReturn, 1e-12)
	assert.InDelta(t, 5.0, m.ProfitFactor, 1e-12) // 500 / 100

	mm := m.Map()
	assert.InDelta(t, m.SharpeRatio, mm["sharpe_ratio"], 1e-12)
	assert.InDelta(t, m.MaxDrawdown, mm["max_drawdown"], 1e-12)
}
