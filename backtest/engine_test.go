package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niveshlab/nivesh/costs"
	"github.com/niveshlab/nivesh/ledger"
	"github.com/niveshlab/nivesh/market"
	"github.com/niveshlab/nivesh/signals"
	"github.com/niveshlab/nivesh/sizing"
)

var day0 = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		Symbol:           "RELIANCE",
		Instrument:       market.Equity,
		InitialCapital:   100_000,
		StopLossPct:      0.02,
		TargetPct:        0.04,
		MaxOpenPositions: 5,
	}
}

// bar builds a daily bar; o/h/l/c as given, volume fixed.
func bar(i int, o, h, l, c float64) market.Bar {
	return market.Bar{
		Time:   day0.AddDate(0, 0, i),
		Open:   o,
		High:   h,
		Low:    l,
		Close:  c,
		Volume: 1_000_000,
	}
}

func barSet(bars ...market.Bar) *market.BarSet {
	return market.NewBarSet("RELIANCE", bars)
}

func TestRun_StopLossScenario(t *testing.T) {
	t.Parallel()

	// Entry at 100 on the signal bar's close; the next bar touches 96,
	// crossing the 2% stop at 98. Zero-cost model, so the realized loss is
	// exactly -2% of position value.
	bs := barSet(
		bar(0, 100, 101, 99, 100),
		bar(1, 99, 99, 96, 97),
	)
	seq := signals.Sequence{true, false}

	eng := New(testConfig(), sizerForTest(), costs.Zero{}, nil)
	res, err := eng.Run(bs, seq)
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	tr := res.Trades[0]

	// 0 closed trades at entry time: sizing uses the conservative default
	// fraction 0.05 => qty = floor(100000*0.05/100) = 50.
	assert.Equal(t, int64(50), tr.Quantity)
	assert.Equal(t, ledger.ReasonStopLoss, tr.Reason)
	assert.InDelta(t, 98, tr.ExitPrice, 1e-9)
	assert.InDelta(t, -0.02, tr.ReturnPct, 1e-9)
	assert.InDelta(t, -0.02*5000, tr.NetPnL, 1e-9)
}

func TestRun_TargetScenario(t *testing.T) {
	t.Parallel()

	bs := barSet(
		bar(0, 100, 101, 99, 100),
		bar(1, 101, 104.5, 100, 104),
	)
	seq := signals.Sequence{true, false}

	eng := New(testConfig(), sizerForTest(), costs.Zero{}, nil)
	res, err := eng.Run(bs, seq)
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	assert.Equal(t, ledger.ReasonTarget, res.Trades[0].Reason)
	assert.InDelta(t, 104, res.Trades[0].ExitPrice, 1e-9)
	assert.InDelta(t, 0.04, res.Trades[0].ReturnPct, 1e-9)
}

func TestRun_GapThroughBothLevels(t *testing.T) {
	t.Parallel()

	// Bar 1 spans both the stop (98) and the target (104).
	mk := func(prio ExitPriority) (*Result, error) {
		bs := barSet(
			bar(0, 100, 101, 99, 100),
			bar(1, 100, 105, 95, 99),
		)
		cfg := testConfig()
		cfg.ExitPriority = prio
		eng := New(cfg, sizerForTest(), costs.Zero{}, nil)
		return eng.Run(bs, signals.Sequence{true, false})
	}

	res, err := mk(StopFirst)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)
	assert.Equal(t, ledger.ReasonStopLoss, res.Trades[0].Reason,
		"conservative default: stop before target on a gap-through bar")

	res, err = mk(TargetFirst)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)
	assert.Equal(t, ledger.ReasonTarget, res.Trades[0].Reason)
}

func TestRun_TimeExit(t *testing.T) {
	t.Parallel()

	// Flat bars never touch stop or target; the hold limit forces the close.
	bs := barSet(
		bar(0, 100, 100, 100, 100),
		bar(1, 100, 100, 100, 100),
		bar(2, 100, 100, 100, 100),
	)
	cfg := testConfig()
	cfg.MaxHoldBars = 2

	eng := New(cfg, sizerForTest(), costs.Zero{}, nil)
	res, err := eng.Run(bs, signals.Sequence{true, false, false})
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	assert.Equal(t, ledger.ReasonTimeExit, res.Trades[0].Reason)
	assert.Equal(t, day0.AddDate(0, 0, 2), res.Trades[0].ExitTime)
}

func TestRun_PositionCeiling(t *testing.T) {
	t.Parallel()

	// Wide stop/target so nothing exits; dense signals must stop booking at
	// the ceiling, leaving later signals skipped.
	bs := barSet(
		bar(0, 100, 100, 100, 100),
		bar(1, 100, 100, 100, 100),
		bar(2, 100, 100, 100, 100),
		bar(3, 100, 100, 100, 100),
		bar(4, 100, 100, 100, 100),
	)
	cfg := testConfig()
	cfg.StopLossPct = 0.90
	cfg.TargetPct = 9.0
	cfg.MaxOpenPositions = 2

	eng := New(cfg, sizerForTest(), costs.Zero{}, nil)
	res, err := eng.Run(bs, signals.Sequence{true, true, true, true, true})
	require.NoError(t, err)

	// Two entries of 50 @ 100 each; third and later signals skipped.
	assert.Empty(t, res.Trades)
	assert.InDelta(t, 100_000-2*5_000, res.FinalCash, 1e-9)

	// Flat prices: every equity sample stays at initial capital.
	require.Len(t, res.Equity, 5)
	for _, ep := range res.Equity {
		assert.InDelta(t, 100_000, ep.Equity, 1e-9)
	}
}

func TestRun_UnsizableSignalIsSkipped(t *testing.T) {
	t.Parallel()

	// 5% of 1,000 buys 0 shares at price 100: the signal is skipped, the
	// ledger is untouched and no error surfaces.
	bs := barSet(bar(0, 100, 100, 100, 100))
	cfg := testConfig()
	cfg.InitialCapital = 1_000

	eng := New(cfg, sizerForTest(), costs.Zero{}, nil)
	res, err := eng.Run(bs, signals.Sequence{true})
	require.NoError(t, err)

	assert.Empty(t, res.Trades)
	assert.InDelta(t, 1_000, res.FinalCash, 1e-9)
}

func TestRun_MisalignedSignalsFatal(t *testing.T) {
	t.Parallel()

	bs := barSet(bar(0, 100, 100, 100, 100), bar(1, 100, 100, 100, 100))

	eng := New(testConfig(), sizerForTest(), costs.Zero{}, nil)
	_, err := eng.Run(bs, signals.Sequence{true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestRun_CloseEndFlattens(t *testing.T) {
	t.Parallel()

	bs := barSet(
		bar(0, 100, 100, 100, 100),
		bar(1, 101, 102, 100, 101),
	)
	cfg := testConfig()
	cfg.CloseEnd = true

	eng := New(cfg, sizerForTest(), costs.Zero{}, nil)
	res, err := eng.Run(bs, signals.Sequence{true, false})
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	assert.Equal(t, ledger.ReasonEndOfData, res.Trades[0].Reason)
	assert.InDelta(t, 101, res.Trades[0].ExitPrice, 1e-9)
}

func TestRun_Deterministic(t *testing.T) {
	t.Parallel()

	bs := syntheticBars(300)
	seq := make(signals.Sequence, bs.Len())
	for i := 10; i < bs.Len(); i += 7 {
		seq[i] = true
	}

	run := func() *Result {
		cfg := testConfig()
		cfg.CloseEnd = true
		eng := New(cfg, sizerForTest(), costs.NewSchedule(), nil)
		res, err := eng.Run(bs, seq)
		require.NoError(t, err)
		return res
	}

	a, b := run(), run()
	assert.Equal(t, a.Trades, b.Trades)
	assert.Equal(t, a.Equity, b.Equity)
	assert.Equal(t, a.Metrics, b.Metrics)
}

func TestRun_ZeroCostNetEqualsGross(t *testing.T) {
	t.Parallel()

	bs := syntheticBars(300)
	seq := make(signals.Sequence, bs.Len())
	for i := 5; i < bs.Len(); i += 11 {
		seq[i] = true
	}

	cfg := testConfig()
	cfg.CloseEnd = true
	eng := New(cfg, sizerForTest(), nil, nil) // nil model = zero cost
	res, err := eng.Run(bs, seq)
	require.NoError(t, err)

	require.NotEmpty(t, res.Trades)
	for _, tr := range res.Trades {
		assert.Equal(t, tr.GrossPnL, tr.NetPnL)
		assert.Zero(t, tr.Costs)
	}
	assert.LessOrEqual(t, res.Metrics.MaxDrawdown, 0.0)
}

func TestRun_CashNeverNegative(t *testing.T) {
	t.Parallel()

	bs := syntheticBars(500)
	seq := make(signals.Sequence, bs.Len())
	for i := range seq {
		seq[i] = true // maximum signal density
	}

	cfg := testConfig()
	cfg.MaxOpenPositions = 5
	eng := New(cfg, sizerForTest(), costs.NewSchedule(), nil)
	res, err := eng.Run(bs, seq)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.FinalCash, 0.0)
	require.Len(t, res.Equity, bs.Len())
}

// syntheticBars builds a deterministic oscillating price path.
func syntheticBars(n int) *market.BarSet {
	bars := make([]market.Bar, n)
	for i := 0; i < n; i++ {
		base := 100 + 10*math.Sin(float64(i)/9) + float64(i%17)/5
		bars[i] = market.Bar{
			Time:   day0.AddDate(0, 0, i),
			Open:   base,
			High:   base + 1.5,
			Low:    base - 1.5,
			Close:  base + 0.5,
			Volume: 500_000,
		}
	}
	return market.NewBarSet("RELIANCE", bars)
}

func sizerForTest() sizing.Config { return sizing.DefaultConfig() }
