package costs

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/niveshlab/nivesh/market"
)

// feesOnly returns a schedule with the slippage component switched off so
// the fee legs can be checked exactly.
func feesOnly() *Schedule {
	s := NewSchedule()
	s.Slippage = SlippageParams{}
	return s
}

func TestZeroModel(t *testing.T) {
	t.Parallel()

	assert.Zero(t, Zero{}.Cost(Order{Side: Buy, Notional: 1_000_000}))
}

func TestSchedule_DeliveryBuyEquity(t *testing.T) {
	t.Parallel()

	got := feesOnly().Cost(Order{
		Side:       Buy,
		Notional:   100_000,
		Instrument: market.Equity,
		Type:       Delivery,
	})

	// brokerage min(20, 30) = 20; exchange 2.97; sebi 0.10
	// GST 18% on 23.07 = 4.1526; stamp (buy leg) 15
	want := 20.0 + 2.97 + 0.10 + 4.1526 + 15.0
	assert.InDelta(t, want, got, 1e-9)
}

func TestSchedule_DeliverySellEquity(t *testing.T) {
	t.Parallel()

	got := feesOnly().Cost(Order{
		Side:       Sell,
		Notional:   100_000,
		Instrument: market.Equity,
		Type:       Delivery,
	})

	// Same service legs as the buy, but STT (0.1% = 100) instead of stamp.
	want := 20.0 + 2.97 + 0.10 + 4.1526 + 100.0
	assert.InDelta(t, want, got, 1e-9)
}

func TestSchedule_BrokerageRules(t *testing.T) {
	t.Parallel()

	s := feesOnly()

	tests := []struct {
		name     string
		notional float64
		typ      OrderType
		want     float64
	}{
		{"delivery_small_uses_pct", 10_000, Delivery, 3.0},    // 0.03% of 10k < 20 flat
		{"delivery_large_uses_flat", 1_000_000, Delivery, 20}, // 0.03% = 300 > 20
		{"intraday_small_pct", 10_000, Intraday, 3.0},
		{"intraday_capped_at_flat", 1_000_000, Intraday, 20},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, _ := s.brokerage(decimal.NewFromFloat(tt.notional), tt.typ).Float64()
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestSchedule_STTAsymmetry(t *testing.T) {
	t.Parallel()

	s := feesOnly()
	o := Order{Notional: 50_000, Instrument: market.Equity, Type: Delivery}

	buy := o
	buy.Side = Buy
	sell := o
	sell.Side = Sell

	// STT on the sell leg (0.1%) outweighs stamp duty on the buy leg (0.015%).
	assert.Greater(t, s.Cost(sell), s.Cost(buy))
}

func TestSlippage_MissingInputsWorstCase(t *testing.T) {
	t.Parallel()

	p := DefaultSlippageParams()
	base := Order{Side: Buy, Notional: 10_000}

	deep := base
	deep.Liquidity = 10_000_000
	deep.Volatility = 12

	missing := base
	missing.Liquidity = math.NaN()
	missing.Volatility = math.NaN()

	assert.Greater(t, p.Amount(missing), p.Amount(deep),
		"missing liquidity/volatility must price worse than a deep calm market")
}

func TestSlippage_Monotonicity(t *testing.T) {
	t.Parallel()

	p := DefaultSlippageParams()

	calm := Order{Side: Sell, Notional: 10_000, Liquidity: 1_000_000, Volatility: 12}
	stressed := calm
	stressed.Volatility = 40

	assert.Greater(t, p.Amount(stressed), p.Amount(calm))

	thin := calm
	thin.Liquidity = 20_000
	assert.Greater(t, p.Amount(thin), p.Amount(calm))
}

func TestSlippage_NeverNegativeNeverZeroCost(t *testing.T) {
	t.Parallel()

	p := DefaultSlippageParams()

	assert.Zero(t, p.Amount(Order{Side: Buy, Notional: 0}))
	assert.Zero(t, p.Amount(Order{Side: Buy, Notional: math.NaN()}))
	assert.Greater(t, p.Amount(Order{Side: Buy, Notional: 100, Liquidity: 1e9, Volatility: 10}), 0.0,
		"slippage never improves a fill")
}
