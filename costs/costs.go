// Package costs models per-leg transaction costs and slippage.
//
// A Model prices one order leg: brokerage, taxes, exchange and regulatory
// charges, plus a slippage component that scales with order size relative to
// available liquidity. Costs are always non-negative; slippage never improves
// a fill.
package costs

import "github.com/niveshlab/nivesh/market"

// Side of the order leg.
type Side int8

const (
	Buy  Side = +1
	Sell Side = -1
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// OrderType selects the brokerage rule applied to the leg.
type OrderType int8

const (
	Delivery OrderType = iota
	Intraday
)

// Order describes one leg to be priced.
type Order struct {
	Side       Side
	Notional   float64 // quantity * price, account currency
	Instrument market.Instrument
	Type       OrderType

	// Liquidity is the traded value available at the fill (e.g. bar volume *
	// price). Volatility is an index level (e.g. VIX). Either may be zero or
	// NaN when upstream data is missing; models fall back to worst-case
	// assumptions rather than erroring.
	Liquidity  float64
	Volatility float64
}

// Model prices a single order leg. Implementations must be pure: identical
// orders always price identically.
type Model interface {
	Cost(o Order) float64
}

// Zero is the no-cost model used to isolate gross performance.
type Zero struct{}

func (Zero) Cost(Order) float64 { return 0 }
