package ledger

import "time"

// Position is an open holding: a trade before its exit leg.
//
// Positions are keyed by a per-run monotonic ID, not by symbol, so layered
// entries on the same symbol coexist instead of silently replacing each
// other. Quantity is fixed at entry; there are no partial fills.
type Position struct {
	ID     string
	Symbol string

	Quantity   int64
	EntryTime  time.Time
	EntryPrice float64
	EntryCost  float64 // transaction cost paid on the entry leg
	EntryBar   int     // bar index of the entry fill

	Stop   float64 // exit trigger levels, 0 means none
	Target float64

	// RiskFraction is the capital fraction committed at entry; the sizer sums
	// these across open positions for its portfolio ceiling.
	RiskFraction float64
}

// Notional returns the entry notional value of the position.
func (p *Position) Notional() float64 {
	return float64(p.Quantity) * p.EntryPrice
}

// MarkValue values the position at the given price.
func (p *Position) MarkValue(price float64) float64 {
	return float64(p.Quantity) * price
}
