// Package sizing computes the capital fraction to allocate to a new position
// using a damped, clamped Kelly criterion.
package sizing

import (
	"sort"

	"github.com/niveshlab/nivesh/market"
)

// ProfitBand scales the fraction once realized profit reaches a threshold.
// Bands only ever increase aggressiveness after demonstrated profit, never
// while underwater.
type ProfitBand struct {
	MinProfitPct float64 // realized profit over initial capital (0.10 = 10%)
	Multiplier   float64
}

// Config holds every clamp in the sizing pipeline. All percentages are
// fractions (0.05 = 5%), never 0-100 integers.
type Config struct {
	// MinTrades is the history required before Kelly is trusted; below it the
	// DefaultFraction is used unconditionally.
	MinTrades       int
	DefaultFraction float64

	// Damping multiplies the raw Kelly fraction (0.5 = half-Kelly).
	Damping float64

	// ProfitBands are evaluated against (current-initial)/initial capital;
	// the highest band at or below the profit level applies. Profit <= 0
	// always gets multiplier 1.
	ProfitBands []ProfitBand

	// Per-instrument-class allocation caps.
	EquityCap float64
	FNOCap    float64

	// PortfolioRiskCeiling bounds the sum of committed fractions across all
	// open positions. At or above the ceiling new entries size to 0.
	PortfolioRiskCeiling float64
}

// DefaultConfig returns the standard conservative configuration.
func DefaultConfig() Config {
	return Config{
		MinTrades:       25,
		DefaultFraction: 0.05,
		Damping:         0.5,
		ProfitBands: []ProfitBand{
			{MinProfitPct: 0.10, Multiplier: 1.5},
			{MinProfitPct: 0.20, Multiplier: 2.0},
		},
		EquityCap:            0.20,
		FNOCap:               0.04,
		PortfolioRiskCeiling: 0.50,
	}
}

// Inputs for one sizing decision.
type Inputs struct {
	WinRate    float64
	AvgWinPct  float64
	AvgLossPct float64 // positive number
	TradeCount int

	CurrentCapital float64
	InitialCapital float64

	Instrument market.Instrument

	// OpenRiskFraction is the capital fraction already committed to open
	// positions.
	OpenRiskFraction float64
}

// FromStats fills the performance fields of Inputs from a Stats aggregate.
func (in Inputs) FromStats(s *Stats) Inputs {
	in.WinRate = s.WinRate()
	in.AvgWinPct = s.AvgWinPct()
	in.AvgLossPct = s.AvgLossPct()
	in.TradeCount = s.Trades
	return in
}

// Fraction runs the sizing pipeline and returns the final allocatable
// fraction in [0, instrument cap]. Each stage strictly narrows the result.
//
// Degenerate inputs (no history, zero average win, negative edge) resolve to
// the conservative default or zero; they are expected conditions, not errors.
func (c Config) Fraction(in Inputs) float64 {
	capFrac := c.instrumentCap(in.Instrument)

	// Portfolio ceiling first: if committed risk already meets the ceiling,
	// nothing can be allocated no matter how good the edge looks.
	headroom := c.PortfolioRiskCeiling - in.OpenRiskFraction
	if headroom <= 0 {
		return 0
	}

	var f float64
	switch {
	case in.TradeCount < c.MinTrades || in.AvgWinPct == 0:
		// Sparse or degenerate history: fixed conservative default, no Kelly.
		f = c.DefaultFraction

	default:
		// Raw Kelly: f = (p*W - q*L) / W
		f = (in.WinRate*in.AvgWinPct - (1-in.WinRate)*in.AvgLossPct) / in.AvgWinPct
		if f <= 0 {
			// Negative edge: stand aside regardless of later stages.
			return 0
		}

		f *= c.Damping
		f *= c.profitMultiplier(in.CurrentCapital, in.InitialCapital)
	}

	if f > capFrac {
		f = capFrac
	}
	if f > headroom {
		f = headroom
	}
	if f < 0 {
		return 0
	}
	return f
}

func (c Config) instrumentCap(i market.Instrument) float64 {
	if i == market.FNO {
		return c.FNOCap
	}
	return c.EquityCap
}

// profitMultiplier returns the band multiplier for the realized profit level.
func (c Config) profitMultiplier(current, initial float64) float64 {
	if initial <= 0 {
		return 1
	}
	profit := (current - initial) / initial
	if profit <= 0 {
		return 1
	}

	bands := append([]ProfitBand(nil), c.ProfitBands...)
	sort.Slice(bands, func(i, j int) bool { return bands[i].MinProfitPct < bands[j].MinProfitPct })

	mult := 1.0
	for _, b := range bands {
		if profit >= b.MinProfitPct {
			mult = b.Multiplier
		}
	}
	return mult
}
