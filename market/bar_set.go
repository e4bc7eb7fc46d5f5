package market

import (
	"fmt"
	"time"
)

// BarSet is an ordered series of bars for one symbol.
//
// The simulation core assumes the series is pre-validated upstream: strictly
// increasing timestamps and sane OHLC relationships. Validate() is provided
// for loaders that ingest untrusted files.
type BarSet struct {
	Symbol string
	Bars   []Bar
}

func NewBarSet(symbol string, bars []Bar) *BarSet {
	return &BarSet{Symbol: symbol, Bars: bars}
}

func (bs *BarSet) Len() int { return len(bs.Bars) }

// Start returns the timestamp of the first bar, or the zero time if empty.
func (bs *BarSet) Start() time.Time {
	if len(bs.Bars) == 0 {
		return time.Time{}
	}
	return bs.Bars[0].Time
}

// End returns the timestamp of the last bar, or the zero time if empty.
func (bs *BarSet) End() time.Time {
	if len(bs.Bars) == 0 {
		return time.Time{}
	}
	return bs.Bars[len(bs.Bars)-1].Time
}

// Validate checks ordering and OHLC consistency. Loaders call this once at
// ingestion; the engine itself does not re-validate.
func (bs *BarSet) Validate() error {
	if bs.Symbol == "" {
		return fmt.Errorf("bar set: symbol is required")
	}

	var prev time.Time
	for i, b := range bs.Bars {
		if i > 0 && !b.Time.After(prev) {
			return fmt.Errorf("bar set %s: bar %d time %s not after previous %s",
				bs.Symbol, i, b.Time.Format(time.RFC3339), prev.Format(time.RFC3339))
		}
		prev = b.Time

		if b.High < b.Low {
			return fmt.Errorf("bar set %s: bar %d high %.4f below low %.4f", bs.Symbol, i, b.High, b.Low)
		}
		if b.Open > b.High || b.Open < b.Low {
			return fmt.Errorf("bar set %s: bar %d open %.4f outside [%.4f, %.4f]", bs.Symbol, i, b.Open, b.Low, b.High)
		}
		if b.Close > b.High || b.Close < b.Low {
			return fmt.Errorf("bar set %s: bar %d close %.4f outside [%.4f, %.4f]", bs.Symbol, i, b.Close, b.Low, b.High)
		}
	}
	return nil
}

// Closes returns the close prices as a slice, oldest first.
func (bs *BarSet) Closes() []float64 {
	out := make([]float64, len(bs.Bars))
	for i, b := range bs.Bars {
		out[i] = b.Close
	}
	return out
}
