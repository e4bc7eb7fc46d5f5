// Package signals defines the entry-candidate sequence consumed by the
// backtest engine.
//
// The engine itself never generates signals; it consumes an ordered boolean
// sequence aligned 1:1 with the bar series. Generators here exist so the CLI
// can produce sequences from bare price data.
package signals

import (
	"fmt"

	"github.com/niveshlab/nivesh/market"
)

// Sequence marks entry candidates, one flag per bar.
type Sequence []bool

// Validate checks 1:1 alignment with a bar series. A misaligned sequence is
// a fatal input error: the run must not start.
func (s Sequence) Validate(bars int) error {
	if len(s) != bars {
		return fmt.Errorf("signals: sequence length %d does not match %d bars", len(s), bars)
	}
	return nil
}

// Count returns the number of true flags.
func (s Sequence) Count() int {
	n := 0
	for _, v := range s {
		if v {
			n++
		}
	}
	return n
}

// Generator produces a Sequence from a bar series.
type Generator interface {
	Name() string
	Generate(bs *market.BarSet) (Sequence, error)
}
