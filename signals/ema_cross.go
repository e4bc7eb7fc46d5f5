package signals

import (
	"fmt"

	"github.com/niveshlab/nivesh/indicators"
	"github.com/niveshlab/nivesh/market"
)

// EMACross flags a bar when the fast EMA crosses above the slow EMA.
type EMACross struct {
	FastPeriod int
	SlowPeriod int
}

func NewEMACross(fast, slow int) *EMACross {
	return &EMACross{FastPeriod: fast, SlowPeriod: slow}
}

func (g *EMACross) Name() string {
	return fmt.Sprintf("ema-cross-%d-%d", g.FastPeriod, g.SlowPeriod)
}

func (g *EMACross) Generate(bs *market.BarSet) (Sequence, error) {
	if g.FastPeriod <= 0 || g.SlowPeriod <= g.FastPeriod {
		return nil, fmt.Errorf("ema-cross: need 0 < fast < slow, got fast=%d slow=%d", g.FastPeriod, g.SlowPeriod)
	}

	seq := make(Sequence, bs.Len())
	if bs.Len() < g.SlowPeriod+1 {
		// Not enough history for a single cross; all-false is still aligned.
		return seq, nil
	}

	closes := bs.Closes()
	fast, err := indicators.EMASeries(closes, g.FastPeriod)
	if err != nil {
		return nil, err
	}
	slow, err := indicators.EMASeries(closes, g.SlowPeriod)
	if err != nil {
		return nil, err
	}

	for i := g.SlowPeriod; i < bs.Len(); i++ {
		crossedUp := fast[i-1] <= slow[i-1] && fast[i] > slow[i]
		seq[i] = crossedUp
	}
	return seq, nil
}
