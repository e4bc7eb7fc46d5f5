package costs

import "math"

// SlippageParams model execution slippage as a fraction of notional.
//
// The fraction grows with the order's share of available liquidity and with
// the volatility index. Missing or NaN liquidity/volatility inputs fall back
// to worst-case assumptions: a stalled simulation is worse than a pessimistic
// fill.
type SlippageParams struct {
	BasePct float64 // slippage floor as a fraction of notional

	// ImpactScale multiplies the order-size-to-liquidity ratio; the ratio is
	// clamped to MaxImpactRatio before scaling.
	ImpactScale    float64
	MaxImpactRatio float64

	// VolPivot is the index level treated as "calm"; above it the multiplier
	// rises linearly at VolSlope per index point. WorstVolMult is used when
	// the index is missing.
	VolPivot     float64
	VolSlope     float64
	WorstVolMult float64
}

func DefaultSlippageParams() SlippageParams {
	return SlippageParams{
		BasePct:        0.0005, // 5 bps floor
		ImpactScale:    2.0,
		MaxImpactRatio: 1.0,
		VolPivot:       15.0,
		VolSlope:       0.05,
		WorstVolMult:   2.0,
	}
}

// Amount returns the slippage cost for the leg in account currency.
// The result is always >= 0: slippage only ever worsens the fill.
func (p SlippageParams) Amount(o Order) float64 {
	if o.Notional <= 0 || math.IsNaN(o.Notional) {
		return 0
	}

	ratio := p.MaxImpactRatio
	if o.Liquidity > 0 && !math.IsNaN(o.Liquidity) {
		ratio = o.Notional / o.Liquidity
		if ratio > p.MaxImpactRatio {
			ratio = p.MaxImpactRatio
		}
	}

	volMult := p.WorstVolMult
	if o.Volatility > 0 && !math.IsNaN(o.Volatility) {
		volMult = 1.0
		if o.Volatility > p.VolPivot {
			volMult += (o.Volatility - p.VolPivot) * p.VolSlope
		}
	}

	slip := o.Notional * p.BasePct * (1 + ratio*p.ImpactScale) * volMult
	if slip < 0 {
		return 0
	}
	return slip
}
