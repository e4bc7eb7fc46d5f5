package costs

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/niveshlab/nivesh/market"
)

// Schedule implements Model for the Indian cash-equity and F&O fee stack.
//
// Composition per leg:
//   - brokerage: delivery legs pay min(flat, pct*notional); intraday legs pay
//     pct*notional capped at the flat amount
//   - STT: sell legs only (asymmetric by design)
//   - exchange transaction charge and SEBI turnover fee: both legs
//   - stamp duty: buy legs only
//   - GST on the service charges (brokerage + exchange + SEBI)
//   - slippage: see slippage.go
//
// Fee legs are computed with decimal arithmetic so the schedule itself never
// contributes float drift; the sum converts to float64 at the boundary.
type Schedule struct {
	FlatBrokerage decimal.Decimal
	BrokeragePct  decimal.Decimal

	STTEquityPct decimal.Decimal // sell leg, cash equity
	STTFNOPct    decimal.Decimal // sell leg, derivatives

	ExchangeEquityPct decimal.Decimal
	ExchangeFNOPct    decimal.Decimal
	SEBIPct           decimal.Decimal

	StampEquityPct decimal.Decimal // buy leg
	StampFNOPct    decimal.Decimal // buy leg

	GSTPct decimal.Decimal

	Slippage SlippageParams
}

// NewSchedule returns the schedule with standard NSE discount-broker rates.
func NewSchedule() *Schedule {
	return &Schedule{
		FlatBrokerage: decimal.NewFromInt(20),
		BrokeragePct:  decimal.NewFromFloat(0.0003), // 0.03%

		STTEquityPct: decimal.NewFromFloat(0.001),    // 0.1% on sell
		STTFNOPct:    decimal.NewFromFloat(0.000625), // 0.0625% on sell

		ExchangeEquityPct: decimal.NewFromFloat(0.0000297),
		ExchangeFNOPct:    decimal.NewFromFloat(0.0000495),
		SEBIPct:           decimal.NewFromFloat(0.000001),

		StampEquityPct: decimal.NewFromFloat(0.00015),
		StampFNOPct:    decimal.NewFromFloat(0.00002),

		GSTPct: decimal.NewFromFloat(0.18),

		Slippage: DefaultSlippageParams(),
	}
}

// Cost prices one leg: fees plus slippage, in account currency.
func (s *Schedule) Cost(o Order) float64 {
	if o.Notional <= 0 || math.IsNaN(o.Notional) {
		return 0
	}

	notional := decimal.NewFromFloat(o.Notional)

	brokerage := s.brokerage(notional, o.Type)
	exchange := s.exchangePct(o.Instrument).Mul(notional)
	sebi := s.SEBIPct.Mul(notional)

	total := brokerage.Add(exchange).Add(sebi)

	// GST applies to the service charges only.
	total = total.Add(total.Mul(s.GSTPct))

	if o.Side == Sell {
		total = total.Add(s.sttPct(o.Instrument).Mul(notional))
	} else {
		total = total.Add(s.stampPct(o.Instrument).Mul(notional))
	}

	fees, _ := total.Float64()
	return fees + s.Slippage.Amount(o)
}

func (s *Schedule) brokerage(notional decimal.Decimal, typ OrderType) decimal.Decimal {
	pct := s.BrokeragePct.Mul(notional)
	switch typ {
	case Delivery:
		// Lesser of flat fee or percentage.
		if s.FlatBrokerage.LessThan(pct) {
			return s.FlatBrokerage
		}
		return pct
	default:
		// Intraday: percentage capped at the flat amount.
		if pct.GreaterThan(s.FlatBrokerage) {
			return s.FlatBrokerage
		}
		return pct
	}
}

func (s *Schedule) sttPct(i market.Instrument) decimal.Decimal {
	if i == market.FNO {
		return s.STTFNOPct
	}
	return s.STTEquityPct
}

func (s *Schedule) exchangePct(i market.Instrument) decimal.Decimal {
	if i == market.FNO {
		return s.ExchangeFNOPct
	}
	return s.ExchangeEquityPct
}

func (s *Schedule) stampPct(i market.Instrument) decimal.Decimal {
	if i == market.FNO {
		return s.StampFNOPct
	}
	return s.StampEquityPct
}
