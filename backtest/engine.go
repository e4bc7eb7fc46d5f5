// Package backtest runs the deterministic bar-by-bar simulation loop.
//
// Per bar, strictly in this order: open positions are marked to the bar's
// close, exits are evaluated (so capital freed by an exit is available to the
// same bar's entry decision), the bar's entry signal is sized and booked, and
// one equity sample is appended. Identical inputs always produce identical
// outputs: there is no wall clock and no randomness inside the loop.
package backtest

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/niveshlab/nivesh/costs"
	"github.com/niveshlab/nivesh/ledger"
	"github.com/niveshlab/nivesh/market"
	"github.com/niveshlab/nivesh/signals"
	"github.com/niveshlab/nivesh/sizing"
)

// ExitPriority decides the fill when a bar gaps through both the stop and
// the target. StopFirst is the conservative default.
type ExitPriority int8

const (
	StopFirst ExitPriority = iota
	TargetFirst
)

// Config controls one backtest run.
type Config struct {
	Symbol     string
	Instrument market.Instrument

	InitialCapital float64

	// StopLossPct/TargetPct place exit levels relative to the entry fill
	// (0.02 = 2% below / 0.04 = 4% above).
	StopLossPct float64
	TargetPct   float64

	// MaxHoldBars forces a close after this many bars in the position.
	// 0 disables the time exit.
	MaxHoldBars int

	// MaxOpenPositions caps simultaneously open positions; at capacity,
	// further signals are skipped regardless of quality.
	MaxOpenPositions int

	ExitPriority ExitPriority
	OrderType    costs.OrderType

	// VolatilityIndex is fed to the cost model's slippage component.
	// NaN or 0 makes the model assume worst case.
	VolatilityIndex float64

	// CloseEnd flattens remaining positions at the final bar's close.
	CloseEnd bool
}

func (c Config) validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("backtest: symbol is required")
	}
	if c.InitialCapital <= 0 {
		return fmt.Errorf("backtest: initial capital must be positive, got %.2f", c.InitialCapital)
	}
	if c.StopLossPct <= 0 || c.StopLossPct >= 1 {
		return fmt.Errorf("backtest: stop-loss pct must be in (0, 1), got %.4f", c.StopLossPct)
	}
	if c.TargetPct <= 0 {
		return fmt.Errorf("backtest: target pct must be positive, got %.4f", c.TargetPct)
	}
	if c.MaxOpenPositions < 1 {
		return fmt.Errorf("backtest: max open positions must be >= 1, got %d", c.MaxOpenPositions)
	}
	return nil
}

// Engine wires the sizer and cost model into the simulation loop. One Engine
// serves one run at a time; independent runs need independent Engines.
type Engine struct {
	cfg   Config
	sizer sizing.Config
	model costs.Model
	log   *zap.Logger
}

// New builds an engine. A nil cost model means zero-cost simulation (useful
// for isolating gross performance); a nil logger is silenced.
func New(cfg Config, sizer sizing.Config, model costs.Model, log *zap.Logger) *Engine {
	if model == nil {
		model = costs.Zero{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{cfg: cfg, sizer: sizer, model: model, log: log}
}

// Run executes the simulation over the bar series and its aligned signal
// sequence. Misaligned inputs fail before the first bar; accounting
// invariant violations abort mid-run.
func (e *Engine) Run(bs *market.BarSet, seq signals.Sequence) (*Result, error) {
	if err := e.cfg.validate(); err != nil {
		return nil, err
	}
	if bs == nil || bs.Len() == 0 {
		return nil, fmt.Errorf("backtest: empty bar series")
	}
	if err := seq.Validate(bs.Len()); err != nil {
		return nil, err
	}

	led := ledger.New(e.cfg.InitialCapital)
	stats := &sizing.Stats{}

	for i, bar := range bs.Bars {
		if err := e.evalExits(led, stats, i, bar); err != nil {
			return nil, err
		}
		if seq[i] {
			if err := e.evalEntry(led, stats, i, bar); err != nil {
				return nil, err
			}
		}
		led.Snapshot(bar.Time, bar.Close)
	}

	if e.cfg.CloseEnd {
		last := bs.Bars[bs.Len()-1]
		for _, p := range led.Positions() {
			if err := e.closePosition(led, stats, p, last, last.Close, ledger.ReasonEndOfData); err != nil {
				return nil, err
			}
		}
	}

	return newResult(e.cfg, bs, led), nil
}

// evalExits checks every open position against the bar, in entry order.
// Exactly one exit reason applies per position per bar.
func (e *Engine) evalExits(led *ledger.Ledger, stats *sizing.Stats, barIdx int, bar market.Bar) error {
	for _, p := range led.Positions() {
		price, reason, hit := e.checkExit(p, barIdx, bar)
		if !hit {
			continue
		}
		if err := e.closePosition(led, stats, p, bar, price, reason); err != nil {
			return err
		}
	}
	return nil
}

// checkExit evaluates stop/target/time triggers on the bar's OHLC.
// When the bar spans both levels the configured priority decides; the time
// exit only applies when neither level was touched.
func (e *Engine) checkExit(p *ledger.Position, barIdx int, bar market.Bar) (price float64, reason ledger.ExitReason, hit bool) {
	stopHit := p.Stop > 0 && bar.Low <= p.Stop
	targetHit := p.Target > 0 && bar.High >= p.Target

	switch {
	case stopHit && targetHit:
		if e.cfg.ExitPriority == TargetFirst {
			return p.Target, ledger.ReasonTarget, true
		}
		return p.Stop, ledger.ReasonStopLoss, true
	case stopHit:
		return p.Stop, ledger.ReasonStopLoss, true
	case targetHit:
		return p.Target, ledger.ReasonTarget, true
	}

	if e.cfg.MaxHoldBars > 0 && barIdx-p.EntryBar >= e.cfg.MaxHoldBars {
		return bar.Close, ledger.ReasonTimeExit, true
	}
	return 0, "", false
}

func (e *Engine) closePosition(led *ledger.Ledger, stats *sizing.Stats, p *ledger.Position, bar market.Bar, price float64, reason ledger.ExitReason) error {
	exitCost := e.model.Cost(costs.Order{
		Side:       costs.Sell,
		Notional:   float64(p.Quantity) * price,
		Instrument: e.cfg.Instrument,
		Type:       e.cfg.OrderType,
		Liquidity:  bar.Volume * bar.Close,
		Volatility: e.cfg.VolatilityIndex,
	})

	t, err := led.Close(p.ID, bar.Time, price, exitCost, reason)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	// The closed trade updates the rolling stats for the NEXT sizing
	// decision; it never influences its own size.
	stats.Record(t.ReturnPct)

	e.log.Debug("closed position",
		zap.String("position", t.PositionID),
		zap.String("reason", string(t.Reason)),
		zap.Float64("net_pnl", t.NetPnL))
	return nil
}

// evalEntry sizes and books the bar's entry candidate. Every failing
// condition is a silent skip (logged), never an error: unsizable signals are
// simply not traded.
func (e *Engine) evalEntry(led *ledger.Ledger, stats *sizing.Stats, barIdx int, bar market.Bar) error {
	if led.OpenCount() >= e.cfg.MaxOpenPositions {
		e.log.Debug("entry skipped", zap.Int("bar", barIdx), zap.String("cause", "at position ceiling"))
		return nil
	}

	equity := led.Equity(bar.Close)

	in := sizing.Inputs{
		CurrentCapital:   equity,
		InitialCapital:   led.InitialCash(),
		Instrument:       e.cfg.Instrument,
		OpenRiskFraction: led.OpenRiskFraction(),
	}.FromStats(stats)

	frac := e.sizer.Fraction(in)
	if frac <= 0 {
		e.log.Debug("entry skipped", zap.Int("bar", barIdx), zap.String("cause", "zero fraction"))
		return nil
	}

	fill := bar.Close
	qty := int64(math.Floor(equity * frac / fill))
	if qty < 1 {
		e.log.Debug("entry skipped", zap.Int("bar", barIdx), zap.String("cause", "fraction sizes below one unit"))
		return nil
	}

	notional := float64(qty) * fill
	entryCost := e.model.Cost(costs.Order{
		Side:       costs.Buy,
		Notional:   notional,
		Instrument: e.cfg.Instrument,
		Type:       e.cfg.OrderType,
		Liquidity:  bar.Volume * bar.Close,
		Volatility: e.cfg.VolatilityIndex,
	})

	if notional+entryCost > led.Cash() {
		e.log.Debug("entry skipped", zap.Int("bar", barIdx), zap.String("cause", "insufficient cash"),
			zap.Float64("needed", notional+entryCost), zap.Float64("cash", led.Cash()))
		return nil
	}

	_, err := led.Open(ledger.Position{
		Symbol:       e.cfg.Symbol,
		Quantity:     qty,
		EntryTime:    bar.Time,
		EntryPrice:   fill,
		EntryCost:    entryCost,
		EntryBar:     barIdx,
		Stop:         fill * (1 - e.cfg.StopLossPct),
		Target:       fill * (1 + e.cfg.TargetPct),
		RiskFraction: frac,
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ledger.ErrInsufficientCash), errors.Is(err, ledger.ErrBadQuantity):
		// Pre-checked above; if the ledger still refuses, skip the signal.
		e.log.Debug("entry skipped", zap.Int("bar", barIdx), zap.Error(err))
		return nil
	default:
		return fmt.Errorf("backtest: %w", err)
	}
}
