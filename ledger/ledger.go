// Package ledger owns the mutable state of one backtest run: cash, open
// positions, closed trades and the equity curve.
//
// A Ledger is exclusively owned by its run; independent runs get independent
// ledgers, so no locking is needed.
package ledger

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInsufficientCash rejects an entry whose outlay exceeds available
	// cash. Entries are atomic: rejected, never partially filled.
	ErrInsufficientCash = errors.New("ledger: insufficient cash")

	// ErrNegativeCash signals a broken accounting invariant. This is a logic
	// defect, not a market condition; callers must abort the run.
	ErrNegativeCash = errors.New("ledger: cash went negative")

	ErrBadQuantity = errors.New("ledger: quantity must be >= 1")
)

// EquityPoint is one sample of total portfolio value.
type EquityPoint struct {
	Time   time.Time
	Equity float64
}

// Ledger tracks cash, open positions and realized trades for a single run.
type Ledger struct {
	initialCash float64
	cash        float64

	positions map[string]*Position
	order     []string // position IDs in entry order, for deterministic iteration
	bySymbol  map[string][]string

	trades []Trade
	equity []EquityPoint

	nextPos int
}

func New(initialCash float64) *Ledger {
	return &Ledger{
		initialCash: initialCash,
		cash:        initialCash,
		positions:   make(map[string]*Position),
		bySymbol:    make(map[string][]string),
	}
}

func (l *Ledger) Cash() float64        { return l.cash }
func (l *Ledger) InitialCash() float64 { return l.initialCash }
func (l *Ledger) OpenCount() int       { return len(l.order) }

// Positions returns open positions in entry order.
func (l *Ledger) Positions() []*Position {
	out := make([]*Position, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.positions[id])
	}
	return out
}

// PositionsBySymbol returns open positions for one symbol, entry order.
func (l *Ledger) PositionsBySymbol(symbol string) []*Position {
	ids := l.bySymbol[symbol]
	out := make([]*Position, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.positions[id])
	}
	return out
}

// OpenRiskFraction sums the committed capital fractions of open positions.
func (l *Ledger) OpenRiskFraction() float64 {
	var sum float64
	for _, id := range l.order {
		sum += l.positions[id].RiskFraction
	}
	return sum
}

// Open books a new position atomically: the full outlay (notional plus entry
// cost) is debited from cash or the entry is rejected. The position's ID is
// assigned here and returned.
func (l *Ledger) Open(p Position) (string, error) {
	if p.Quantity < 1 {
		return "", ErrBadQuantity
	}

	outlay := p.Notional() + p.EntryCost
	if outlay > l.cash {
		return "", fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientCash, outlay, l.cash)
	}

	l.nextPos++
	p.ID = fmt.Sprintf("P-%06d", l.nextPos)

	l.cash -= outlay
	if l.cash < 0 {
		return "", fmt.Errorf("%w after entry %s", ErrNegativeCash, p.ID)
	}

	pos := p
	l.positions[pos.ID] = &pos
	l.order = append(l.order, pos.ID)
	l.bySymbol[pos.Symbol] = append(l.bySymbol[pos.Symbol], pos.ID)

	return pos.ID, nil
}

// Close realizes a position: proceeds net of exit cost are credited to cash
// and an immutable Trade is appended. A position can be closed exactly once.
func (l *Ledger) Close(id string, exitTime time.Time, exitPrice, exitCost float64, reason ExitReason) (Trade, error) {
	p, ok := l.positions[id]
	if !ok {
		return Trade{}, fmt.Errorf("ledger: close: position %q not found", id)
	}

	proceeds := p.MarkValue(exitPrice) - exitCost
	l.cash += proceeds
	if l.cash < 0 {
		return Trade{}, fmt.Errorf("%w after exit of %s", ErrNegativeCash, id)
	}

	gross := (exitPrice - p.EntryPrice) * float64(p.Quantity)
	net := gross - p.EntryCost - exitCost

	var retPct float64
	if n := p.Notional(); n > 0 {
		retPct = net / n
	}

	t := Trade{
		PositionID: p.ID,
		Symbol:     p.Symbol,
		Quantity:   p.Quantity,
		EntryTime:  p.EntryTime,
		EntryPrice: p.EntryPrice,
		ExitTime:   exitTime,
		ExitPrice:  exitPrice,
		GrossPnL:   gross,
		Costs:      p.EntryCost + exitCost,
		NetPnL:     net,
		ReturnPct:  retPct,
		Reason:     reason,
	}
	l.trades = append(l.trades, t)

	l.removePosition(id, p.Symbol)
	return t, nil
}

func (l *Ledger) removePosition(id, symbol string) {
	delete(l.positions, id)
	for i, v := range l.order {
		if v == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	ids := l.bySymbol[symbol]
	for i, v := range ids {
		if v == id {
			l.bySymbol[symbol] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(l.bySymbol[symbol]) == 0 {
		delete(l.bySymbol, symbol)
	}
}

// MarkToMarket values all open positions at the given price.
// Runs are single-instrument, so one mark price covers every position.
func (l *Ledger) MarkToMarket(price float64) float64 {
	var v float64
	for _, id := range l.order {
		v += l.positions[id].MarkValue(price)
	}
	return v
}

// Equity is cash plus mark-to-market value of open positions.
func (l *Ledger) Equity(price float64) float64 {
	return l.cash + l.MarkToMarket(price)
}

// Snapshot appends one equity sample and returns it.
func (l *Ledger) Snapshot(t time.Time, price float64) EquityPoint {
	ep := EquityPoint{Time: t, Equity: l.Equity(price)}
	l.equity = append(l.equity, ep)
	return ep
}

// Trades returns closed trades in close order. The slice is the ledger's own;
// callers must not mutate it.
func (l *Ledger) Trades() []Trade { return l.trades }

// EquityCurve returns the appended equity samples.
func (l *Ledger) EquityCurve() []EquityPoint { return l.equity }
