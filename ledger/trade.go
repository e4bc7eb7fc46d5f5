package ledger

import "time"

// ExitReason labels why a position was closed.
type ExitReason string

const (
	ReasonStopLoss  ExitReason = "stop-loss"
	ReasonTarget    ExitReason = "target"
	ReasonTimeExit  ExitReason = "time-exit"
	ReasonEndOfData ExitReason = "end-of-data"
)

// Trade is one completed round trip. Trades are created by Ledger.Close and
// are immutable afterwards.
type Trade struct {
	PositionID string
	Symbol     string
	Quantity   int64

	EntryTime  time.Time
	EntryPrice float64
	ExitTime   time.Time
	ExitPrice  float64

	GrossPnL float64 // price move * quantity, before costs
	Costs    float64 // entry + exit transaction costs
	NetPnL   float64
	// ReturnPct is NetPnL over entry notional, as a fraction (0.02 = 2%).
	ReturnPct float64

	Reason ExitReason
}
