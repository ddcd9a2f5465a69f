package backtest

import (
	"github.com/rleiva87/candlesim/signal"
)

type ExitReason string

const (
	ExitSignal     ExitReason = "signal"
	ExitStopLoss   ExitReason = "stop_loss"
	ExitTakeProfit ExitReason = "take_profit"
	ExitTimeLimit  ExitReason = "time_limit"
	ExitEndOfData  ExitReason = "end_of_data"
)

// Position is the single open position of a run. It only exists between an
// accepted entry signal and the first satisfied exit condition.
type Position struct {
	Side       signal.Direction
	EntryTime  int64
	EntryBar   int
	EntryPrice float64
	Quantity   float64
	StopLoss   float64
	TakeProfit float64
	Reasons    []string
}

// unrealized marks the position to the given price, before commission.
func (p *Position) unrealized(price float64) float64 {
	pnl := (price - p.EntryPrice) * p.Quantity
	if p.Side == signal.Short {
		pnl = -pnl
	}
	return pnl
}

// Trade is the immutable record of a closed position.
type Trade struct {
	Side       signal.Direction
	EntryTime  int64
	ExitTime   int64
	EntryPrice float64
	ExitPrice  float64
	Quantity   float64
	PnL        float64 // net of commission
	PnLPercent float64 // net PnL over entry notional
	Commission float64
	ExitReason ExitReason
	Reasons    []string
}
