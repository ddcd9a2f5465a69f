package backtest

import (
	"errors"
	"fmt"
)

// ErrConfig is wrapped by every option validation failure. It is raised at
// construction time, before any bar is touched.
var ErrConfig = errors.New("backtest: invalid options")

type Options struct {
	// InitialCapital is the starting cash balance, in quote currency.
	InitialCapital float64

	// PositionFraction is the share of the cash balance committed per
	// entry, in (0, 1].
	PositionFraction float64

	// TakeProfit and StopLoss are fractional distances from the entry
	// price, e.g. 0.025 for 2.5%.
	TakeProfit float64
	StopLoss   float64

	// CommissionRate is charged on both the entry and the exit notional.
	CommissionRate float64

	// MinConfidence gates entries: signals below it are ignored.
	MinConfidence float64

	// MaxHoldingBars force-closes a position after this many bars.
	// Zero means no limit.
	MaxHoldingBars int

	// MinTradableBalance stops new entries once the cash balance falls
	// below it. Exits are always processed.
	MinTradableBalance float64

	// AllowShort permits short entries. Off by default: short signals
	// then only close open longs.
	AllowShort bool
}

func (opt Options) validate() error {
	if opt.InitialCapital <= 0 {
		return fmt.Errorf("%w: initial capital %v, must be > 0", ErrConfig, opt.InitialCapital)
	}
	if opt.PositionFraction <= 0 || opt.PositionFraction > 1 {
		return fmt.Errorf("%w: position fraction %v, must be in (0, 1]", ErrConfig, opt.PositionFraction)
	}
	if opt.TakeProfit <= 0 {
		return fmt.Errorf("%w: take profit ratio %v, must be > 0", ErrConfig, opt.TakeProfit)
	}
	if opt.StopLoss <= 0 {
		return fmt.Errorf("%w: stop loss ratio %v, must be > 0", ErrConfig, opt.StopLoss)
	}
	if opt.CommissionRate < 0 {
		return fmt.Errorf("%w: commission rate %v, must be >= 0", ErrConfig, opt.CommissionRate)
	}
	if opt.MinConfidence < 0 || opt.MinConfidence > 1 {
		return fmt.Errorf("%w: min confidence %v, must be in [0, 1]", ErrConfig, opt.MinConfidence)
	}
	if opt.MaxHoldingBars < 0 {
		return fmt.Errorf("%w: max holding bars %d, must be >= 0", ErrConfig, opt.MaxHoldingBars)
	}
	if opt.MinTradableBalance < 0 {
		return fmt.Errorf("%w: min tradable balance %v, must be >= 0", ErrConfig, opt.MinTradableBalance)
	}
	return nil
}
