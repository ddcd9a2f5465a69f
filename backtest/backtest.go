// Package backtest replays a candle history against a signal source and
// simulates a single-position account: at most one position open at any
// time, stop-loss/take-profit/opposing-signal/holding-limit exits in fixed
// priority, commission on both sides, one equity point per bar. The walk is
// strictly sequential; every step depends on the account state left by the
// previous one.
package backtest

import (
	"context"
	"log/slog"
	"math"

	"github.com/WinPooh32/series"

	"github.com/rleiva87/candlesim/candle"
	"github.com/rleiva87/candlesim/signal"
)

// Result is the complete outcome of one run: the closed-trade ledger in
// time order, and the mark-to-market equity curve with exactly one point
// per input bar.
type Result struct {
	Trades         []Trade
	Time           []int64
	Equity         []float64
	InitialCapital float64
	FinalEquity    float64
}

// EquitySeries returns the curve as a series for plotting and reports.
func (r Result) EquitySeries() series.Data {
	data := make([]float32, len(r.Equity))
	for i, v := range r.Equity {
		data[i] = float32(v)
	}
	return series.MakeData(1, r.Time, data)
}

type Runner struct {
	opt Options
}

func NewRunner(opt Options) (*Runner, error) {
	if err := opt.validate(); err != nil {
		return nil, err
	}
	return &Runner{opt: opt}, nil
}

// Run walks the history bar by bar. The history must be pre-sorted and
// validated input: a broken series aborts before the first bar. A failing
// signal source never aborts the run; the bar is treated as "no signal".
func (r *Runner) Run(ctx context.Context, src signal.Source, h candle.History) (Result, error) {
	if err := h.Validate(); err != nil {
		return Result{}, err
	}

	n := h.Len()
	res := Result{
		Trades:         []Trade{},
		Time:           h.Time,
		Equity:         make([]float64, 0, n),
		InitialCapital: r.opt.InitialCapital,
		FinalEquity:    r.opt.InitialCapital,
	}

	cash := r.opt.InitialCapital
	var pos *Position

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		sig := r.querySignal(src, h, i)

		if pos != nil {
			if price, reason, ok := r.exitCondition(pos, h, i, sig); ok {
				trade := r.close(pos, price, h.Time[i], reason)
				cash += trade.PnL
				res.Trades = append(res.Trades, trade)
				pos = nil
			}
		}

		if pos == nil && r.acceptsEntry(sig, cash) {
			pos = r.open(sig, h, i, cash)
			slog.Debug("position opened",
				"side", pos.Side.String(),
				"price", pos.EntryPrice,
				"quantity", pos.Quantity,
				"reasons", pos.Reasons,
			)
		}

		equity := cash
		if pos != nil {
			equity += pos.unrealized(h.Close[i])
		}
		res.Equity = append(res.Equity, equity)
	}

	// Survivorship: whatever is still open settles at the last close.
	if pos != nil {
		trade := r.close(pos, h.Close[n-1], h.Time[n-1], ExitEndOfData)
		cash += trade.PnL
		res.Trades = append(res.Trades, trade)
		res.Equity[n-1] = cash
	}

	res.FinalEquity = cash
	return res, nil
}

// querySignal consults the source and recovers every failure mode locally:
// an error or a malformed signal becomes "no signal for this bar".
func (r *Runner) querySignal(src signal.Source, h candle.History, i int) signal.Signal {
	sig, err := src.Signal(h.Slice(0, i+1))
	if err != nil {
		slog.Warn("signal source failed, bar skipped",
			"source", src.Name(),
			"bar", i,
			"time", h.Time[i],
			"err", err,
		)
		return signal.Signal{}
	}

	if sig.Direction != signal.Long && sig.Direction != signal.Short && sig.Direction != signal.Hold {
		slog.Warn("invalid signal direction, bar skipped", "source", src.Name(), "bar", i, "direction", int(sig.Direction))
		return signal.Signal{}
	}
	if math.IsNaN(sig.Confidence) || math.IsInf(sig.Confidence, 0) || sig.Confidence < 0 || sig.Confidence > 1 {
		slog.Warn("invalid signal confidence, bar skipped", "source", src.Name(), "bar", i, "confidence", sig.Confidence)
		return signal.Signal{}
	}

	return sig
}

// exitCondition checks the open position against bar i. Priority is fixed:
// stop-loss touch, take-profit touch, opposing signal, holding limit. The
// first satisfied condition wins; touches fill at the level price,
// signal and time exits fill at the bar close.
func (r *Runner) exitCondition(pos *Position, h candle.History, i int, sig signal.Signal) (price float64, reason ExitReason, ok bool) {
	if pos.Side == signal.Long {
		if h.Low[i] <= pos.StopLoss {
			return pos.StopLoss, ExitStopLoss, true
		}
		if h.High[i] >= pos.TakeProfit {
			return pos.TakeProfit, ExitTakeProfit, true
		}
	} else {
		if h.High[i] >= pos.StopLoss {
			return pos.StopLoss, ExitStopLoss, true
		}
		if h.Low[i] <= pos.TakeProfit {
			return pos.TakeProfit, ExitTakeProfit, true
		}
	}

	opposing := (pos.Side == signal.Long && sig.Direction == signal.Short) ||
		(pos.Side == signal.Short && sig.Direction == signal.Long)
	if opposing && sig.Confidence >= r.opt.MinConfidence {
		return h.Close[i], ExitSignal, true
	}

	if r.opt.MaxHoldingBars > 0 && i-pos.EntryBar >= r.opt.MaxHoldingBars {
		return h.Close[i], ExitTimeLimit, true
	}

	return 0, "", false
}

func (r *Runner) acceptsEntry(sig signal.Signal, cash float64) bool {
	if sig.Direction == signal.Hold {
		return false
	}
	if sig.Direction == signal.Short && !r.opt.AllowShort {
		return false
	}
	if sig.Confidence < r.opt.MinConfidence {
		return false
	}
	if cash <= 0 || cash < r.opt.MinTradableBalance {
		return false
	}
	return true
}

func (r *Runner) open(sig signal.Signal, h candle.History, i int, cash float64) *Position {
	price := h.Close[i]
	quantity := cash * r.opt.PositionFraction / price

	pos := &Position{
		Side:       sig.Direction,
		EntryTime:  h.Time[i],
		EntryBar:   i,
		EntryPrice: price,
		Quantity:   quantity,
		Reasons:    sig.Reasons,
	}
	if sig.Direction == signal.Long {
		pos.StopLoss = price * (1 - r.opt.StopLoss)
		pos.TakeProfit = price * (1 + r.opt.TakeProfit)
	} else {
		pos.StopLoss = price * (1 + r.opt.StopLoss)
		pos.TakeProfit = price * (1 - r.opt.TakeProfit)
	}
	return pos
}

func (r *Runner) close(pos *Position, price float64, ts int64, reason ExitReason) Trade {
	gross := pos.unrealized(price)
	entryNotional := pos.EntryPrice * pos.Quantity
	exitNotional := price * pos.Quantity
	commission := r.opt.CommissionRate * (entryNotional + exitNotional)
	net := gross - commission

	pnlPercent := 0.0
	if entryNotional != 0 {
		pnlPercent = net / entryNotional * 100
	}

	slog.Debug("position closed",
		"side", pos.Side.String(),
		"reason", string(reason),
		"entry", pos.EntryPrice,
		"exit", price,
		"pnl", net,
	)

	return Trade{
		Side:       pos.Side,
		EntryTime:  pos.EntryTime,
		ExitTime:   ts,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  price,
		Quantity:   pos.Quantity,
		PnL:        net,
		PnLPercent: pnlPercent,
		Commission: commission,
		ExitReason: reason,
		Reasons:    pos.Reasons,
	}
}
