// Package metrics reduces a finished run to summary statistics. Everything
// here is a pure function of the result; nothing mutates it.
package metrics

import (
	"math"

	"github.com/rleiva87/candlesim/backtest"
)

// Summary holds the headline numbers of one run.
type Summary struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64 // percent of closed trades with positive net PnL
	NetPnL        float64
	NetReturn     float64 // percent over initial capital
	AvgWin        float64 // mean net PnL of winning trades
	AvgLoss       float64 // mean net PnL of losing trades, negative
	ProfitFactor  float64 // gross wins over gross losses, +Inf with no losses
	Sharpe        float64 // annualized mean/std of per-bar equity returns
	MaxDrawdown   float64 // worst peak-to-trough equity drop, percent

	ExitCounts map[backtest.ExitReason]int
}

// Summarize computes the summary of a run. periodsPerYear scales the
// Sharpe ratio to the bar interval, e.g. 525600 for minute bars or 365
// for daily bars; zero disables annualization.
func Summarize(res backtest.Result, periodsPerYear float64) Summary {
	s := Summary{
		ExitCounts: make(map[backtest.ExitReason]int),
	}

	var grossWin, grossLoss float64
	for _, trade := range res.Trades {
		s.TotalTrades++
		s.ExitCounts[trade.ExitReason]++
		s.NetPnL += trade.PnL
		if trade.PnL > 0 {
			s.WinningTrades++
			grossWin += trade.PnL
		} else {
			s.LosingTrades++
			grossLoss += -trade.PnL
		}
	}

	if s.TotalTrades > 0 {
		s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades) * 100
	}
	if s.WinningTrades > 0 {
		s.AvgWin = grossWin / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AvgLoss = -grossLoss / float64(s.LosingTrades)
	}
	if grossLoss > 0 {
		s.ProfitFactor = grossWin / grossLoss
	} else if grossWin > 0 {
		s.ProfitFactor = math.Inf(1)
	}
	if res.InitialCapital > 0 {
		s.NetReturn = (res.FinalEquity - res.InitialCapital) / res.InitialCapital * 100
	}

	s.Sharpe = sharpe(res.Equity, periodsPerYear)
	s.MaxDrawdown = maxDrawdown(res.Equity)
	return s
}

// sharpe is mean over std of simple per-point equity returns, scaled by
// sqrt(periodsPerYear). A flat or too-short curve yields zero.
func sharpe(equity []float64, periodsPerYear float64) float64 {
	if len(equity) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1] == 0 {
			continue
		}
		returns = append(returns, equity[i]/equity[i-1]-1)
	}
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))
	if variance == 0 {
		return 0
	}

	ratio := mean / math.Sqrt(variance)
	if periodsPerYear > 0 {
		ratio *= math.Sqrt(periodsPerYear)
	}
	return ratio
}

// maxDrawdown returns the largest percentage drop from a running equity
// peak. Zero for monotonically rising or empty curves.
func maxDrawdown(equity []float64) float64 {
	worst := 0.0
	peak := math.Inf(-1)
	for _, v := range equity {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		dd := (peak - v) / peak * 100
		if dd > worst {
			worst = dd
		}
	}
	return worst
}
