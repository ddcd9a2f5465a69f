package metrics

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/rleiva87/candlesim/backtest"
)

// WriteSummary renders the headline run statistics as a two column table.
func WriteSummary(w io.Writer, res backtest.Result, s Summary) {
	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Value")

	pf := fmt.Sprintf("%.2f", s.ProfitFactor)
	if math.IsInf(s.ProfitFactor, 1) {
		pf = "INF"
	}

	table.Append("Initial capital", fmt.Sprintf("$%.2f", res.InitialCapital))
	table.Append("Final equity", fmt.Sprintf("$%.2f", res.FinalEquity))
	table.Append("Net PnL", fmt.Sprintf("$%.2f", s.NetPnL))
	table.Append("Net return", fmt.Sprintf("%+.2f%%", s.NetReturn))
	table.Append("Trades", fmt.Sprintf("%d (%d W / %d L)", s.TotalTrades, s.WinningTrades, s.LosingTrades))
	table.Append("Win rate", fmt.Sprintf("%.1f%%", s.WinRate))
	table.Append("Avg win", fmt.Sprintf("$%.2f", s.AvgWin))
	table.Append("Avg loss", fmt.Sprintf("$%.2f", s.AvgLoss))
	table.Append("Profit factor", pf)
	table.Append("Sharpe", fmt.Sprintf("%.2f", s.Sharpe))
	table.Append("Max drawdown", fmt.Sprintf("%.2f%%", s.MaxDrawdown))

	table.Render()

	if len(s.ExitCounts) > 0 {
		fmt.Fprint(w, "  exits:")
		for _, reason := range []backtest.ExitReason{
			backtest.ExitSignal,
			backtest.ExitStopLoss,
			backtest.ExitTakeProfit,
			backtest.ExitTimeLimit,
			backtest.ExitEndOfData,
		} {
			if n := s.ExitCounts[reason]; n > 0 {
				fmt.Fprintf(w, " %s:%d", reason, n)
			}
		}
		fmt.Fprintln(w)
	}
}

// WriteTrades renders the closed-trade ledger. Timestamps are epoch
// milliseconds on the wire and printed as UTC.
func WriteTrades(w io.Writer, trades []backtest.Trade) {
	if len(trades) == 0 {
		fmt.Fprintln(w, "  no trades")
		return
	}

	table := tablewriter.NewWriter(w)
	table.Header("#", "Side", "Entry", "Exit", "Entry$", "Exit$", "Qty", "PnL", "PnL%", "Reason")

	for i, t := range trades {
		table.Append(
			fmt.Sprintf("%d", i+1),
			t.Side.String(),
			formatMillis(t.EntryTime),
			formatMillis(t.ExitTime),
			fmt.Sprintf("%.4f", t.EntryPrice),
			fmt.Sprintf("%.4f", t.ExitPrice),
			fmt.Sprintf("%.6f", t.Quantity),
			fmt.Sprintf("%+.2f", t.PnL),
			fmt.Sprintf("%+.2f%%", t.PnLPercent),
			string(t.ExitReason),
		)
	}

	table.Render()
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04")
}
