package signal

import (
	"github.com/WinPooh32/fta"

	"github.com/rleiva87/candlesim/candle"
)

// MACDCross goes long when the MACD line crosses above its signal line and
// short on the opposite cross.
type MACDCross struct {
	PeriodFast int
	PeriodSlow int
	PeriodSig  int
}

func (m *MACDCross) Name() string {
	return "macd-cross"
}

func (m *MACDCross) Signal(window candle.History) (Signal, error) {
	n := window.Len()
	if n < m.PeriodSlow+1 {
		return none, nil
	}

	close := window.CloseData(1)

	macd, macdSignal := fta.MACD(close, float32(m.PeriodFast), float32(m.PeriodSlow), float32(m.PeriodSig), true)

	val, sig := macd.Data(), macdSignal.Data()
	cur, prev := n-1, n-2

	if val[cur] > sig[cur] && val[prev] <= sig[prev] {
		return Signal{Direction: Long, Confidence: 1, Reasons: []string{"MACD_BULLISH_CROSS"}}, nil
	}
	if val[cur] < sig[cur] && val[prev] >= sig[prev] {
		return Signal{Direction: Short, Confidence: 1, Reasons: []string{"MACD_BEARISH_CROSS"}}, nil
	}
	return none, nil
}
