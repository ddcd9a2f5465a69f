package signal

import (
	"math"

	"github.com/rleiva87/candlesim/candle"
	"github.com/rleiva87/candlesim/indicator"
)

// SMACross fires on the bar where the fast moving average crosses the slow
// one: upward cross goes long, downward cross goes short.
type SMACross struct {
	Fast int
	Slow int
}

func (s *SMACross) Name() string {
	return "sma-cross"
}

func (s *SMACross) Signal(window candle.History) (Signal, error) {
	n := window.Len()
	if n < s.Slow+1 {
		return none, nil
	}

	fast := indicator.SMA(window.Close, s.Fast)
	slow := indicator.SMA(window.Close, s.Slow)

	cur, prev := n-1, n-2
	if math.IsNaN(fast[prev]) || math.IsNaN(slow[prev]) {
		return none, nil
	}

	if fast[cur] > slow[cur] && fast[prev] <= slow[prev] {
		return Signal{Direction: Long, Confidence: 1, Reasons: []string{"SMA_CROSS_UP"}}, nil
	}
	if fast[cur] < slow[cur] && fast[prev] >= slow[prev] {
		return Signal{Direction: Short, Confidence: 1, Reasons: []string{"SMA_CROSS_DOWN"}}, nil
	}
	return none, nil
}
