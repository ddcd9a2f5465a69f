package signal

import (
	"math"

	"github.com/rleiva87/candlesim/candle"
	"github.com/rleiva87/candlesim/indicator"
)

// Composite scores the newest bar by a weighted vote over several
// indicators: moving-average crosses, RSI bands, MACD crosses, Bollinger
// touches, volume confirmation and momentum. It only acts once the
// absolute score clears ActThreshold, and the clipped score becomes the
// confidence.
type Composite struct {
	// ActThreshold is the minimum absolute vote score to emit a signal.
	// Zero means the default of 0.6.
	ActThreshold float64
}

const (
	weightCross    = 0.3
	weightRSIHard  = 0.25
	weightRSISoft  = 0.15
	weightMACD     = 0.2
	weightBB       = 0.15
	weightVolume   = 0.1
	weightMomentum = 0.1
)

func (c *Composite) Name() string {
	return "composite"
}

func (c *Composite) threshold() float64 {
	if c.ActThreshold > 0 {
		return c.ActThreshold
	}
	return 0.6
}

func (c *Composite) Signal(window candle.History) (Signal, error) {
	n := window.Len()
	// The slowest input is the 21-bar SMA plus one bar for cross detection.
	if n < 30 {
		return none, nil
	}

	sma9 := indicator.SMA(window.Close, 9)
	sma21 := indicator.SMA(window.Close, 21)
	rsi := indicator.RSI(window.Close, 14)
	macd, macdSignal := indicator.MACD(window.Close, 12, 26, 9)
	_, bbUpper, bbLower := indicator.Bollinger(window.Close, 20, 2)
	volumeRatio := indicator.VolumeRatio(window.Volume, 20)
	momentum := indicator.Momentum(window.Close, 5)

	cur, prev := n-1, n-2

	var strength float64
	var buyReasons, sellReasons []string

	if defined(sma9[cur], sma21[cur], sma9[prev], sma21[prev]) {
		if sma9[cur] > sma21[cur] && sma9[prev] <= sma21[prev] {
			strength += weightCross
			buyReasons = append(buyReasons, "GOLDEN_CROSS")
		}
		if sma9[cur] < sma21[cur] && sma9[prev] >= sma21[prev] {
			strength -= weightCross
			sellReasons = append(sellReasons, "DEATH_CROSS")
		}
	}

	if defined(rsi[cur]) {
		switch {
		case rsi[cur] < 25:
			strength += weightRSIHard
			buyReasons = append(buyReasons, "RSI_OVERSOLD_EXTREME")
		case rsi[cur] < 30:
			strength += weightRSISoft
			buyReasons = append(buyReasons, "RSI_OVERSOLD")
		case rsi[cur] > 75:
			strength -= weightRSIHard
			sellReasons = append(sellReasons, "RSI_OVERBOUGHT_EXTREME")
		case rsi[cur] > 70:
			strength -= weightRSISoft
			sellReasons = append(sellReasons, "RSI_OVERBOUGHT")
		}
	}

	if defined(macd[cur], macdSignal[cur], macd[prev], macdSignal[prev]) {
		if macd[cur] > macdSignal[cur] && macd[prev] <= macdSignal[prev] {
			strength += weightMACD
			buyReasons = append(buyReasons, "MACD_BULLISH_CROSS")
		}
		if macd[cur] < macdSignal[cur] && macd[prev] >= macdSignal[prev] {
			strength -= weightMACD
			sellReasons = append(sellReasons, "MACD_BEARISH_CROSS")
		}
	}

	if defined(bbUpper[cur], bbLower[cur]) {
		if window.Close[cur] <= bbLower[cur] {
			strength += weightBB
			buyReasons = append(buyReasons, "BB_LOWER_TOUCH")
		}
		if window.Close[cur] >= bbUpper[cur] {
			strength -= weightBB
			sellReasons = append(sellReasons, "BB_UPPER_TOUCH")
		}
	}

	// Volume only confirms a direction picked by the other votes.
	if defined(volumeRatio[cur]) && volumeRatio[cur] > 1.5 {
		if strength > 0 {
			strength += weightVolume
			buyReasons = append(buyReasons, "HIGH_VOLUME_CONFIRM")
		} else if strength < 0 {
			strength -= weightVolume
			sellReasons = append(sellReasons, "HIGH_VOLUME_CONFIRM")
		}
	}

	if defined(momentum[cur]) {
		if momentum[cur] > 2 {
			strength += weightMomentum
			buyReasons = append(buyReasons, "STRONG_MOMENTUM_UP")
		} else if momentum[cur] < -2 {
			strength -= weightMomentum
			sellReasons = append(sellReasons, "STRONG_MOMENTUM_DOWN")
		}
	}

	limit := c.threshold()
	switch {
	case strength > limit:
		return Signal{Direction: Long, Confidence: math.Min(strength, 1), Reasons: buyReasons}, nil
	case strength < -limit:
		return Signal{Direction: Short, Confidence: math.Min(-strength, 1), Reasons: sellReasons}, nil
	default:
		return none, nil
	}
}

func defined(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}
