// Package indicator holds the rolling-window computations consumed by the
// signal sources: moving averages, RSI, MACD, Bollinger Bands, volume ratio
// and momentum. Warm-up positions, where the window is not yet full, are NaN
// so that a consumer can tell "not yet defined" from a real zero.
package indicator

import (
	"math"
)

// SMA is the simple moving average over period samples.
func SMA(values []float64, period int) []float64 {
	out := nans(len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA is the exponential moving average with smoothing 2/(period+1),
// seeded from the first value.
func EMA(values []float64, period int) []float64 {
	out := nans(len(values))
	if period <= 0 || len(values) == 0 {
		return out
	}

	alpha := 2.0 / float64(period+1)
	ema := values[0]
	out[0] = ema
	for i := 1; i < len(values); i++ {
		ema = alpha*values[i] + (1-alpha)*ema
		out[i] = ema
	}
	return out
}

// RSI is the relative strength index with Wilder smoothing of average
// gains and losses. A flat series with no losses reads 100.
func RSI(values []float64, period int) []float64 {
	out := nans(len(values))
	if period <= 0 || len(values) < period+1 {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// MACD returns the MACD line ema(fast)-ema(slow) and its signal line.
func MACD(values []float64, fast, slow, signal int) (macd, macdSignal []float64) {
	emaFast := EMA(values, fast)
	emaSlow := EMA(values, slow)

	macd = make([]float64, len(values))
	for i := range values {
		macd[i] = emaFast[i] - emaSlow[i]
	}
	macdSignal = EMA(macd, signal)
	return macd, macdSignal
}

// Bollinger returns the middle band (SMA), and upper/lower bands at
// stdDev standard deviations around it.
func Bollinger(values []float64, period int, stdDev float64) (middle, upper, lower []float64) {
	middle = SMA(values, period)
	upper = nans(len(values))
	lower = nans(len(values))

	for i := period - 1; i < len(values); i++ {
		mean := middle[i]
		var variance float64
		for j := i - period + 1; j <= i; j++ {
			d := values[j] - mean
			variance += d * d
		}
		sd := math.Sqrt(variance / float64(period))
		upper[i] = mean + stdDev*sd
		lower[i] = mean - stdDev*sd
	}
	return middle, upper, lower
}

// VolumeRatio is volume divided by its period-SMA; values above 1 mean
// the bar traded heavier than recent average.
func VolumeRatio(volume []float64, period int) []float64 {
	sma := SMA(volume, period)
	out := nans(len(volume))
	for i := range volume {
		if !math.IsNaN(sma[i]) && sma[i] > 0 {
			out[i] = volume[i] / sma[i]
		}
	}
	return out
}

// Momentum is the percentage change over period bars.
func Momentum(values []float64, period int) []float64 {
	out := nans(len(values))
	for i := period; i < len(values); i++ {
		if values[i-period] != 0 {
			out[i] = (values[i] - values[i-period]) / values[i-period] * 100
		}
	}
	return out
}

func nans(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
