// Package history reads and writes OHLCV candles as plain CSV rows:
// time,open,high,low,close,volume. Timestamps are unix milliseconds.
// Prices stay in exchange precision through the fixed-point type.
package history

import (
	"github.com/rleiva87/candlesim/platform"
)

const recordLen = 6

type Writer interface {
	Write(c platform.Candle) (err error)
}

type Reader interface {
	Read() (c platform.Candle, err error)
}
