package candle

import (
	"fmt"

	"github.com/rleiva87/candlesim/platform"
)

// Series accumulates candles for one symbol in exchange precision.
// Prices are kept as fixed-point until a History view is taken, so parsing
// and re-serializing a downloaded kline loses nothing. Append-only: bars are
// never mutated or reordered once recorded.
type Series struct {
	symbol  string
	candles []platform.Candle
}

func NewSeries(symbol string) *Series {
	return &Series{
		symbol:  symbol,
		candles: make([]platform.Candle, 0, 1024),
	}
}

// FromCandles builds a validated series from already-ordered candles.
func FromCandles(symbol string, candles []platform.Candle) (*Series, error) {
	s := NewSeries(symbol)
	for _, c := range candles {
		if err := s.Append(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Series) Symbol() string {
	return s.symbol
}

func (s *Series) Len() int {
	return len(s.candles)
}

func (s *Series) Candles() []platform.Candle {
	return s.candles
}

// Append adds one bar to the tail. The bar must be newer than the last one:
// duplicates and rewinds are a DataError, the caller decides whether to skip
// stale bars before appending.
func (s *Series) Append(c platform.Candle) error {
	i := len(s.candles)

	if i > 0 && c.Time <= s.candles[i-1].Time {
		return &DataError{Index: i, Reason: fmt.Sprintf("time %d not after previous %d", c.Time, s.candles[i-1].Time)}
	}

	s.candles = append(s.candles, c)
	return nil
}

// Last returns the newest bar, ok=false on an empty series.
func (s *Series) Last() (c platform.Candle, ok bool) {
	if len(s.candles) == 0 {
		return c, false
	}
	return s.candles[len(s.candles)-1], true
}

// History converts the series to its float64 view and checks the series
// invariants on the way out.
func (s *Series) History() (History, error) {
	h := MakeHistory(len(s.candles))

	for _, c := range s.candles {
		h.Time = append(h.Time, c.Time)
		h.Open = append(h.Open, c.Open.Float())
		h.High = append(h.High, c.High.Float())
		h.Low = append(h.Low, c.Low.Float())
		h.Close = append(h.Close, c.Close.Float())
		h.Volume = append(h.Volume, c.Volume.Float())
	}

	if err := h.Validate(); err != nil {
		return History{}, err
	}
	return h, nil
}
