package candle

import (
	"fmt"
	"math"

	"github.com/WinPooh32/series"
)

// DataError reports a malformed candle series: out of order timestamps,
// duplicated bars or broken OHLC bounds. It is raised before any labeling
// or simulation starts, never recovered.
type DataError struct {
	Index  int
	Reason string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("candle: bad bar at index %d: %s", e.Index, e.Reason)
}

// History is a float64 view of an OHLCV series: one slice per column,
// aligned by index, sorted ascending by Time. It is the substrate every
// indicator, labeler and simulator reads.
type History struct {
	Time   []int64
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64
}

func MakeHistory(cap int) History {
	return History{
		Time:   make([]int64, 0, cap),
		Open:   make([]float64, 0, cap),
		High:   make([]float64, 0, cap),
		Low:    make([]float64, 0, cap),
		Close:  make([]float64, 0, cap),
		Volume: make([]float64, 0, cap),
	}
}

func (h History) Len() int {
	return len(h.Time)
}

func (h History) Slice(l, r int) History {
	return History{
		Time:   h.Time[l:r],
		Open:   h.Open[l:r],
		High:   h.High[l:r],
		Low:    h.Low[l:r],
		Close:  h.Close[l:r],
		Volume: h.Volume[l:r],
	}
}

// Validate checks the series invariants: strictly increasing timestamps,
// finite positive prices, low ≤ min(open,close) ≤ max(open,close) ≤ high
// and non-negative volume. Sorting is the loader's job; a violation here
// is reported, not fixed.
func (h History) Validate() error {
	n := h.Len()
	if len(h.Open) != n || len(h.High) != n || len(h.Low) != n || len(h.Close) != n || len(h.Volume) != n {
		return &DataError{Index: 0, Reason: "column lengths differ"}
	}

	for i := 0; i < n; i++ {
		if i > 0 && h.Time[i] <= h.Time[i-1] {
			return &DataError{Index: i, Reason: fmt.Sprintf("time %d not after previous %d", h.Time[i], h.Time[i-1])}
		}
		o, hi, lo, c := h.Open[i], h.High[i], h.Low[i], h.Close[i]
		for _, p := range [4]float64{o, hi, lo, c} {
			if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
				return &DataError{Index: i, Reason: fmt.Sprintf("non-positive or non-finite price %v", p)}
			}
		}
		if lo > math.Min(o, c) || hi < math.Max(o, c) {
			return &DataError{Index: i, Reason: fmt.Sprintf("OHLC bounds broken: o=%v h=%v l=%v c=%v", o, hi, lo, c)}
		}
		if h.Volume[i] < 0 {
			return &DataError{Index: i, Reason: fmt.Sprintf("negative volume %v", h.Volume[i])}
		}
	}

	return nil
}

// CloseData returns the close column as a series for indicator math.
func (h History) CloseData(freq int64) series.Data {
	return series.MakeData(freq, h.Time, toFloat32(h.Close))
}

// VolumeData returns the volume column as a series.
func (h History) VolumeData(freq int64) series.Data {
	return series.MakeData(freq, h.Time, toFloat32(h.Volume))
}

func toFloat32(src []float64) []float32 {
	dst := make([]float32, len(src))
	for i, v := range src {
		dst[i] = float32(v)
	}
	return dst
}
