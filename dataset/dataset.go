// Package dataset turns a candle history into a labeled feature matrix for
// offline classifier training, and defines the feature layout that the
// model signal source feeds back at inference time. Training and inference
// must agree on this layout, so it lives in one place.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/rleiva87/candlesim/candle"
	"github.com/rleiva87/candlesim/indicator"
	"github.com/rleiva87/candlesim/label"
)

// Columns is the feature layout, by index. The model signal source builds
// its input vector in exactly this order.
var Columns = []string{
	"rsi_14",
	"macd",
	"macd_signal",
	"bb_position",
	"volume_ratio",
	"momentum",
	"sma_ratio",
}

// Features holds all feature columns, aligned with the source history.
type Features struct {
	history  candle.History
	rsi      []float64
	macd     []float64
	macdSig  []float64
	bbPos    []float64
	volRatio []float64
	momentum []float64
	smaRatio []float64
}

// Compute derives every feature column for the given history.
func Compute(h candle.History) *Features {
	f := &Features{history: h}

	f.rsi = indicator.RSI(h.Close, 14)
	f.macd, f.macdSig = indicator.MACD(h.Close, 12, 26, 9)
	f.volRatio = indicator.VolumeRatio(h.Volume, 20)
	f.momentum = indicator.Momentum(h.Close, 5)

	_, upper, lower := indicator.Bollinger(h.Close, 20, 2)
	f.bbPos = make([]float64, h.Len())
	for i := range f.bbPos {
		width := upper[i] - lower[i]
		if math.IsNaN(width) || width <= 0 {
			f.bbPos[i] = math.NaN()
			continue
		}
		f.bbPos[i] = (h.Close[i] - lower[i]) / width
	}

	sma9 := indicator.SMA(h.Close, 9)
	sma21 := indicator.SMA(h.Close, 21)
	f.smaRatio = make([]float64, h.Len())
	for i := range f.smaRatio {
		if math.IsNaN(sma9[i]) || math.IsNaN(sma21[i]) || sma21[i] == 0 {
			f.smaRatio[i] = math.NaN()
			continue
		}
		f.smaRatio[i] = sma9[i]/sma21[i] - 1
	}

	return f
}

func (f *Features) Len() int {
	return f.history.Len()
}

// Row returns the feature vector for bar i in Columns order. ok is false
// while any input window is still warming up.
func (f *Features) Row(i int) (row []float64, ok bool) {
	row = []float64{
		f.rsi[i],
		f.macd[i],
		f.macdSig[i],
		f.bbPos[i],
		f.volRatio[i],
		f.momentum[i],
		f.smaRatio[i],
	}
	for _, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return row, false
		}
	}
	return row, true
}

// WriteCSV writes open_time, the feature columns and the target class for
// every bar that has both a complete feature row and a defined label.
// Returns the number of rows written.
func WriteCSV(w io.Writer, f *Features, classes []label.Class) (int, error) {
	if len(classes) != f.Len() {
		return 0, fmt.Errorf("dataset: %d classes for %d bars", len(classes), f.Len())
	}

	cw := csv.NewWriter(w)

	header := append([]string{"open_time"}, Columns...)
	header = append(header, "target")
	if err := cw.Write(header); err != nil {
		return 0, fmt.Errorf("dataset: write header: %w", err)
	}

	written := 0
	record := make([]string, 0, len(header))
	for i := 0; i < f.Len(); i++ {
		if classes[i] == label.Undefined {
			continue
		}
		row, ok := f.Row(i)
		if !ok {
			continue
		}

		record = record[:0]
		record = append(record, strconv.FormatInt(f.history.Time[i], 10))
		for _, v := range row {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		record = append(record, strconv.Itoa(int(classes[i])))

		if err := cw.Write(record); err != nil {
			return written, fmt.Errorf("dataset: write row %d: %w", i, err)
		}
		written++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return written, fmt.Errorf("dataset: flush: %w", err)
	}
	return written, nil
}
