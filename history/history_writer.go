package history

import (
	"fmt"
	"io"

	"github.com/rleiva87/candlesim/candle"
	"github.com/rleiva87/candlesim/platform"
)

type HistoryWriter struct {
	w io.Writer
}

func NewWriter(w io.Writer) (*HistoryWriter, error) {
	return &HistoryWriter{
		w: w,
	}, nil
}

func (hw *HistoryWriter) Write(c platform.Candle) (err error) {
	_, err = fmt.Fprintf(hw.w, "%d,%s,%s,%s,%s,%s\n", c.Time, c.Open, c.High, c.Low, c.Close, c.Volume)
	return err
}

// WriteSeries dumps a whole series, one row per candle.
func WriteSeries(w io.Writer, s *candle.Series) error {
	hw, err := NewWriter(w)
	if err != nil {
		return err
	}
	for _, c := range s.Candles() {
		if err := hw.Write(c); err != nil {
			return fmt.Errorf("history: write candle at %d: %w", c.Time, err)
		}
	}
	return nil
}
