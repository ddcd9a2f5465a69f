package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rleiva87/candlesim/candle"
	"github.com/rleiva87/candlesim/label"
)

func historyFromCloses(closes []float64) candle.History {
	h := candle.MakeHistory(len(closes))
	for i, c := range closes {
		h.Time = append(h.Time, int64(i+1)*60000)
		h.Open = append(h.Open, c)
		h.High = append(h.High, c+0.5)
		h.Low = append(h.Low, c-0.5)
		h.Close = append(h.Close, c)
		h.Volume = append(h.Volume, 10)
	}
	return h
}

func TestSMACross_Long(t *testing.T) {
	// Fast average below slow for the warm-up, then a sharp rally pushes
	// the fast average through the slow one.
	closes := make([]float64, 0, 16)
	for i := 0; i < 12; i++ {
		closes = append(closes, 100-float64(i)*0.1)
	}
	closes = append(closes, 101, 103, 106, 110)

	src := &SMACross{Fast: 3, Slow: 9}

	h := historyFromCloses(closes)
	var fired Signal
	for i := src.Slow + 1; i <= h.Len(); i++ {
		sig, err := src.Signal(h.Slice(0, i))
		require.NoError(t, err)
		if sig.Direction != Hold {
			fired = sig
		}
	}

	assert.Equal(t, Long, fired.Direction)
	assert.Contains(t, fired.Reasons, "SMA_CROSS_UP")
}

func TestSMACross_ShortWindowHolds(t *testing.T) {
	src := &SMACross{Fast: 3, Slow: 9}
	sig, err := src.Signal(historyFromCloses([]float64{100, 101}))
	require.NoError(t, err)
	assert.Equal(t, Hold, sig.Direction)
}

func TestReplay(t *testing.T) {
	classes := []label.Class{label.Flat, label.Up, label.Down, label.Undefined}
	src := &Replay{Classes: classes, Confidence: 0.9}

	h := historyFromCloses([]float64{100, 100, 100, 100})

	sig, err := src.Signal(h.Slice(0, 1))
	require.NoError(t, err)
	assert.Equal(t, Hold, sig.Direction)

	sig, err = src.Signal(h.Slice(0, 2))
	require.NoError(t, err)
	assert.Equal(t, Long, sig.Direction)
	assert.InDelta(t, 0.9, sig.Confidence, 1e-9)

	sig, err = src.Signal(h.Slice(0, 3))
	require.NoError(t, err)
	assert.Equal(t, Short, sig.Direction)

	// Undefined class means stay out, not an error.
	sig, err = src.Signal(h.Slice(0, 4))
	require.NoError(t, err)
	assert.Equal(t, Hold, sig.Direction)
}

func TestReplay_OutOfRange(t *testing.T) {
	src := &Replay{Classes: []label.Class{label.Up}}
	h := historyFromCloses([]float64{100, 100})

	_, err := src.Signal(h)
	assert.Error(t, err)
}

func TestComposite_HoldsOnQuietMarket(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100
	}
	src := &Composite{}
	sig, err := src.Signal(historyFromCloses(closes))
	require.NoError(t, err)
	assert.Equal(t, Hold, sig.Direction)
}
