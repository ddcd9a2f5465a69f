package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rleiva87/candlesim/platform"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "candles.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0666))
	return path
}

func drain(events <-chan platform.EventContainer) (candles []platform.Candle, errs []error) {
	for e := range events {
		switch e.Type {
		case platform.EventCandle:
			candles = append(candles, e.Event.Candle)
		case platform.EventErr:
			errs = append(errs, e.Error)
		}
	}
	return candles, errs
}

func TestSubscribeReplaysInOrder(t *testing.T) {
	path := writeTemp(t,
		"60000,100,101,99,100.5,12.5\n"+
			"120000,100.5,102,100,101,8\n"+
			"180000,101,101,98,99,20\n")

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	candles, errs := drain(f.Subscribe(context.Background(), "BTCUSDT"))
	require.Empty(t, errs)
	require.Len(t, candles, 3)

	assert.Equal(t, int64(60000), candles[0].Time)
	assert.Equal(t, int64(180000), candles[2].Time)
	assert.Equal(t, "101", candles[1].Close.String())
}

func TestSubscribeBadRow(t *testing.T) {
	path := writeTemp(t,
		"60000,100,101,99,100.5,12.5\n"+
			"120000,not-a-price,102,100,101,8\n")

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	candles, errs := drain(f.Subscribe(context.Background(), "BTCUSDT"))
	assert.Len(t, candles, 1)
	require.Len(t, errs, 1)
	assert.Error(t, errs[0])
}

func TestSubscribeCancelled(t *testing.T) {
	path := writeTemp(t, "60000,100,101,99,100.5,12.5\n")

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, errs := drain(f.Subscribe(ctx, "BTCUSDT"))
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.Canceled)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
