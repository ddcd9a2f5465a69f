package backtest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rleiva87/candlesim/candle"
	"github.com/rleiva87/candlesim/signal"
)

// scripted replays fixed signals keyed by bar index.
type scripted struct {
	signals map[int]signal.Signal
	errs    map[int]error
}

func (s *scripted) Name() string { return "scripted" }

func (s *scripted) Signal(window candle.History) (signal.Signal, error) {
	i := window.Len() - 1
	if err, ok := s.errs[i]; ok {
		return signal.Signal{}, err
	}
	return s.signals[i], nil
}

func long(conf float64) signal.Signal {
	return signal.Signal{Direction: signal.Long, Confidence: conf}
}

func short(conf float64) signal.Signal {
	return signal.Signal{Direction: signal.Short, Confidence: conf}
}

func flatHistory(n int, price float64) candle.History {
	h := candle.MakeHistory(n)
	for i := 0; i < n; i++ {
		h.Time = append(h.Time, int64(i+1)*60000)
		h.Open = append(h.Open, price)
		h.High = append(h.High, price)
		h.Low = append(h.Low, price)
		h.Close = append(h.Close, price)
		h.Volume = append(h.Volume, 1)
	}
	return h
}

func defaultOptions() Options {
	return Options{
		InitialCapital:   10000,
		PositionFraction: 0.1,
		TakeProfit:       0.01,
		StopLoss:         0.01,
		CommissionRate:   0,
		MinConfidence:    0.7,
	}
}

func TestNewRunner_ConfigValidation(t *testing.T) {
	cases := []func(*Options){
		func(o *Options) { o.InitialCapital = 0 },
		func(o *Options) { o.PositionFraction = 0 },
		func(o *Options) { o.PositionFraction = 1.5 },
		func(o *Options) { o.TakeProfit = 0 },
		func(o *Options) { o.StopLoss = -0.01 },
		func(o *Options) { o.CommissionRate = -1 },
		func(o *Options) { o.MinConfidence = 2 },
		func(o *Options) { o.MaxHoldingBars = -1 },
	}
	for _, mutate := range cases {
		opt := defaultOptions()
		mutate(&opt)
		_, err := NewRunner(opt)
		assert.ErrorIs(t, err, ErrConfig, "%+v", opt)
	}
}

func TestRun_EmptyHistory(t *testing.T) {
	r, err := NewRunner(defaultOptions())
	require.NoError(t, err)

	res, err := r.Run(context.Background(), &scripted{}, candle.History{})
	require.NoError(t, err)
	assert.Empty(t, res.Trades)
	assert.Empty(t, res.Equity)
	assert.InDelta(t, 10000, res.FinalEquity, 1e-9)
}

func TestRun_BrokenSeriesAborts(t *testing.T) {
	h := flatHistory(5, 100)
	h.Time[3] = h.Time[2]

	r, err := NewRunner(defaultOptions())
	require.NoError(t, err)

	_, err = r.Run(context.Background(), &scripted{}, h)
	var derr *candle.DataError
	assert.ErrorAs(t, err, &derr)
}

func TestRun_PositionSizing(t *testing.T) {
	h := flatHistory(5, 100)
	src := &scripted{signals: map[int]signal.Signal{0: long(1)}}

	r, err := NewRunner(defaultOptions())
	require.NoError(t, err)

	res, err := r.Run(context.Background(), src, h)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)

	trade := res.Trades[0]
	assert.InDelta(t, 10.0, trade.Quantity, 1e-9)
	assert.Equal(t, ExitEndOfData, trade.ExitReason)
}

func TestRun_TakeProfitExit(t *testing.T) {
	h := flatHistory(10, 100)
	h.High[4] = 102

	src := &scripted{signals: map[int]signal.Signal{0: long(1)}}
	r, err := NewRunner(defaultOptions())
	require.NoError(t, err)

	res, err := r.Run(context.Background(), src, h)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)

	trade := res.Trades[0]
	assert.Equal(t, ExitTakeProfit, trade.ExitReason)
	assert.InDelta(t, 101, trade.ExitPrice, 1e-9)
	assert.InDelta(t, 10, trade.PnL, 1e-9)
	assert.Equal(t, h.Time[4], trade.ExitTime)
}

func TestRun_StopLossExit(t *testing.T) {
	h := flatHistory(10, 100)
	h.Low[3] = 98

	src := &scripted{signals: map[int]signal.Signal{0: long(1)}}
	r, err := NewRunner(defaultOptions())
	require.NoError(t, err)

	res, err := r.Run(context.Background(), src, h)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)

	trade := res.Trades[0]
	assert.Equal(t, ExitStopLoss, trade.ExitReason)
	assert.InDelta(t, 99, trade.ExitPrice, 1e-9)
	assert.InDelta(t, -10, trade.PnL, 1e-9)
}

func TestRun_StopLossBeforeTakeProfitOnSameBar(t *testing.T) {
	// Both levels touched within one bar: the conservative stop-loss wins.
	h := flatHistory(10, 100)
	h.High[2] = 103
	h.Low[2] = 97

	src := &scripted{signals: map[int]signal.Signal{0: long(1)}}
	r, err := NewRunner(defaultOptions())
	require.NoError(t, err)

	res, err := r.Run(context.Background(), src, h)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)
	assert.Equal(t, ExitStopLoss, res.Trades[0].ExitReason)
}

func TestRun_OpposingSignalExit(t *testing.T) {
	h := flatHistory(10, 100)
	src := &scripted{signals: map[int]signal.Signal{
		0: long(1),
		5: short(1),
	}}

	r, err := NewRunner(defaultOptions())
	require.NoError(t, err)

	res, err := r.Run(context.Background(), src, h)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)

	trade := res.Trades[0]
	assert.Equal(t, ExitSignal, trade.ExitReason)
	assert.Equal(t, h.Time[5], trade.ExitTime)
}

func TestRun_TimeLimitExit(t *testing.T) {
	h := flatHistory(10, 100)
	src := &scripted{signals: map[int]signal.Signal{0: long(1)}}

	opt := defaultOptions()
	opt.MaxHoldingBars = 3
	r, err := NewRunner(opt)
	require.NoError(t, err)

	res, err := r.Run(context.Background(), src, h)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)

	trade := res.Trades[0]
	assert.Equal(t, ExitTimeLimit, trade.ExitReason)
	assert.Equal(t, h.Time[3], trade.ExitTime)
}

func TestRun_CommissionOnBothSides(t *testing.T) {
	h := flatHistory(10, 100)
	h.High[4] = 102

	src := &scripted{signals: map[int]signal.Signal{0: long(1)}}
	opt := defaultOptions()
	opt.CommissionRate = 0.001
	r, err := NewRunner(opt)
	require.NoError(t, err)

	res, err := r.Run(context.Background(), src, h)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)

	trade := res.Trades[0]
	// Gross 10, commission 0.001*(1000 + 1010).
	assert.InDelta(t, 2.01, trade.Commission, 1e-9)
	assert.InDelta(t, 10-2.01, trade.PnL, 1e-9)
}

func TestRun_SignalErrorRecovered(t *testing.T) {
	h := flatHistory(6, 100)
	src := &scripted{
		signals: map[int]signal.Signal{2: long(1)},
		errs:    map[int]error{0: errors.New("boom"), 1: errors.New("boom")},
	}

	r, err := NewRunner(defaultOptions())
	require.NoError(t, err)

	res, err := r.Run(context.Background(), src, h)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)
	assert.Equal(t, h.Time[2], res.Trades[0].EntryTime)
}

func TestRun_InvalidSignalIgnored(t *testing.T) {
	h := flatHistory(5, 100)
	src := &scripted{signals: map[int]signal.Signal{
		0: {Direction: signal.Direction(9), Confidence: 1},
		1: {Direction: signal.Long, Confidence: 3},
	}}

	r, err := NewRunner(defaultOptions())
	require.NoError(t, err)

	res, err := r.Run(context.Background(), src, h)
	require.NoError(t, err)
	assert.Empty(t, res.Trades)
}

func TestRun_ConfidenceGate(t *testing.T) {
	h := flatHistory(5, 100)
	src := &scripted{signals: map[int]signal.Signal{0: long(0.5)}}

	r, err := NewRunner(defaultOptions())
	require.NoError(t, err)

	res, err := r.Run(context.Background(), src, h)
	require.NoError(t, err)
	assert.Empty(t, res.Trades)
}

func TestRun_ShortDisabledByDefault(t *testing.T) {
	h := flatHistory(5, 100)
	src := &scripted{signals: map[int]signal.Signal{0: short(1)}}

	r, err := NewRunner(defaultOptions())
	require.NoError(t, err)

	res, err := r.Run(context.Background(), src, h)
	require.NoError(t, err)
	assert.Empty(t, res.Trades)
}

func TestRun_ShortTrade(t *testing.T) {
	h := flatHistory(10, 100)
	h.Low[4] = 98.5

	src := &scripted{signals: map[int]signal.Signal{0: short(1)}}
	opt := defaultOptions()
	opt.AllowShort = true
	r, err := NewRunner(opt)
	require.NoError(t, err)

	res, err := r.Run(context.Background(), src, h)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)

	trade := res.Trades[0]
	assert.Equal(t, signal.Short, trade.Side)
	assert.Equal(t, ExitTakeProfit, trade.ExitReason)
	assert.InDelta(t, 99, trade.ExitPrice, 1e-9)
	assert.InDelta(t, 10, trade.PnL, 1e-9)
}

func TestRun_EquityCurveInvariants(t *testing.T) {
	h := flatHistory(30, 100)
	h.High[4] = 102
	h.Low[12] = 97

	src := &scripted{signals: map[int]signal.Signal{
		0: long(1),
		8: long(1),
	}}

	r, err := NewRunner(defaultOptions())
	require.NoError(t, err)

	res, err := r.Run(context.Background(), src, h)
	require.NoError(t, err)

	// One equity point per input bar, in input order.
	require.Len(t, res.Equity, h.Len())

	// Conservation: final equity equals initial capital plus all net PnL.
	sum := 0.0
	for _, trade := range res.Trades {
		sum += trade.PnL
	}
	assert.InDelta(t, res.InitialCapital+sum, res.FinalEquity, 1e-9)
	assert.InDelta(t, res.FinalEquity, res.Equity[len(res.Equity)-1], 1e-9)

	// Ledger is time ordered and positions never overlap.
	for k := 0; k+1 < len(res.Trades); k++ {
		assert.LessOrEqual(t, res.Trades[k].ExitTime, res.Trades[k+1].EntryTime)
	}
	for _, trade := range res.Trades {
		assert.LessOrEqual(t, trade.EntryTime, trade.ExitTime)
	}
}

func TestRun_CompoundingBalance(t *testing.T) {
	// Two winning trades: the second sizes off the grown balance.
	h := flatHistory(20, 100)
	h.High[3] = 102
	h.High[9] = 102

	src := &scripted{signals: map[int]signal.Signal{
		0: long(1),
		6: long(1),
	}}

	r, err := NewRunner(defaultOptions())
	require.NoError(t, err)

	res, err := r.Run(context.Background(), src, h)
	require.NoError(t, err)
	require.Len(t, res.Trades, 2)

	assert.InDelta(t, 10.0, res.Trades[0].Quantity, 1e-9)
	assert.InDelta(t, 10.01, res.Trades[1].Quantity, 1e-9)
}
