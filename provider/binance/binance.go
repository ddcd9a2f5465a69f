// Package binance downloads closed klines from the Binance REST API and
// streams them as provider events. Requests are paginated and rate
// limited; no credentials are required for market data.
package binance

import (
	"context"
	"fmt"
	"time"

	"github.com/WinPooh32/fixed"
	"github.com/adshao/go-binance/v2"
	"golang.org/x/time/rate"

	"github.com/rleiva87/candlesim/platform"
)

// pageLimit is the Binance hard cap of klines per request.
const pageLimit = 1000

type History struct {
	client   *binance.Client
	interval string
	start    int64
	end      int64
	limiter  *rate.Limiter
}

// NewHistory streams klines of the given interval within [start, end).
// A nil client gets an anonymous one.
func NewHistory(client *binance.Client, interval string, start, end time.Time) *History {
	if client == nil {
		client = binance.NewClient("", "")
	}
	return &History{
		client:   client,
		interval: interval,
		start:    start.UnixMilli(),
		end:      end.UnixMilli(),
		// Klines weigh 2 of the 6000/min request budget; four pages
		// per second stays far under it.
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 1),
	}
}

func (bh *History) Subscribe(ctx context.Context, symbol string) <-chan platform.EventContainer {
	events := make(chan platform.EventContainer, 1024)

	go func() {
		defer close(events)

		cursor := bh.start
		for cursor < bh.end {
			if err := bh.limiter.Wait(ctx); err != nil {
				events <- platform.MakeError(err)
				return
			}

			klines, err := bh.client.NewKlinesService().
				Symbol(symbol).
				Interval(bh.interval).
				StartTime(cursor).
				EndTime(bh.end).
				Limit(pageLimit).
				Do(ctx)
			if err != nil {
				events <- platform.MakeError(fmt.Errorf("go-binance: klines %s from %d: %w", symbol, cursor, err))
				return
			}
			if len(klines) == 0 {
				return
			}

			for _, k := range klines {
				events <- platform.MakeCandle(platform.Candle{
					Time:        k.OpenTime,
					Open:        fixed.NewS(k.Open),
					High:        fixed.NewS(k.High),
					Low:         fixed.NewS(k.Low),
					Close:       fixed.NewS(k.Close),
					Volume:      fixed.NewS(k.Volume),
					TimeClose:   k.CloseTime,
					VolumeQuote: fixed.NewS(k.QuoteAssetVolume),
					CountTrades: k.TradeNum,
				})
			}

			next := klines[len(klines)-1].CloseTime + 1
			if next <= cursor {
				events <- platform.MakeError(fmt.Errorf("go-binance: cursor stuck at %d", cursor))
				return
			}
			cursor = next

			if len(klines) < pageLimit {
				return
			}
		}
	}()

	return events
}
