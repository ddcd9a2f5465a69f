package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rleiva87/candlesim/candle"
	"github.com/rleiva87/candlesim/config"
	"github.com/rleiva87/candlesim/history"
	"github.com/rleiva87/candlesim/platform"
	"github.com/rleiva87/candlesim/provider/binance"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	symbol := flag.String("symbol", "", "symbol override, e.g. BTCUSDT")
	interval := flag.String("interval", "", "interval override, e.g. 1m")
	days := flag.Int("days", 7, "days of history to download")
	out := flag.String("out", "", "output CSV path (default: config data.csv)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}
	config.SetupLogger(cfg.Log)

	if *symbol == "" {
		*symbol = cfg.Data.Symbol
	}
	if *interval == "" {
		*interval = cfg.Data.Interval
	}
	if *out == "" {
		*out = cfg.Data.CSV
	}
	if _, err := binance.IntervalMillis(*interval); err != nil {
		slog.Error("bad interval", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -*days)

	slog.Info("downloading klines",
		"symbol", *symbol,
		"interval", *interval,
		"start", start.Format(time.RFC3339),
		"end", end.Format(time.RFC3339),
		"out", *out,
	)

	provider := binance.NewHistory(nil, *interval, start, end)
	series := candle.NewSeries(*symbol)

	for e := range provider.Subscribe(ctx, *symbol) {
		switch e.Type {
		case platform.EventErr:
			slog.Error("download failed", "err", e.Error, "bars_so_far", series.Len())
			os.Exit(1)
		case platform.EventCandle:
			if err := series.Append(e.Event.Candle); err != nil {
				slog.Error("bad candle from exchange", "err", err)
				os.Exit(1)
			}
		}
	}

	f, err := os.Create(*out)
	if err != nil {
		slog.Error("failed to create output", "err", err, "path", *out)
		os.Exit(1)
	}
	defer f.Close()

	if err := history.WriteSeries(f, series); err != nil {
		slog.Error("failed to write history", "err", err)
		os.Exit(1)
	}

	slog.Info("download complete", "bars", series.Len(), "out", *out)
}
