package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/rleiva87/candlesim/backtest"
	"github.com/rleiva87/candlesim/candle"
	"github.com/rleiva87/candlesim/config"
	"github.com/rleiva87/candlesim/history"
	"github.com/rleiva87/candlesim/label"
	"github.com/rleiva87/candlesim/metrics"
	"github.com/rleiva87/candlesim/signal"
	"github.com/rleiva87/candlesim/storage"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	csvPath := flag.String("csv", "", "input candle CSV (default: config data.csv)")
	source := flag.String("source", "", "signal source override: sma_cross|macd|composite|replay|model")
	modelPath := flag.String("model", "", "xgboost model JSON (source=model)")
	trades := flag.Bool("trades", false, "print the full trade ledger")
	noSave := flag.Bool("no-save", false, "skip persisting the run")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}
	config.SetupLogger(cfg.Log)

	if *csvPath == "" {
		*csvPath = cfg.Data.CSV
	}
	if *source == "" {
		*source = cfg.Signal.Source
	}
	if *modelPath == "" {
		*modelPath = cfg.Signal.ModelPath
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		slog.Error("failed to open candles", "err", err, "path", *csvPath)
		os.Exit(1)
	}
	defer f.Close()

	series, err := history.ReadSeries(f, cfg.Data.Symbol)
	if err != nil {
		slog.Error("failed to read candles", "err", err)
		os.Exit(1)
	}
	hist, err := series.History()
	if err != nil {
		slog.Error("broken candle series", "err", err)
		os.Exit(1)
	}

	src, err := buildSource(cfg, *source, *modelPath, hist)
	if err != nil {
		slog.Error("failed to build signal source", "err", err)
		os.Exit(1)
	}

	runner, err := backtest.NewRunner(cfg.BacktestOptions())
	if err != nil {
		slog.Error("bad backtest config", "err", err)
		os.Exit(1)
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("running backtest",
		"symbol", cfg.Data.Symbol,
		"bars", hist.Len(),
		"source", src.Name(),
	)

	res, err := runner.Run(ctx, src, hist)
	if err != nil {
		slog.Error("backtest failed", "err", err)
		os.Exit(1)
	}

	sum := metrics.Summarize(res, cfg.Backtest.PeriodsPerYear)
	metrics.WriteSummary(os.Stdout, res, sum)
	if *trades {
		metrics.WriteTrades(os.Stdout, res.Trades)
	}

	if *noSave {
		return
	}

	store, err := storage.Open(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	id, err := store.SaveRun(ctx, cfg.Data.Symbol, src.Name(), hist.Len(), res, sum)
	if err != nil {
		slog.Error("failed to save run", "err", err)
		os.Exit(1)
	}
	slog.Info("run saved", "id", id, "dsn", cfg.Storage.DSN)
}

// buildSource adds the replay source on top of the named ones: replay
// labels the whole history up front and feeds the classes back as
// signals, which makes the run an upper bound, not a forecast.
func buildSource(cfg *config.Config, name, modelPath string, hist candle.History) (signal.Source, error) {
	if name != "replay" {
		return signal.NewSource(name, modelPath)
	}

	gen, err := label.New(cfg.LabelOptions())
	if err != nil {
		return nil, err
	}
	classes, err := gen.Labels(hist)
	if err != nil {
		return nil, err
	}
	return &signal.Replay{Classes: classes}, nil
}
