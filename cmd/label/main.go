package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/rleiva87/candlesim/config"
	"github.com/rleiva87/candlesim/dataset"
	"github.com/rleiva87/candlesim/history"
	"github.com/rleiva87/candlesim/label"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	csvPath := flag.String("csv", "", "input candle CSV (default: config data.csv)")
	out := flag.String("out", "dataset.csv", "output labeled dataset CSV")
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

	gen, err := label.New(cfg.LabelOptions())
	if err != nil {
		slog.Error("bad label config", "err", err)
		os.Exit(1)
	}

	classes, err := gen.Labels(hist)
	if errors.Is(err, label.ErrInsufficientData) {
		slog.Error("not enough bars for a single label",
			"bars", hist.Len(),
			"horizon", cfg.Label.Horizon,
		)
		os.Exit(1)
	}
	if err != nil {
		slog.Error("labeling failed", "err", err)
		os.Exit(1)
	}

	var up, down, flat, undefined int
	for _, c := range classes {
		switch c {
		case label.Up:
			up++
		case label.Down:
			down++
		case label.Flat:
			flat++
		default:
			undefined++
		}
	}
	slog.Info("labels computed",
		"bars", hist.Len(),
		"up", up,
		"down", down,
		"flat", flat,
		"undefined", undefined,
	)

	outF, err := os.Create(*out)
	if err != nil {
		slog.Error("failed to create output", "err", err, "path", *out)
		os.Exit(1)
	}
	defer outF.Close()

	features := dataset.Compute(hist)
	rows, err := dataset.WriteCSV(outF, features, classes)
	if err != nil {
		slog.Error("failed to write dataset", "err", err)
		os.Exit(1)
	}

	slog.Info("dataset written", "rows", rows, "out", *out)
}
