// Package config loads the YAML settings file and the optional .env
// overrides, and maps the sections onto the package option structs.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rleiva87/candlesim/backtest"
	"github.com/rleiva87/candlesim/label"
)

type Config struct {
	Data     DataConfig     `yaml:"data"`
	Label    LabelConfig    `yaml:"label"`
	Signal   SignalConfig   `yaml:"signal"`
	Backtest BacktestConfig `yaml:"backtest"`
	Storage  StorageConfig  `yaml:"storage"`
	API      APIConfig      `yaml:"api"`
	Log      LogConfig      `yaml:"log"`
}

// DataConfig names the instrument and where its candles live.
type DataConfig struct {
	Symbol   string `yaml:"symbol"`
	Interval string `yaml:"interval"` // exchange token: 1m, 4h, 1d
	CSV      string `yaml:"csv"`
}

type LabelConfig struct {
	Method     string  `yaml:"method"` // return_threshold | first_touch
	Horizon    int     `yaml:"horizon"`
	Threshold  float64 `yaml:"threshold"`
	TakeProfit float64 `yaml:"take_profit"`
	StopLoss   float64 `yaml:"stop_loss"`
	Workers    int     `yaml:"workers"` // 0 = sequential, -1 = NumCPU
}

type SignalConfig struct {
	Source    string `yaml:"source"` // sma_cross | macd | composite | replay | model
	ModelPath string `yaml:"model_path"`
}

type BacktestConfig struct {
	InitialCapital     float64 `yaml:"initial_capital"`
	PositionFraction   float64 `yaml:"position_fraction"`
	TakeProfit         float64 `yaml:"take_profit"`
	StopLoss           float64 `yaml:"stop_loss"`
	CommissionRate     float64 `yaml:"commission_rate"`
	MinConfidence      float64 `yaml:"min_confidence"`
	MaxHoldingBars     int     `yaml:"max_holding_bars"`
	MinTradableBalance float64 `yaml:"min_tradable_balance"`
	AllowShort         bool    `yaml:"allow_short"`
	PeriodsPerYear     float64 `yaml:"periods_per_year"` // Sharpe annualization
}

type StorageConfig struct {
	DSN string `yaml:"dsn"` // SQLite file path
}

type APIConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig controls format and level of the default logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load reads the YAML file and the .env file if present. Environment
// values win over YAML for the keys they cover.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// LabelOptions maps the label section onto the generator config.
func (c *Config) LabelOptions() label.Config {
	method := label.MethodFirstTouch
	if c.Label.Method == "return_threshold" {
		method = label.MethodReturnThreshold
	}
	return label.Config{
		Method:     method,
		Horizon:    c.Label.Horizon,
		Threshold:  c.Label.Threshold,
		TakeProfit: c.Label.TakeProfit,
		StopLoss:   c.Label.StopLoss,
		Workers:    c.Label.Workers,
	}
}

// BacktestOptions maps the backtest section onto the runner options.
func (c *Config) BacktestOptions() backtest.Options {
	return backtest.Options{
		InitialCapital:     c.Backtest.InitialCapital,
		PositionFraction:   c.Backtest.PositionFraction,
		TakeProfit:         c.Backtest.TakeProfit,
		StopLoss:           c.Backtest.StopLoss,
		CommissionRate:     c.Backtest.CommissionRate,
		MinConfidence:      c.Backtest.MinConfidence,
		MaxHoldingBars:     c.Backtest.MaxHoldingBars,
		MinTradableBalance: c.Backtest.MinTradableBalance,
		AllowShort:         c.Backtest.AllowShort,
	}
}

// SetupLogger installs the default slog handler described by the log
// section.
func SetupLogger(cfg LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("CANDLESIM_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Data.Symbol == "" {
		cfg.Data.Symbol = "BTCUSDT"
	}
	if cfg.Data.Interval == "" {
		cfg.Data.Interval = "1m"
	}
	if cfg.Label.Method == "" {
		cfg.Label.Method = "first_touch"
	}
	if cfg.Label.Horizon <= 0 {
		cfg.Label.Horizon = 60
	}
	if cfg.Label.Threshold <= 0 {
		cfg.Label.Threshold = 0.002
	}
	if cfg.Label.TakeProfit <= 0 {
		cfg.Label.TakeProfit = 0.015
	}
	if cfg.Label.StopLoss <= 0 {
		cfg.Label.StopLoss = 0.01
	}
	if cfg.Signal.Source == "" {
		cfg.Signal.Source = "composite"
	}
	if cfg.Backtest.InitialCapital <= 0 {
		cfg.Backtest.InitialCapital = 10000
	}
	if cfg.Backtest.PositionFraction <= 0 {
		cfg.Backtest.PositionFraction = 0.1
	}
	if cfg.Backtest.TakeProfit <= 0 {
		cfg.Backtest.TakeProfit = 0.015
	}
	if cfg.Backtest.StopLoss <= 0 {
		cfg.Backtest.StopLoss = 0.01
	}
	if cfg.Backtest.MinConfidence <= 0 {
		cfg.Backtest.MinConfidence = 0.6
	}
	if cfg.Backtest.PeriodsPerYear <= 0 {
		cfg.Backtest.PeriodsPerYear = 525600 // minute bars
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "candlesim.db"
	}
	if cfg.API.Addr == "" {
		cfg.API.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
