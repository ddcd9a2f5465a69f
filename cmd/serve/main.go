package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rleiva87/candlesim/api"
	"github.com/rleiva87/candlesim/config"
	"github.com/rleiva87/candlesim/storage"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	addr := flag.String("addr", "", "listen address override, e.g. :8080")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}
	config.SetupLogger(cfg.Log)

	if *addr == "" {
		*addr = cfg.API.Addr
	}

	store, err := storage.Open(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	server := api.NewServer(*addr, store, cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errC := make(chan error, 1)
	go func() {
		errC <- server.Start()
	}()

	select {
	case err := <-errC:
		if err != nil {
			slog.Error("server exited with error", "err", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			slog.Error("shutdown failed", "err", err)
			os.Exit(1)
		}
	}

	slog.Info("stopped cleanly")
}
