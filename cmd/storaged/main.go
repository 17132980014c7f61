package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gamehall/gamehall/internal/config"
	"github.com/gamehall/gamehall/internal/docstore"
	"github.com/gamehall/gamehall/internal/docstore/memory"
	redisstore "github.com/gamehall/gamehall/internal/docstore/redis"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.LoadStorage()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store, err := newBackend(cfg, logger)
	if err != nil {
		logger.Error("failed to create backend", slog.String("error", err.Error()))
		os.Exit(1)
	}

	server := docstore.NewServer(store, logger)
	if _, err := server.Listen(cfg.ListenAddr); err != nil {
		logger.Error("failed to listen", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ctx)
	}()

	logger.Info("store started",
		slog.String("addr", cfg.ListenAddr),
		slog.String("backend", cfg.Backend),
	)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Close(); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("store stopped")
}

func newBackend(cfg config.Storage, logger *slog.Logger) (docstore.Store, error) {
	switch cfg.Backend {
	case "redis":
		redisCfg := redisstore.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		return redisstore.New(redisCfg)
	default:
		if cfg.DataDir != "" {
			return memory.NewWithSnapshots(cfg.DataDir)
		}
		logger.Warn("memory backend without snapshots, data is volatile")
		return memory.New(), nil
	}
}
