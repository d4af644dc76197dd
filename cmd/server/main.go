package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/palemoky/flip-seven/internal/config"
	"github.com/palemoky/flip-seven/internal/logger"
	"github.com/palemoky/flip-seven/internal/server"
	"github.com/palemoky/flip-seven/internal/server/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config file")
	envPath := flag.String("env", ".env", "path to an optional .env file")
	flag.Parse()

	if err := config.LoadDotEnv(*envPath); err != nil {
		log.Fatalf("load %s: %v", *envPath, err)
	}

	cfg, err := config.Load(*configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("config %s not found, using defaults", *configPath)
		cfg = config.Default()
	case err != nil:
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("invalid environment: %v", err)
	}

	if err := logger.Init(logger.Options{Level: cfg.Log.Level, Development: cfg.Log.Development}); err != nil {
		log.Fatalf("init logger: %v", err)
	}

	if err := run(cfg); err != nil {
		logger.L().Error("server stopped with error", zap.Error(err))
		logger.Close()
		os.Exit(1)
	}
	logger.Close()
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		var err error
		rdb, err = storage.NewRedisClient(pingCtx, cfg.Redis)
		cancel()
		if err != nil {
			logger.L().Warn("redis unavailable, results will not be saved", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			rdb = nil
		}
	}

	return server.NewServer(cfg, rdb).Start(ctx)
}
