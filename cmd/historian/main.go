// cmd/historian/main.go is an asynchronous historian service that pops action
// records from a Redis queue and persists them to PostgreSQL.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/flipseven/internal/cache"
	"github.com/jason-s-yu/flipseven/internal/config"
	"github.com/jason-s-yu/flipseven/internal/database"
	"github.com/jason-s-yu/flipseven/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		logrus.Fatalf("logger: %v", err)
	}
	if cfg.RedisAddr == "" || !cfg.Postgres.Enabled() {
		logger.Fatal("historian needs both REDIS_ADDR and PG_HOST")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatal(err)
	}
	defer rdb.Close()

	pool, err := database.Connect(ctx, cfg.Postgres.URL())
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal(err)
	}

	hs := historian.NewService(rdb, database.NewArchive(pool), historian.Options{
		QueueName:  cfg.QueueName,
		BatchSize:  cfg.BatchSize,
		FlushEvery: cfg.FlushEvery,
		Inactivity: cfg.IdleTimeout,
		Logger:     logger,
	})
	if err := hs.Run(ctx); err != nil {
		logger.WithError(err).Error("Historian exited.")
		os.Exit(1)
	}
	logger.Info("Historian shutdown complete.")
}
