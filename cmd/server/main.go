// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/flipseven/internal/auth"
	"github.com/jason-s-yu/flipseven/internal/cache"
	"github.com/jason-s-yu/flipseven/internal/config"
	"github.com/jason-s-yu/flipseven/internal/database"
	"github.com/jason-s-yu/flipseven/internal/game"
	"github.com/jason-s-yu/flipseven/internal/handlers"
	"github.com/jason-s-yu/flipseven/internal/models"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
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
	if err := auth.Init(cfg.TokenExpire); err != nil {
		logger.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var storeOpts []game.StoreOption

	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Fatal(err)
		}
		defer rdb.Close()
		storeOpts = append(storeOpts, game.WithStoreActionSink(cache.NewRedisSink(rdb, cfg.QueueName)))
		logger.Infof("Publishing actions to Redis queue %q.", cfg.QueueName)
	} else {
		logger.Info("REDIS_ADDR not set, action log disabled.")
	}

	if cfg.Postgres.Enabled() {
		pool, err := database.Connect(ctx, cfg.Postgres.URL())
		if err != nil {
			logger.Fatal(err)
		}
		defer pool.Close()
		if err := database.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal(err)
		}
		archive := database.NewArchive(pool)
		storeOpts = append(storeOpts, game.WithStoreOnGameEnd(recordResults(logger, archive)))
		logger.Infof("Recording results in %s@%s.", cfg.Postgres.Database, cfg.Postgres.Host)
	} else {
		logger.Info("PG_HOST not set, results are not persisted.")
	}

	gs := handlers.NewGameServer(logger, storeOpts...)
	gs.OriginPatterns = cfg.OriginPatterns()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handlers.NewRouter(gs),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case now := <-ticker.C:
				gs.EvictIdle(now, cfg.IdleTimeout)
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("Server exited.")
		os.Exit(1)
	}
	logger.Info("Server stopped.")
}

// recordResults persists a finished game off the session lock.
func recordResults(logger *logrus.Logger, archive *database.Archive) game.OnGameEndFunc {
	return func(res models.GameResult) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := archive.RecordGameResults(ctx, res); err != nil {
				logger.WithError(err).WithField("room", res.RoomID).Error("Failed to record game results.")
				return
			}
			logger.WithField("room", res.RoomID).Infof("Recorded results for %d player(s).", len(res.Players))
		}()
	}
}
