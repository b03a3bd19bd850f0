package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/meter-dashboard/internal/config"
	"github.com/ignite/meter-dashboard/internal/dashboard"
	"github.com/ignite/meter-dashboard/internal/events"
	"github.com/ignite/meter-dashboard/internal/pkg/distlock"
	"github.com/ignite/meter-dashboard/internal/pkg/logger"
	"github.com/ignite/meter-dashboard/internal/preference"
	"github.com/ignite/meter-dashboard/internal/repository"
	"github.com/ignite/meter-dashboard/internal/service/ingestion"
	"github.com/ignite/meter-dashboard/internal/storage"
	"github.com/ignite/meter-dashboard/internal/worker"
)

const lockKey = "meter-snapshot"

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config")
	interval := flag.Duration("interval", 0, "repeat every interval; overrides snapshot.interval_minutes (0 runs once)")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		fatal("failed to load config", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	logger.SetRedactSecrets(cfg.Log.Redact())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pages, err := dashboard.NewFromConfig(ctx, cfg, nil)
	if err != nil {
		fatal("failed to create dashboard service", err)
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		fatal("failed to create snapshot storage", err)
	}

	repo, db, pg, err := repository.Open(ctx, cfg.Database)
	if err != nil {
		fatal("failed to open ingestion database", err)
	}
	if db != nil {
		defer db.Close()
	}

	var rdb *redis.Client
	if cfg.Preferences.RedisURL != "" {
		rdb, err = preference.NewRedisClient(cfg.Preferences.RedisURL)
		if err != nil {
			fatal("failed to connect to redis", err)
		}
		defer rdb.Close()
	}

	publisher := events.New(cfg.Events)
	defer publisher.Close()

	every := cfg.Snapshot.Interval()
	if *interval > 0 {
		every = *interval
	}

	w := worker.NewSnapshotWorker(worker.SnapshotOptions{
		Pages:      pages,
		Store:      store,
		Ingestions: ingestion.NewService(repo),
		Events:     publisher,
		Lock:       distlock.New(rdb, pg, lockKey, cfg.Snapshot.LockTTL()),
		Rooms:      cfg.Snapshot.Rooms,
		Interval:   every,
	})

	if every <= 0 {
		start := time.Now()
		res, err := w.RunOnce(ctx)
		if err != nil {
			fatal("snapshot failed", err)
		}
		logger.Info("snapshot done",
			"skipped", res.Skipped,
			"published", len(res.Published),
			"failed", len(res.Failed),
			"duration", time.Since(start).Round(time.Millisecond).String(),
		)
		return
	}

	w.Start(ctx)
}

func fatal(msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
