package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/meter-dashboard/internal/api"
	"github.com/ignite/meter-dashboard/internal/config"
	"github.com/ignite/meter-dashboard/internal/dashboard"
	"github.com/ignite/meter-dashboard/internal/pkg/logger"
	"github.com/ignite/meter-dashboard/internal/preference"
	"github.com/ignite/meter-dashboard/internal/repository"
	"github.com/ignite/meter-dashboard/internal/service/ingestion"
	"github.com/ignite/meter-dashboard/internal/storage"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		fatal("failed to load config", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	logger.SetRedactSecrets(cfg.Log.Redact())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := dashboard.NewMemorySink()
	board := dashboard.NewBoard(sink)
	defer board.Close()

	pages, err := dashboard.NewFromConfig(ctx, cfg, board)
	if err != nil {
		fatal("failed to create dashboard service", err)
	}
	logger.Info("sheet source configured", "source", pages.Source())

	prefs, err := preference.New(ctx, cfg.Preferences)
	if err != nil {
		fatal("failed to create preference store", err)
	}
	var rdb *redis.Client
	if rs, ok := prefs.(*preference.RedisStore); ok {
		rdb = rs.Client()
		defer rdb.Close()
	}
	logger.Info("preference store ready", "type", cfg.Preferences.Type)

	repo, db, _, err := repository.Open(ctx, cfg.Database)
	if err != nil {
		fatal("failed to open ingestion database", err)
	}
	if db != nil {
		defer db.Close()
		logger.Info("ingestion history enabled", "driver", cfg.Database.Driver)
	}

	var snapshots storage.SnapshotStore
	if s, err := storage.New(ctx, cfg.Storage); err != nil {
		logger.Warn("snapshot storage unavailable, /api/snapshot disabled", "error", err)
	} else {
		snapshots = s
	}

	h := &api.Handlers{
		Pages:       pages,
		Preferences: prefs,
		Ingestions:  ingestion.NewService(repo),
		Snapshots:   snapshots,
		Charts:      sink,
	}
	router := api.SetupRoutes(h, api.NewHealthChecker(db, rdb), cfg.Server.AllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Sheet.Timeout() + 15*time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server error", err)
		}
	}()

	<-done
	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}

func fatal(msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
