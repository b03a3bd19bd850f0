package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ignite/meter-dashboard/internal/config"
	"github.com/ignite/meter-dashboard/internal/pkg/logger"
	"github.com/ignite/meter-dashboard/internal/repository"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config")
	list := flag.Int("list", 0, "after migrating, print the newest N ingestion runs")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if !cfg.Database.Enabled() {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, db, _, err := repository.Open(ctx, cfg.Database)
	if err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("ingestion schema up to date", "driver", cfg.Database.Driver)

	if *list <= 0 {
		return
	}
	runs, err := repo.Recent(ctx, *list)
	if err != nil {
		logger.Error("listing ingestion runs", "error", err)
		os.Exit(1)
	}
	for _, r := range runs {
		fmt.Printf("%s  %-9s  room=%-6s kept=%-5d dropped=%-5d %s\n",
			r.StartedAt.Format(time.RFC3339), r.Status, r.Room, r.Kept, r.Dropped, r.Duration())
	}
	fmt.Printf("Total: %d runs\n", len(runs))
}
