// Package repository opens the ingestion history backend named by the
// database config.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/meter-dashboard/internal/config"
	"github.com/ignite/meter-dashboard/internal/repository/postgres"
	"github.com/ignite/meter-dashboard/internal/repository/sqlite"
	"github.com/ignite/meter-dashboard/internal/service/ingestion"
)

// Open returns the repository and its pool. Both are nil when no database
// is configured. The Postgres pool is also returned as pg so callers can
// use it for advisory locks; it is nil for SQLite.
func Open(ctx context.Context, cfg config.DatabaseConfig) (repo ingestion.Repository, db *sql.DB, pg *sql.DB, err error) {
	if !cfg.Enabled() {
		return nil, nil, nil, nil
	}
	switch cfg.Driver {
	case "", "postgres":
		db, err := postgres.Open(ctx, cfg.URL)
		if err != nil {
			return nil, nil, nil, err
		}
		r := postgres.NewIngestionRepo(db)
		if err := r.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return r, db, db, nil
	case "sqlite3", "sqlite":
		r, db, err := sqlite.Open(ctx, cfg.URL)
		if err != nil {
			return nil, nil, nil, err
		}
		return r, db, nil, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
