// Package sqlite stores ingestion history in a local SQLite file. Used for
// development and single-host deployments without Postgres.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ignite/meter-dashboard/internal/domain"
	"github.com/ignite/meter-dashboard/internal/service/ingestion"
)

const schema = `
CREATE TABLE IF NOT EXISTS meter_ingestions (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	room        TEXT NOT NULL,
	rows_seen   INTEGER NOT NULL DEFAULT 0,
	kept        INTEGER NOT NULL DEFAULT 0,
	dropped     INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	snapshot_id TEXT NOT NULL DEFAULT '',
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS meter_ingestions_started_at_idx ON meter_ingestions (started_at);
`

// Times are stored as fixed-width UTC text so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// IngestionRepo implements ingestion.Repository on SQLite.
type IngestionRepo struct{ db *sql.DB }

// Open opens (creating if needed) the database at dsn and applies the
// schema. Use "file::memory:?cache=shared" for an in-memory database.
func Open(ctx context.Context, dsn string) (*IngestionRepo, *sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps an in-memory
	// database alive for the life of the pool.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &IngestionRepo{db: db}, db, nil
}

func (r *IngestionRepo) Insert(ctx context.Context, run *domain.IngestionRun) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO meter_ingestions
			(id, source, room, rows_seen, kept, dropped, status, error, snapshot_id, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Source, run.Room, run.RowsSeen, run.Kept, run.Dropped, string(run.Status),
		run.Error, run.SnapshotID, run.StartedAt.UTC().Format(timeLayout), run.FinishedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert ingestion run: %w", err)
	}
	return nil
}

const selectColumns = `
	SELECT id, source, room, rows_seen, kept, dropped, status, error, snapshot_id, started_at, finished_at
	FROM meter_ingestions`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*domain.IngestionRun, error) {
	var (
		run               domain.IngestionRun
		status            string
		started, finished string
	)
	err := s.Scan(&run.ID, &run.Source, &run.Room, &run.RowsSeen, &run.Kept, &run.Dropped,
		&status, &run.Error, &run.SnapshotID, &started, &finished)
	if err != nil {
		return nil, err
	}
	run.Status = domain.IngestionStatus(status)
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return nil, fmt.Errorf("parse finished_at: %w", err)
	}
	return &run, nil
}

func (r *IngestionRepo) Get(ctx context.Context, id string) (*domain.IngestionRun, error) {
	run, err := scanRun(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ingestion.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ingestion run: %w", err)
	}
	return run, nil
}

func (r *IngestionRepo) Recent(ctx context.Context, limit int) ([]domain.IngestionRun, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list ingestion runs: %w", err)
	}
	defer rows.Close()

	runs := []domain.IngestionRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ingestion run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}
