package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/ignite/meter-dashboard/internal/domain"
	"github.com/ignite/meter-dashboard/internal/service/ingestion"
)

// Schema creates the ingestion history table.
const Schema = `
CREATE TABLE IF NOT EXISTS meter_ingestions (
	id          UUID PRIMARY KEY,
	source      TEXT NOT NULL,
	room        TEXT NOT NULL,
	rows_seen   INTEGER NOT NULL DEFAULT 0,
	kept        INTEGER NOT NULL DEFAULT 0,
	dropped     INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL,
	error       TEXT,
	snapshot_id TEXT,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS meter_ingestions_started_at_idx ON meter_ingestions (started_at DESC);
`

// IngestionRepo implements ingestion.Repository against PostgreSQL.
type IngestionRepo struct{ db *sql.DB }

// NewIngestionRepo creates a Postgres-backed ingestion history.
func NewIngestionRepo(db *sql.DB) *IngestionRepo { return &IngestionRepo{db: db} }

// Open connects with lib/pq and verifies the connection.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate applies Schema.
func (r *IngestionRepo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate ingestion history: %w", err)
	}
	return nil
}

func (r *IngestionRepo) Insert(ctx context.Context, run *domain.IngestionRun) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO meter_ingestions
			(id, source, room, rows_seen, kept, dropped, status, error, snapshot_id, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10, $11)
	`, run.ID, run.Source, run.Room, run.RowsSeen, run.Kept, run.Dropped,
		string(run.Status), run.Error, run.SnapshotID, run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert ingestion run: %w", err)
	}
	return nil
}

const selectColumns = `
	SELECT id, source, room, rows_seen, kept, dropped, status,
	       COALESCE(error, ''), COALESCE(snapshot_id, ''), started_at, finished_at
	FROM meter_ingestions`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*domain.IngestionRun, error) {
	var run domain.IngestionRun
	var status string
	err := s.Scan(&run.ID, &run.Source, &run.Room, &run.RowsSeen, &run.Kept, &run.Dropped,
		&status, &run.Error, &run.SnapshotID, &run.StartedAt, &run.FinishedAt)
	if err != nil {
		return nil, err
	}
	run.Status = domain.IngestionStatus(status)
	return &run, nil
}

func (r *IngestionRepo) Get(ctx context.Context, id string) (*domain.IngestionRun, error) {
	run, err := scanRun(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ingestion.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ingestion run: %w", err)
	}
	return run, nil
}

func (r *IngestionRepo) Recent(ctx context.Context, limit int) ([]domain.IngestionRun, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY started_at DESC LIMIT $1`, limit)
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
