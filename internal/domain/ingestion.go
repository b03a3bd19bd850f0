package domain

import "time"

// IngestionStatus is the outcome of one ingestion run.
type IngestionStatus string

const (
	IngestionRunning   IngestionStatus = "running"
	IngestionCompleted IngestionStatus = "completed"
	IngestionFailed    IngestionStatus = "failed"
)

// IngestionRun records one fetch-and-parse of the meter sheet.
type IngestionRun struct {
	ID         string          `json:"id"`
	Source     string          `json:"source"`
	Room       string          `json:"room"`
	RowsSeen   int             `json:"rows_seen"`
	Kept       int             `json:"kept"`
	Dropped    int             `json:"dropped"`
	Status     IngestionStatus `json:"status"`
	Error      string          `json:"error,omitempty"`
	SnapshotID string          `json:"snapshot_id,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

// Duration is the wall time of a finished run.
func (r IngestionRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
