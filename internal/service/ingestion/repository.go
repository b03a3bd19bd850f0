package ingestion

import (
	"context"

	"github.com/ignite/meter-dashboard/internal/domain"
)

// Repository persists ingestion runs.
type Repository interface {
	// Insert stores a finished run.
	Insert(ctx context.Context, run *domain.IngestionRun) error

	// Get returns one run. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.IngestionRun, error)

	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]domain.IngestionRun, error)
}
