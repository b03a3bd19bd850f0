package ingestion

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/meter-dashboard/internal/csvingest"
	"github.com/ignite/meter-dashboard/internal/domain"
)

// DefaultLimit caps Recent when the caller passes no limit.
const DefaultLimit = 20

// MaxLimit is the largest page Recent returns.
const MaxLimit = 200

// Service records ingestion runs. A nil repository disables recording: every
// method then succeeds without storing anything.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Enabled reports whether runs are persisted.
func (s *Service) Enabled() bool { return s.repo != nil }

// Start opens a run for source and room. The run is only stored once it is
// finished with Complete or Fail.
func (s *Service) Start(source, room string) *domain.IngestionRun {
	return &domain.IngestionRun{
		ID:        uuid.NewString(),
		Source:    source,
		Room:      room,
		Status:    domain.IngestionRunning,
		StartedAt: s.now().UTC(),
	}
}

// Complete marks run as completed with the parse stats and stores it.
func (s *Service) Complete(ctx context.Context, run *domain.IngestionRun, stats csvingest.Stats, snapshotID string) error {
	run.RowsSeen = stats.RowsSeen
	run.Kept = stats.Kept
	run.Dropped = stats.Dropped()
	run.SnapshotID = snapshotID
	run.Status = domain.IngestionCompleted
	return s.finish(ctx, run)
}

// Fail marks run as failed and stores it.
func (s *Service) Fail(ctx context.Context, run *domain.IngestionRun, cause error) error {
	run.Status = domain.IngestionFailed
	if cause != nil {
		run.Error = cause.Error()
	}
	return s.finish(ctx, run)
}

func (s *Service) finish(ctx context.Context, run *domain.IngestionRun) error {
	run.FinishedAt = s.now().UTC()
	if s.repo == nil {
		return nil
	}
	return s.repo.Insert(ctx, run)
}

// Get returns one run.
func (s *Service) Get(ctx context.Context, id string) (*domain.IngestionRun, error) {
	if s.repo == nil {
		return nil, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// Recent lists the newest runs. limit is clamped to [1, MaxLimit].
func (s *Service) Recent(ctx context.Context, limit int) ([]domain.IngestionRun, error) {
	if s.repo == nil {
		return []domain.IngestionRun{}, nil
	}
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return s.repo.Recent(ctx, limit)
}
