// Package worker runs the periodic snapshot cycle: fetch the sheet once,
// build the pages for every room, publish them to snapshot storage and
// announce each run.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/ignite/meter-dashboard/internal/csvingest"
	"github.com/ignite/meter-dashboard/internal/dashboard"
	"github.com/ignite/meter-dashboard/internal/domain"
	"github.com/ignite/meter-dashboard/internal/events"
	"github.com/ignite/meter-dashboard/internal/metrics"
	"github.com/ignite/meter-dashboard/internal/pkg/distlock"
	"github.com/ignite/meter-dashboard/internal/pkg/logger"
	"github.com/ignite/meter-dashboard/internal/rooms"
	"github.com/ignite/meter-dashboard/internal/service/ingestion"
	"github.com/ignite/meter-dashboard/internal/storage"
)

var log = logger.With("component", "snapshot")

// Builder fetches the sheet and builds pages from it.
type Builder interface {
	Fetch(ctx context.Context) (string, error)
	BuildFromText(text, room string) (*dashboard.Pages, error)
	Source() string
}

// SnapshotWorker publishes snapshots. Rooms empty means "all" followed by
// every room found in the sheet.
type SnapshotWorker struct {
	pages      Builder
	store      storage.SnapshotStore
	ingestions *ingestion.Service
	events     events.Publisher
	lock       distlock.DistLock
	rooms      []string
	interval   time.Duration
	now        func() time.Time
}

// SnapshotOptions configures a SnapshotWorker. Events and Lock default to
// no-ops.
type SnapshotOptions struct {
	Pages      Builder
	Store      storage.SnapshotStore
	Ingestions *ingestion.Service
	Events     events.Publisher
	Lock       distlock.DistLock
	Rooms      []string
	Interval   time.Duration
}

func NewSnapshotWorker(opts SnapshotOptions) *SnapshotWorker {
	w := &SnapshotWorker{
		pages:      opts.Pages,
		store:      opts.Store,
		ingestions: opts.Ingestions,
		events:     opts.Events,
		lock:       opts.Lock,
		rooms:      opts.Rooms,
		interval:   opts.Interval,
		now:        time.Now,
	}
	if w.ingestions == nil {
		w.ingestions = ingestion.NewService(nil)
	}
	if w.events == nil {
		w.events = events.NopPublisher{}
	}
	if w.lock == nil {
		w.lock = distlock.NopLock{}
	}
	return w
}

// CycleResult summarizes one cycle.
type CycleResult struct {
	Skipped   bool
	Published []string
	Failed    []string
}

// Start runs one cycle immediately, then one per interval until ctx is
// cancelled. With a zero interval it returns after the first cycle.
func (w *SnapshotWorker) Start(ctx context.Context) {
	log.Info("snapshot worker starting", "interval", w.interval.String())
	w.runLogged(ctx)
	if w.interval <= 0 {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("snapshot worker stopping")
			return
		case <-ticker.C:
			w.runLogged(ctx)
		}
	}
}

func (w *SnapshotWorker) runLogged(ctx context.Context) {
	start := time.Now()
	res, err := w.RunOnce(ctx)
	switch {
	case err != nil:
		log.Error("snapshot cycle failed", "error", err)
	case res.Skipped:
		log.Info("snapshot cycle skipped, another replica holds the lock")
	default:
		log.Info("snapshot cycle completed",
			"published", len(res.Published),
			"failed", len(res.Failed),
			"duration", time.Since(start).Round(time.Millisecond).String(),
		)
	}
}

// RunOnce runs a single cycle under the distributed lock. A fetch failure
// fails the whole cycle; a failure for one room does not stop the others.
func (w *SnapshotWorker) RunOnce(ctx context.Context) (CycleResult, error) {
	var res CycleResult

	acquired, err := w.lock.Acquire(ctx)
	if err != nil {
		return res, err
	}
	if !acquired {
		res.Skipped = true
		return res, nil
	}
	defer func() {
		if err := w.lock.Release(context.WithoutCancel(ctx)); err != nil {
			log.Warn("releasing snapshot lock", "error", err)
		}
	}()

	text, err := w.pages.Fetch(ctx)
	if err != nil {
		run := w.ingestions.Start(w.pages.Source(), rooms.All)
		w.fail(ctx, run, err)
		res.Failed = append(res.Failed, rooms.All)
		return res, err
	}

	targets := w.rooms
	if len(targets) == 0 {
		targets = []string{rooms.All}
	}
	for i := 0; i < len(targets); i++ {
		room := targets[i]
		pages, err := w.publish(ctx, text, room)
		if err != nil {
			res.Failed = append(res.Failed, room)
			continue
		}
		res.Published = append(res.Published, room)

		// The "all" build discovers the rooms when none are configured.
		if len(w.rooms) == 0 && i == 0 {
			for _, opt := range pages.Rooms {
				if opt.Value != rooms.All {
					targets = append(targets, opt.Value)
				}
			}
		}
	}

	if len(res.Published) == 0 && len(res.Failed) > 0 {
		return res, errors.New("no snapshot published")
	}
	return res, nil
}

func (w *SnapshotWorker) publish(ctx context.Context, text, room string) (*dashboard.Pages, error) {
	run := w.ingestions.Start(w.pages.Source(), room)

	pages, err := w.pages.BuildFromText(text, room)
	if err != nil {
		w.fail(ctx, run, err)
		return nil, err
	}

	snap := storage.NewSnapshot(pages, w.now())
	if err := w.store.Save(ctx, snap); err != nil {
		w.fail(ctx, run, err)
		return nil, err
	}

	w.complete(ctx, run, pages.Stats, snap.ID, &metrics.BudgetStatus{
		Amount: pages.Dashboard.TotalAmount,
		Level:  pages.Dashboard.StatusLevel,
	})
	log.Debug("snapshot published", "room", room, "snapshot_id", snap.ID)
	return pages, nil
}

func (w *SnapshotWorker) complete(ctx context.Context, run *domain.IngestionRun, stats csvingest.Stats, snapshotID string, budget *metrics.BudgetStatus) {
	if err := w.ingestions.Complete(ctx, run, stats, snapshotID); err != nil {
		log.Warn("recording ingestion", "run_id", run.ID, "error", err)
	}
	w.announce(ctx, run, budget)
}

func (w *SnapshotWorker) fail(ctx context.Context, run *domain.IngestionRun, cause error) {
	log.Warn("snapshot failed", "room", run.Room, "error", cause)
	if err := w.ingestions.Fail(ctx, run, cause); err != nil {
		log.Warn("recording failed ingestion", "run_id", run.ID, "error", err)
	}
	w.announce(ctx, run, nil)
}

func (w *SnapshotWorker) announce(ctx context.Context, run *domain.IngestionRun, budget *metrics.BudgetStatus) {
	if err := w.events.Publish(ctx, events.NewIngestEvent(run, budget)); err != nil {
		log.Warn("publishing ingest event", "run_id", run.ID, "error", err)
	}
}
