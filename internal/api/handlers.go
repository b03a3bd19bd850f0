// Package api serves the dashboard pages over HTTP. Every page request
// fetches the sheet once and recomputes from scratch; nothing is cached
// between requests apart from the selected-room preference.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/meter-dashboard/internal/dashboard"
	"github.com/ignite/meter-dashboard/internal/pkg/httputil"
	"github.com/ignite/meter-dashboard/internal/pkg/logger"
	"github.com/ignite/meter-dashboard/internal/preference"
	"github.com/ignite/meter-dashboard/internal/service/ingestion"
	"github.com/ignite/meter-dashboard/internal/storage"
)

// PageBuilder builds every dashboard page for a room.
type PageBuilder interface {
	Build(ctx context.Context, room string) (*dashboard.Pages, error)
	Source() string
}

// ChartSource returns the payload of a page's live chart.
type ChartSource interface {
	Latest(page dashboard.Page) (any, bool)
}

// Handlers holds the dependencies of the HTTP handlers. Snapshots and Charts
// may be nil.
type Handlers struct {
	Pages       PageBuilder
	Preferences preference.Store
	Ingestions  *ingestion.Service
	Snapshots   storage.SnapshotStore
	Charts      ChartSource
}

// build resolves the room, runs one ingestion and records its outcome.
// It writes the error response itself and returns nil on failure.
func (h *Handlers) build(w http.ResponseWriter, r *http.Request) *dashboard.Pages {
	ctx := r.Context()
	room, err := h.resolveRoom(ctx, r)
	if err != nil {
		httputil.InternalError(w, err)
		return nil
	}

	run := h.Ingestions.Start(h.Pages.Source(), room)
	pages, err := h.Pages.Build(ctx, room)
	if err != nil {
		if rerr := h.Ingestions.Fail(ctx, run, err); rerr != nil {
			logger.Warn("recording failed ingestion", "run_id", run.ID, "error", rerr)
		}
		if msg, ok := dashboard.UserMessage(err); ok {
			logger.Warn("ingestion failed", "room", room, "error", err)
			httputil.BadGateway(w, msg)
			return nil
		}
		httputil.InternalError(w, err)
		return nil
	}

	if err := h.Ingestions.Complete(ctx, run, pages.Stats, ""); err != nil {
		logger.Warn("recording ingestion", "run_id", run.ID, "error", err)
	}
	return pages
}

// resolveRoom takes ?room= when present, otherwise the stored preference.
func (h *Handlers) resolveRoom(ctx context.Context, r *http.Request) (string, error) {
	if room := strings.TrimSpace(r.URL.Query().Get("room")); room != "" {
		return room, nil
	}
	return h.Preferences.Get(ctx)
}

// GetPages returns every page in one payload.
//
//	GET /api/pages?room=
func (h *Handlers) GetPages(w http.ResponseWriter, r *http.Request) {
	pages := h.build(w, r)
	if pages == nil {
		return
	}
	httputil.OK(w, pages)
}

// GetPage returns a handler for a single page's payload.
//
//	GET /api/{dashboard,usage,budget,breakdown}?room=
func (h *Handlers) GetPage(page dashboard.Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pages := h.build(w, r)
		if pages == nil {
			return
		}
		httputil.OK(w, map[string]any{
			"room":        pages.Room,
			"roomLabel":   pages.RoomLabel,
			"generatedAt": pages.GeneratedAt,
			"page":        page,
			"data":        pages.Payload(page),
		})
	}
}

// GetRooms returns the room selector options and the current selection.
//
//	GET /api/rooms
func (h *Handlers) GetRooms(w http.ResponseWriter, r *http.Request) {
	pages := h.build(w, r)
	if pages == nil {
		return
	}
	httputil.OK(w, map[string]any{
		"selected": pages.Room,
		"rooms":    pages.Rooms,
	})
}

type preferenceBody struct {
	Room string `json:"room"`
}

// GetPreference returns the stored room.
//
//	GET /api/preference
func (h *Handlers) GetPreference(w http.ResponseWriter, r *http.Request) {
	room, err := h.Preferences.Get(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, preferenceBody{Room: room})
}

// PutPreference stores the selected room.
//
//	PUT /api/preference {"room": "101"}
func (h *Handlers) PutPreference(w http.ResponseWriter, r *http.Request) {
	var body preferenceBody
	if !httputil.Decode(w, r, &body) {
		return
	}
	if err := h.Preferences.Set(r.Context(), body.Room); err != nil {
		if errors.Is(err, preference.ErrInvalidRoom) {
			httputil.BadRequest(w, err.Error())
			return
		}
		httputil.InternalError(w, err)
		return
	}
	room, err := h.Preferences.Get(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, preferenceBody{Room: room})
}

// GetPlans lists the saving plans.
func (h *Handlers) GetPlans(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, dashboard.Plans())
}

// GetPlan returns one plan by key.
func (h *Handlers) GetPlan(w http.ResponseWriter, r *http.Request) {
	plan, ok := dashboard.PlanByKey(chi.URLParam(r, "key"))
	if !ok {
		httputil.NotFound(w, "plan not found")
		return
	}
	httputil.OK(w, plan)
}

// GetChart returns the payload behind the live chart of a page, as last
// published by a build.
//
//	GET /api/charts/{page}
func (h *Handlers) GetChart(w http.ResponseWriter, r *http.Request) {
	if h.Charts == nil {
		httputil.NotFound(w, "charts not enabled")
		return
	}
	payload, ok := h.Charts.Latest(dashboard.Page(chi.URLParam(r, "page")))
	if !ok {
		httputil.NotFound(w, "no chart rendered for page")
		return
	}
	httputil.OK(w, payload)
}

// GetLatestSnapshot returns the newest published snapshot for a room.
//
//	GET /api/snapshot/latest?room=
func (h *Handlers) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.Snapshots == nil {
		httputil.NotFound(w, "snapshots not enabled")
		return
	}
	room, err := h.resolveRoom(r.Context(), r)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	snap, err := h.Snapshots.Latest(r.Context(), room)
	if errors.Is(err, storage.ErrNotFound) {
		httputil.NotFound(w, "no snapshot for room")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, snap)
}

// ListIngestions returns the newest ingestion runs.
//
//	GET /api/ingestions?limit=
func (h *Handlers) ListIngestions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httputil.BadRequest(w, "limit must be an integer")
			return
		}
		limit = n
	}
	runs, err := h.Ingestions.Recent(r.Context(), limit)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{
		"enabled": h.Ingestions.Enabled(),
		"runs":    runs,
	})
}

// GetIngestion returns one ingestion run.
//
//	GET /api/ingestions/{id}
func (h *Handlers) GetIngestion(w http.ResponseWriter, r *http.Request) {
	run, err := h.Ingestions.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ingestion.ErrNotFound) {
		httputil.NotFound(w, "ingestion run not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, run)
}
