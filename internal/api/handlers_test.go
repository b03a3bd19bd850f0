package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/meter-dashboard/internal/dashboard"
	"github.com/ignite/meter-dashboard/internal/domain"
	"github.com/ignite/meter-dashboard/internal/preference"
	"github.com/ignite/meter-dashboard/internal/service/ingestion"
	"github.com/ignite/meter-dashboard/internal/storage"
)

const meterCSV = "timestamp,room_number,cost_baht,kwh_usage,kwh_reading,power_watts,level,amount_paid\n" +
	"2024-01-01 08:00,101,100,1.5,1000,300,normal,\n" +
	"2024-01-01 23:00,101,50,2.5,1002,450,warning,\"1,200\"\n" +
	"2024-01-01 10:00,102,20,3,2000,500,critical,\n"

type stubFetcher struct {
	text string
	err  error
}

func (f *stubFetcher) Fetch(context.Context) (string, error) { return f.text, f.err }
func (f *stubFetcher) Location() string                      { return "stub://sheet" }

type memRepo struct {
	mu   sync.Mutex
	runs []domain.IngestionRun
}

func (m *memRepo) Insert(_ context.Context, run *domain.IngestionRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *run)
	return nil
}

func (m *memRepo) Get(_ context.Context, id string) (*domain.IngestionRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.runs {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, ingestion.ErrNotFound
}

func (m *memRepo) Recent(_ context.Context, limit int) ([]domain.IngestionRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.IngestionRun{}
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

type testEnv struct {
	router  http.Handler
	fetcher *stubFetcher
	prefs   *preference.MemoryStore
	repo    *memRepo
	store   *storage.LocalStore
	sink    *dashboard.MemorySink
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		fetcher: &stubFetcher{text: meterCSV},
		prefs:   preference.NewMemoryStore(),
		repo:    &memRepo{},
		sink:    dashboard.NewMemorySink(),
	}
	board := dashboard.NewBoard(env.sink)
	t.Cleanup(board.Close)

	svc, err := dashboard.NewService(env.fetcher, dashboard.Options{
		Board: board,
		Now:   func() time.Time { return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)

	env.store, err = storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	h := &Handlers{
		Pages:       svc,
		Preferences: env.prefs,
		Ingestions:  ingestion.NewService(env.repo),
		Snapshots:   env.store,
		Charts:      env.sink,
	}
	env.router = SetupRoutes(h, NewHealthChecker(nil, nil), []string{"*"})
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestGetPagesAllRooms(t *testing.T) {
	env := setup(t)
	rec := env.do(t, http.MethodGet, "/api/pages", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var pages dashboard.Pages
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pages))
	assert.Equal(t, "all", pages.Room)
	require.Len(t, pages.Rooms, 3)
	assert.Equal(t, "101", pages.Rooms[1].Value)
	assert.Equal(t, 1200.0, pages.Dashboard.TotalAmount)

	require.Len(t, env.repo.runs, 1)
	assert.Equal(t, domain.IngestionCompleted, env.repo.runs[0].Status)
	assert.Equal(t, 3, env.repo.runs[0].Kept)
}

func TestGetPageUsesStoredPreference(t *testing.T) {
	env := setup(t)
	require.NoError(t, env.prefs.Set(context.Background(), "102"))

	rec := env.do(t, http.MethodGet, "/api/breakdown", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "102", body["room"])
	assert.Equal(t, "breakdown", body["page"])
	data := body["data"].(map[string]any)
	assert.Equal(t, 3.0, data["dayUsage"])
	assert.Equal(t, 100.0, data["dayPercent"])
}

func TestGetPageQueryOverridesPreference(t *testing.T) {
	env := setup(t)
	require.NoError(t, env.prefs.Set(context.Background(), "102"))

	rec := env.do(t, http.MethodGet, "/api/usage?room=101", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "101", decode(t, rec)["room"])
}

func TestFetchFailureIs502WithUserMessage(t *testing.T) {
	env := setup(t)
	env.fetcher.err = errors.New("connection refused")

	rec := env.do(t, http.MethodGet, "/api/dashboard", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, dashboard.DefaultCopy().FetchError, decode(t, rec)["error"])

	require.Len(t, env.repo.runs, 1)
	assert.Equal(t, domain.IngestionFailed, env.repo.runs[0].Status)
	assert.Contains(t, env.repo.runs[0].Error, "connection refused")
}

func TestEmptySheetIs502(t *testing.T) {
	env := setup(t)
	env.fetcher.text = "timestamp,room_number\n,\n"

	rec := env.do(t, http.MethodGet, "/api/pages", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, dashboard.DefaultCopy().EmptyError, decode(t, rec)["error"])
}

func TestRooms(t *testing.T) {
	env := setup(t)
	rec := env.do(t, http.MethodGet, "/api/rooms", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "all", body["selected"])
	assert.Len(t, body["rooms"], 3)
}

func TestPreferenceRoundTrip(t *testing.T) {
	env := setup(t)

	rec := env.do(t, http.MethodGet, "/api/preference", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "all", decode(t, rec)["room"])

	rec = env.do(t, http.MethodPut, "/api/preference", `{"room":" 101 "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "101", decode(t, rec)["room"])

	rec = env.do(t, http.MethodPut, "/api/preference", `{"room":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/preference", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlans(t *testing.T) {
	env := setup(t)

	rec := env.do(t, http.MethodGet, "/api/plans", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var plans []dashboard.Plan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plans))
	assert.Len(t, plans, 3)

	rec = env.do(t, http.MethodGet, "/api/plans/balance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "balance", decode(t, rec)["key"])

	rec = env.do(t, http.MethodGet, "/api/plans/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChartsReflectLastBuild(t *testing.T) {
	env := setup(t)

	rec := env.do(t, http.MethodGet, "/api/charts/usage", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	env.do(t, http.MethodGet, "/api/pages?room=101", "")
	env.do(t, http.MethodGet, "/api/pages?room=102", "")
	assert.Equal(t, len(dashboard.AllPages), env.sink.Live())

	rec = env.do(t, http.MethodGet, "/api/charts/usage", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"10:00"}, decode(t, rec)["labels"])
}

func TestLatestSnapshot(t *testing.T) {
	env := setup(t)

	rec := env.do(t, http.MethodGet, "/api/snapshot/latest?room=101", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	pages := &dashboard.Pages{Room: "101"}
	snap := storage.NewSnapshot(pages, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, env.store.Save(context.Background(), snap))

	rec = env.do(t, http.MethodGet, "/api/snapshot/latest?room=101", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, snap.ID, decode(t, rec)["id"])
}

func TestIngestions(t *testing.T) {
	env := setup(t)
	env.do(t, http.MethodGet, "/api/pages", "")
	env.do(t, http.MethodGet, "/api/pages?room=101", "")

	rec := env.do(t, http.MethodGet, "/api/ingestions?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["enabled"])
	runs := body["runs"].([]any)
	require.Len(t, runs, 1)
	id := runs[0].(map[string]any)["id"].(string)
	assert.Equal(t, "101", runs[0].(map[string]any)["room"])

	rec = env.do(t, http.MethodGet, "/api/ingestions/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, decode(t, rec)["id"])

	rec = env.do(t, http.MethodGet, "/api/ingestions/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/ingestions?limit=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthNotConfigured(t *testing.T) {
	env := setup(t)

	rec := env.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])

	rec = env.do(t, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadinessWithDependencies(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	hc := NewHealthChecker(db, rdb)

	mock.ExpectPing()
	rec := httptest.NewRecorder()
	hc.HandleReadiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["ready"])

	mock.ExpectPing().WillReturnError(errors.New("db gone"))
	rec = httptest.NewRecorder()
	hc.HandleReadiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	checks := decode(t, rec)["checks"].(map[string]any)
	assert.Equal(t, "down", checks["database"].(map[string]any)["status"])
	assert.Equal(t, "up", checks["redis"].(map[string]any)["status"])
}
