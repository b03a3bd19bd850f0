package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/meter-dashboard/internal/config"
	"github.com/ignite/meter-dashboard/internal/metrics"
	"github.com/ignite/meter-dashboard/internal/pkg/logger"
	"github.com/ignite/meter-dashboard/internal/source"
)

type stubFetcher struct {
	text  string
	err   error
	calls int
}

func (f *stubFetcher) Fetch(context.Context) (string, error) {
	f.calls++
	return f.text, f.err
}

func (f *stubFetcher) Location() string { return "stub://sheet" }

const meterCSV = "\uFEFFtimestamp,room_number,cost_baht,kwh_usage,kwh_reading,power_watts,level,amount_paid,amount_paid\n" +
	"2024-01-01 08:00,1,100,1.5,1000,300,normal,,\n" +
	"2024-01-01 09:00,1,50,2.5,1002,450,warning,1,200,\n" +
	"2024-01-01 10:00,2,20,3,2000,500,critical,,\n" +
	"bad-date,2,999,9,0,0,high,,\n"

func newService(t *testing.T, f source.Fetcher, opts Options) *Service {
	t.Helper()
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC) }
	}
	s, err := NewService(f, opts)
	require.NoError(t, err)
	return s
}

func TestBuildAllRooms(t *testing.T) {
	f := &stubFetcher{text: meterCSV}
	s := newService(t, f, Options{})

	pages, err := s.Build(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls)

	assert.Equal(t, "all", pages.Room)
	assert.Equal(t, "ภาพรวมทุกห้อง (2 ห้อง)", pages.RoomLabel)
	assert.Equal(t, []RoomOption{
		{Value: "all", Label: "ภาพรวมทุกห้อง (2 ห้อง)"},
		{Value: "1", Label: "ห้อง 1"},
		{Value: "2", Label: "ห้อง 2"},
	}, pages.Rooms)

	// The 09:00 row's amount_paid is split by the unquoted comma: "1" then "200".
	assert.Equal(t, 200.0, pages.Dashboard.TotalAmount)
	assert.Equal(t, metrics.LevelWarning, pages.Dashboard.StatusLevel)
	assert.Equal(t, "200 ฿ / 1500 ฿", pages.Dashboard.ProgressText)
	assert.Equal(t, "อัปเดตล่าสุด: 2024-01-01 09:00", pages.Dashboard.LastUpdateLabel)

	assert.Equal(t, []string{"08:00", "09:00", "10:00"}, pages.Usage.Labels)
	assert.Equal(t, "2", pages.Usage.Insight.Room)
	assert.Equal(t, "20.00 ฿", pages.Usage.Insight.Cost)

	assert.Equal(t, metrics.Series{100, 150, 170}, pages.Budget.CumulativeCost)
	assert.Equal(t, "งบประมาณ (1500 บ.)", pages.Budget.BudgetLineLabel)

	assert.Equal(t, 5.5, pages.Breakdown.DayUsage)
	assert.Equal(t, 1.5, pages.Breakdown.NightUsage)
	assert.Equal(t, "กลางวัน 79% (Peak)", pages.Breakdown.DayLegend)
	assert.Equal(t, "กลางคืน 21% (Off-Peak)", pages.Breakdown.NightLegend)

	assert.Equal(t, 4, pages.Stats.RowsSeen)
	assert.Equal(t, 1, pages.Stats.DroppedBadTimestamp)
	assert.Equal(t, "stub://sheet", pages.Source)
}

func TestBuildSingleRoom(t *testing.T) {
	s := newService(t, &stubFetcher{text: meterCSV}, Options{})

	pages, err := s.Build(context.Background(), "02")
	require.NoError(t, err)
	assert.Equal(t, "ห้อง 02", pages.RoomLabel)
	assert.Equal(t, metrics.Series{20}, pages.Budget.CumulativeCost)
	assert.Equal(t, metrics.LevelCritical, pages.Dashboard.StatusLevel)
	assert.Equal(t, "#FF9800", pages.Dashboard.Style.BarColor)
}

func TestBuildUnknownRoomIsNotFatal(t *testing.T) {
	s := newService(t, &stubFetcher{text: meterCSV}, Options{})

	pages, err := s.Build(context.Background(), "99")
	require.NoError(t, err)
	assert.True(t, pages.Dashboard.Empty)
	assert.Equal(t, "0", pages.Dashboard.DisplayAmount)
	assert.Equal(t, "ไม่พบข้อมูลของห้องนี้", pages.Dashboard.LastUpdateLabel)
	assert.Empty(t, pages.Usage.Labels)
	assert.Equal(t, "-", pages.Usage.Insight.Room)
	assert.Equal(t, 0, pages.Breakdown.DayPercent)
}

func TestBuildFetchFailure(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	s := newService(t, &stubFetcher{err: cause}, Options{})

	_, err := s.Build(context.Background(), "all")
	require.Error(t, err)

	var ie *IngestError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "เชื่อมต่อ Google Sheet ไม่สำเร็จ", ie.Message)
	assert.ErrorIs(t, err, cause)

	msg, ok := UserMessage(err)
	assert.True(t, ok)
	assert.Equal(t, ie.Message, msg)
}

func TestBuildEmptySheet(t *testing.T) {
	for _, text := range []string{"", "timestamp,room_number", "timestamp,room_number\n,\n,1\n"} {
		s := newService(t, &stubFetcher{text: text}, Options{})
		_, err := s.Build(context.Background(), "all")
		assert.ErrorIs(t, err, ErrNoRecords, "text %q", text)
		msg, _ := UserMessage(err)
		assert.Equal(t, "ไม่พบข้อมูลใน Google Sheet", msg)
	}
}

func TestBuildOnlyBadTimestampsIsNotFatal(t *testing.T) {
	s := newService(t, &stubFetcher{text: "timestamp,room_number\nyesterday,1\n"}, Options{})
	pages, err := s.Build(context.Background(), "all")
	require.NoError(t, err)
	assert.True(t, pages.Dashboard.Empty)
	assert.Len(t, pages.Rooms, 2)
}

func TestBuildCostSumAndCustomCopy(t *testing.T) {
	cfg := config.BudgetConfig{Limit: 100, Currency: "THB", DayStartHour: 9, DayEndHour: 22, TotalMode: "cost_sum"}
	s := newService(t, &stubFetcher{text: meterCSV}, Options{
		Metrics: MetricsConfig(cfg),
		Copy:    CopyFromConfig(config.CopyConfig{ProgressText: "{{ spent | amount }}/{{ limit }} {{ currency }}"}),
	})

	pages, err := s.Build(context.Background(), "all")
	require.NoError(t, err)
	assert.Equal(t, 170.0, pages.Dashboard.TotalAmount)
	assert.Equal(t, 100.0, pages.Dashboard.ProgressPercent)
	assert.Equal(t, "170/100 THB", pages.Dashboard.ProgressText)
	assert.Equal(t, "อัปเดตล่าสุด: 2024-01-01 10:00", pages.Dashboard.LastUpdateLabel)
}

func TestBuildPublishesToBoard(t *testing.T) {
	sink := NewMemorySink()
	s := newService(t, &stubFetcher{text: meterCSV}, Options{Board: NewBoard(sink)})

	_, err := s.Build(context.Background(), "1")
	require.NoError(t, err)
	_, err = s.Build(context.Background(), "2")
	require.NoError(t, err)

	assert.Equal(t, len(AllPages), sink.Live())
	payload, ok := sink.Latest(PageBudget)
	require.True(t, ok)
	assert.Equal(t, metrics.Series{20}, payload.(BudgetPage).CumulativeCost)
}

func TestBuildLogsChartFailure(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	s := newService(t, &stubFetcher{text: meterCSV}, Options{Board: NewBoard(&recordingSink{fail: true})})

	pages, err := s.Build(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "1", pages.Room)
	assert.Contains(t, buf.String(), `"msg":"publishing charts"`)
	assert.Contains(t, buf.String(), "canvas gone")
}

func TestPagesJSON(t *testing.T) {
	s := newService(t, &stubFetcher{text: "timestamp,kwh_usage\n2024-01-01 10:00,n/a\n"}, Options{})
	pages, err := s.Build(context.Background(), "all")
	require.NoError(t, err)

	b, err := json.Marshal(pages.Usage)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"values":[null]`)
}

func TestBuildNonFiniteCellsDegrade(t *testing.T) {
	text := "timestamp,room_number,cost_baht,kwh_usage\n" +
		"2024-01-01 10:00,1,1e999,Infinity\n" +
		"2024-01-01 11:00,1,5,2\n"
	s := newService(t, &stubFetcher{text: text}, Options{Metrics: metrics.Config{TotalMode: metrics.TotalCostSum}})

	pages, err := s.Build(context.Background(), "all")
	require.NoError(t, err)
	assert.Equal(t, 5.0, pages.Dashboard.TotalAmount)
	assert.Equal(t, 5.0, pages.Budget.Total)
	assert.Equal(t, 2.0, pages.Breakdown.DayUsage)
	assert.Equal(t, 100, pages.Breakdown.DayPercent)

	b, err := json.Marshal(pages)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"values":[null,2]`)
}

func TestNewServiceRejectsBadTemplate(t *testing.T) {
	c := DefaultCopy()
	c.RoomOption = "ห้อง {% if room %}{{ room }}"
	_, err := NewService(&stubFetcher{}, Options{Copy: c})
	assert.Error(t, err)
}

func TestNewFromConfigReadsLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meter.csv")
	require.NoError(t, os.WriteFile(path, []byte(meterCSV), 0o644))

	cfg := &config.Config{
		Sheet:  config.SheetConfig{CSVURL: path},
		Budget: config.BudgetConfig{Limit: 1000, Currency: "THB", Timezone: "UTC"},
	}
	s, err := NewFromConfig(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, path, s.Source())

	text, err := s.Fetch(context.Background())
	require.NoError(t, err)
	pages, err := s.BuildFromText(text, "1")
	require.NoError(t, err)
	assert.Equal(t, "1", pages.Room)
	require.NotEmpty(t, pages.Budget.BudgetLine)
	assert.Equal(t, 1000.0, pages.Budget.BudgetLine[0])
}
