package metrics

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/meter-dashboard/internal/csvingest"
)

func at(day, hour int) time.Time {
	return time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC)
}

func rd(t time.Time, fields map[string]string) csvingest.Reading {
	rec := csvingest.Record{csvingest.ColTimestamp: t.Format("2006-01-02 15:04:05")}
	for k, v := range fields {
		rec[k] = v
	}
	return csvingest.Reading{Record: rec, At: t}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelHigh, ParseLevel(" HIGH "))
	assert.Equal(t, LevelCritical, ParseLevel("critical"))
	assert.Equal(t, LevelWarning, ParseLevel("Warning"))
	assert.Equal(t, LevelNormal, ParseLevel(""))
	assert.Equal(t, LevelNormal, ParseLevel("extreme"))

	assert.Equal(t, "#FFC107", LevelWarning.Style().BarColor)
	assert.Equal(t, "#F9A825", LevelWarning.Style().Color)
	assert.Equal(t, "status-critical", LevelCritical.Style().CSSClass)
	assert.Equal(t, "NORMAL", Level("bogus").Style().Label)
}

func TestBudgetLastPaid(t *testing.T) {
	readings := []csvingest.Reading{
		rd(at(1, 8), map[string]string{"amount_paid": "1,200", "level": "warning"}),
		rd(at(1, 9), map[string]string{"amount_paid": "abc", "level": "critical"}),
		rd(at(1, 10), map[string]string{"amount_paid": "", "level": "high"}),
	}

	got := Budget(readings, DefaultConfig())
	assert.Equal(t, 1200.0, got.Amount)
	assert.Equal(t, LevelWarning, got.Level)
	assert.Equal(t, 80.0, got.Progress)
	assert.Equal(t, "2024-01-01 08:00:00", got.LastUpdate)
	assert.False(t, got.Empty)
}

func TestBudgetFallsBackToLastReading(t *testing.T) {
	readings := []csvingest.Reading{
		rd(at(1, 8), map[string]string{"level": "warning"}),
		rd(at(1, 9), map[string]string{"level": "HIGH"}),
	}

	got := Budget(readings, DefaultConfig())
	assert.Equal(t, 0.0, got.Amount)
	assert.Equal(t, LevelHigh, got.Level)
	assert.Equal(t, "#FF5252", got.Style.BarColor)
	assert.Equal(t, "2024-01-01 09:00:00", got.LastUpdate)
}

func TestBudgetCostSum(t *testing.T) {
	readings := []csvingest.Reading{
		rd(at(1, 8), map[string]string{"cost_baht": "1000", "amount_paid": "5"}),
		rd(at(1, 9), map[string]string{"cost_baht": "900", "level": "critical"}),
	}
	cfg := DefaultConfig()
	cfg.TotalMode = TotalCostSum

	got := Budget(readings, cfg)
	assert.Equal(t, 1900.0, got.Amount)
	assert.Equal(t, 100.0, got.Progress)
	assert.Equal(t, LevelCritical, got.Level)
}

func TestBudgetEmpty(t *testing.T) {
	got := Budget(nil, Config{})
	assert.True(t, got.Empty)
	assert.Zero(t, got.Amount)
	assert.Equal(t, LevelNormal, got.Level)
	assert.Equal(t, 1500.0, got.Limit)
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 50.0, Progress(750, 1500))
	assert.Equal(t, 100.0, Progress(3000, 1500))
	assert.Equal(t, 0.0, Progress(10, 0))
}

func TestRecent(t *testing.T) {
	var readings []csvingest.Reading
	for i := 0; i < 25; i++ {
		readings = append(readings, rd(at(1, 0).Add(time.Duration(i)*time.Hour), map[string]string{
			"kwh_usage": fmt.Sprint(i),
		}))
	}
	readings[24].Record["kwh_usage"] = "n/a"
	readings[24].Record["room_number"] = "3"
	readings[24].Record["kwh_reading"] = "1234"
	readings[24].Record["cost_baht"] = "4.5"

	got := Recent(readings, DefaultConfig())
	require.Len(t, got.Labels, 20)
	require.Len(t, got.Values, 20)
	assert.Equal(t, "05:00", got.Labels[0])
	assert.Equal(t, 5.0, got.Values[0])
	assert.True(t, math.IsNaN(got.Values[19]))

	assert.Equal(t, Insight{
		Room:         "3",
		MeterReading: "1234 หน่วย",
		Power:        "-",
		Cost:         "4.50 ฿",
	}, got.Insight)
}

func TestRecentEmpty(t *testing.T) {
	got := Recent(nil, DefaultConfig())
	assert.Empty(t, got.Labels)
	assert.Equal(t, Placeholder, got.Insight.Room)
	assert.Equal(t, Placeholder, got.Insight.Cost)
}

func TestTimeLabel(t *testing.T) {
	assert.Equal(t, "21:05", TimeLabel("2024-01-31 21:05:59"))
	assert.Equal(t, "8:05", TimeLabel("2024-01-31 8:05"))
	assert.Equal(t, "2024-01-31", TimeLabel("2024-01-31"))
}

func TestSeriesJSON(t *testing.T) {
	b, err := json.Marshal(Series{1.5, math.NaN(), 2, math.Inf(1)})
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5,null,2,null]`, string(b))

	var back Series
	require.NoError(t, json.Unmarshal(b, &back))
	require.Len(t, back, 4)
	assert.True(t, math.IsNaN(back[1]))

	b, err = json.Marshal(Series(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestSampleIndices(t *testing.T) {
	got := SampleIndices(60, 50, 5)
	assert.Equal(t, []int{0, 5, 10, 15, 20, 25, 30, 35, 40, 45, 50, 55, 59}, got)
	assert.Len(t, got, 13)

	assert.Len(t, SampleIndices(50, 50, 5), 50)
	assert.Equal(t, []int{0, 5, 10, 15, 20, 25, 30, 35, 40, 45, 50}, SampleIndices(51, 50, 5))
	assert.Nil(t, SampleIndices(0, 50, 5))
}

func TestCumulativeSampling(t *testing.T) {
	var readings []csvingest.Reading
	want := 0.0
	for i := 0; i < 60; i++ {
		cost := fmt.Sprint(i + 1)
		if i == 7 {
			cost = "oops"
		} else {
			want += float64(i + 1)
		}
		readings = append(readings, rd(at(1, 0).Add(time.Duration(i)*time.Hour), map[string]string{"cost_baht": cost}))
	}

	got := Cumulative(readings, DefaultConfig())
	require.Len(t, got.CumulativeCost, 13)
	require.Len(t, got.BudgetLine, 13)
	require.Len(t, got.Labels, 13)
	assert.Equal(t, want, got.CumulativeCost[12])
	assert.Equal(t, want, got.Total)
	assert.Equal(t, 1500.0, got.BudgetLine[0])
	assert.Equal(t, "1/1", got.Labels[0])
	assert.Equal(t, "3/1", got.Labels[12])
}

func TestCumulativeEmpty(t *testing.T) {
	got := Cumulative(nil, DefaultConfig())
	assert.Empty(t, got.CumulativeCost)
	assert.Zero(t, got.Total)
}

func TestBreakdownHourBoundaries(t *testing.T) {
	tests := []struct {
		hour int
		day  bool
	}{
		{8, false},
		{9, true},
		{21, true},
		{22, false},
		{0, false},
	}
	for _, tt := range tests {
		got := Breakdown([]csvingest.Reading{rd(at(1, tt.hour), map[string]string{"kwh_usage": "2"})}, DefaultConfig())
		if tt.day {
			assert.Equal(t, 2.0, got.DayUsage, "hour %d", tt.hour)
			assert.Equal(t, 100, got.DayPercent, "hour %d", tt.hour)
		} else {
			assert.Equal(t, 2.0, got.NightUsage, "hour %d", tt.hour)
			assert.Equal(t, 100, got.NightPercent, "hour %d", tt.hour)
		}
	}
}

func TestBreakdownPercentages(t *testing.T) {
	readings := []csvingest.Reading{
		rd(at(1, 10), map[string]string{"kwh_usage": "2"}),
		rd(at(1, 23), map[string]string{"kwh_usage": "1"}),
		rd(at(1, 12), map[string]string{"kwh_usage": "bad"}),
	}
	got := Breakdown(readings, DefaultConfig())
	assert.Equal(t, DayNight{DayUsage: 2, NightUsage: 1, DayPercent: 67, NightPercent: 33}, got)
}

func TestBreakdownOverflowSkipsPercentages(t *testing.T) {
	readings := []csvingest.Reading{
		rd(at(1, 10), map[string]string{"kwh_usage": "1e308"}),
		rd(at(1, 11), map[string]string{"kwh_usage": "1e308"}),
	}
	got := Breakdown(readings, DefaultConfig())
	assert.True(t, math.IsInf(got.DayUsage, 1))
	assert.Equal(t, 0, got.DayPercent)
	assert.Equal(t, 0, got.NightPercent)
}

func TestBreakdownCustomWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DayStartHour, cfg.DayEndHour = 6, 18
	got := Breakdown([]csvingest.Reading{rd(at(1, 7), map[string]string{"kwh_usage": "1"})}, cfg)
	assert.Equal(t, 1.0, got.DayUsage)
}

func TestComputeEndToEnd(t *testing.T) {
	text := "timestamp,room_number,cost_baht\n2024-01-01 08:00,1,100\n2024-01-01 09:00,1,50\n"
	readings := csvingest.Parse(text, csvingest.Options{}).Readings

	got := Compute(readings, DefaultConfig())
	assert.Equal(t, Series{100, 150}, got.Cumulative.CumulativeCost)
	assert.Equal(t, 150.0, got.Cumulative.Total)
	assert.Equal(t, DayNight{}, got.DayNight)
	assert.Equal(t, 0.0, got.Budget.Amount)

	cfg := DefaultConfig()
	cfg.TotalMode = TotalCostSum
	assert.Equal(t, 150.0, Compute(readings, cfg).Budget.Amount)
}
