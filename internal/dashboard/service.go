// Package dashboard turns one fetch of the meter sheet into the payloads of
// the four dashboard pages.
package dashboard

import (
	"context"
	"time"

	"github.com/ignite/meter-dashboard/internal/config"
	"github.com/ignite/meter-dashboard/internal/csvingest"
	"github.com/ignite/meter-dashboard/internal/metrics"
	"github.com/ignite/meter-dashboard/internal/pkg/logger"
	"github.com/ignite/meter-dashboard/internal/rooms"
	"github.com/ignite/meter-dashboard/internal/source"
)

// Options configures a Service.
type Options struct {
	Metrics  metrics.Config
	Location *time.Location
	Copy     Copy
	Policies *csvingest.PolicyTable
	// Board, when set, receives every built page set.
	Board *Board
	Now   func() time.Time
}

// Service builds dashboard pages. It holds no per-request state and is safe
// for concurrent use.
type Service struct {
	fetcher  source.Fetcher
	metrics  metrics.Config
	loc      *time.Location
	policies *csvingest.PolicyTable
	copy     *copywriter
	board    *Board
	now      func() time.Time
}

// NewService validates the copy templates and returns a Service.
func NewService(fetcher source.Fetcher, opts Options) (*Service, error) {
	c := opts.Copy
	if c == (Copy{}) {
		c = DefaultCopy()
	}
	cw, err := newCopywriter(c)
	if err != nil {
		return nil, err
	}
	mcfg := opts.Metrics
	if mcfg == (metrics.Config{}) {
		mcfg = metrics.DefaultConfig()
	}
	if mcfg.Currency == "" {
		mcfg.Currency = metrics.DefaultConfig().Currency
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		fetcher:  fetcher,
		metrics:  mcfg,
		loc:      loc,
		policies: opts.Policies,
		copy:     cw,
		board:    opts.Board,
		now:      now,
	}, nil
}

// Source names where the service reads the sheet from.
func (s *Service) Source() string { return s.fetcher.Location() }

// Build fetches the sheet once and computes every page for room ("all" or
// empty for every room). A fetch failure or a sheet without usable rows is
// returned as *IngestError. A room with no readings is not an error: the
// pages carry placeholders instead.
func (s *Service) Build(ctx context.Context, room string) (*Pages, error) {
	text, err := s.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return s.BuildFromText(text, room)
}

// Fetch reads the sheet once. Callers building several rooms from one
// fetch pass the text to BuildFromText.
func (s *Service) Fetch(ctx context.Context) (string, error) {
	text, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return "", &IngestError{Message: s.copy.copy.FetchError, Err: err}
	}
	return text, nil
}

// BuildFromText runs the pipeline over CSV text that was already fetched.
func (s *Service) BuildFromText(text, room string) (*Pages, error) {
	res := csvingest.Parse(text, csvingest.Options{Location: s.loc, Policies: s.policies})
	if len(res.Records) == 0 {
		return nil, &IngestError{Message: s.copy.copy.EmptyError, Err: ErrNoRecords}
	}

	if rooms.IsAll(room) {
		room = rooms.All
	}
	roomList := rooms.List(res.Records)
	selected := rooms.Filter(res.Readings, room)
	m := metrics.Compute(selected, s.metrics)

	pages := &Pages{
		Room:        room,
		Rooms:       s.roomOptions(roomList),
		Dashboard:   s.dashboardPage(m.Budget),
		Usage:       usagePage(m.Usage),
		Budget:      s.budgetPage(m.Cumulative),
		Breakdown:   s.breakdownPage(m.DayNight),
		Stats:       res.Stats,
		Source:      s.fetcher.Location(),
		GeneratedAt: s.now().UTC(),
	}
	pages.RoomLabel = pages.Rooms[0].Label
	if room != rooms.All {
		pages.RoomLabel = s.copy.roomOption(room)
	}

	if s.board != nil {
		// Chart failures never fail the build; the payloads are still valid.
		if err := s.board.Publish(pages); err != nil {
			logger.Warn("publishing charts", "room", room, "error", err)
		}
	}
	return pages, nil
}

func (s *Service) roomOptions(list []string) []RoomOption {
	out := make([]RoomOption, 0, len(list)+1)
	out = append(out, RoomOption{Value: rooms.All, Label: s.copy.allRooms(len(list))})
	for _, r := range list {
		out = append(out, RoomOption{Value: r, Label: s.copy.roomOption(r)})
	}
	return out
}

func (s *Service) dashboardPage(b metrics.BudgetStatus) DashboardPage {
	p := DashboardPage{
		TotalAmount:     b.Amount,
		DisplayAmount:   FormatAmount(b.Amount),
		StatusLevel:     b.Level,
		ProgressPercent: b.Progress,
		ProgressText:    s.copy.progressText(b.Amount, b.Limit, s.metrics.Currency),
		Style:           b.Style,
		Empty:           b.Empty,
	}
	switch {
	case b.Empty:
		p.LastUpdateLabel = s.copy.copy.NoRoomData
	case b.LastUpdate != "":
		p.LastUpdateLabel = s.copy.lastUpdate(b.LastUpdate)
	}
	return p
}

func usagePage(u metrics.RecentUsage) UsagePage {
	return UsagePage{
		Labels:       u.Labels,
		Values:       u.Values,
		Insight:      u.Insight,
		DatasetLabel: usageDatasetLabel,
	}
}

func (s *Service) budgetPage(c metrics.CumulativeCost) BudgetPage {
	return BudgetPage{
		Labels:          c.Labels,
		CumulativeCost:  c.CumulativeCost,
		BudgetLine:      c.BudgetLine,
		Total:           c.Total,
		CostLabel:       costDatasetLabel,
		BudgetLineLabel: s.copy.budgetLine(c.Limit),
	}
}

func (s *Service) breakdownPage(d metrics.DayNight) BreakdownPage {
	return BreakdownPage{
		DayUsage:     d.DayUsage,
		NightUsage:   d.NightUsage,
		DayPercent:   d.DayPercent,
		NightPercent: d.NightPercent,
		DayLegend:    s.copy.dayLegend(d.DayPercent),
		NightLegend:  s.copy.nightLegend(d.NightPercent),
	}
}

// MetricsConfig maps the budget section of the config onto metrics.Config.
func MetricsConfig(b config.BudgetConfig) metrics.Config {
	return metrics.Config{
		BudgetLimit:     b.Limit,
		DayStartHour:    b.DayStartHour,
		DayEndHour:      b.DayEndHour,
		RecentWindow:    b.RecentWindow,
		SampleThreshold: b.SampleThreshold,
		SampleStep:      b.SampleStep,
		Currency:        b.Currency,
		TotalMode:       metrics.TotalMode(b.TotalMode),
	}
}

// NewFromConfig wires the fetcher, metrics settings and copy from cfg.
// board may be nil.
func NewFromConfig(ctx context.Context, cfg *config.Config, board *Board) (*Service, error) {
	fetcher, err := source.New(ctx, cfg.Sheet)
	if err != nil {
		return nil, err
	}
	return NewService(fetcher, Options{
		Metrics:  MetricsConfig(cfg.Budget),
		Location: cfg.Budget.Location(),
		Copy:     CopyFromConfig(cfg.Copy),
		Board:    board,
	})
}
