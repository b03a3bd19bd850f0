package dashboard

import (
	"time"

	"github.com/ignite/meter-dashboard/internal/csvingest"
	"github.com/ignite/meter-dashboard/internal/metrics"
)

// RoomOption is one entry of the room selector.
type RoomOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// DashboardPage is the headline page.
type DashboardPage struct {
	TotalAmount     float64            `json:"totalAmount"`
	DisplayAmount   string             `json:"displayAmount"`
	StatusLevel     metrics.Level      `json:"statusLevel"`
	ProgressPercent float64            `json:"progressPercent"`
	ProgressText    string             `json:"progressText"`
	LastUpdateLabel string             `json:"lastUpdateLabel"`
	Style           metrics.LevelStyle `json:"style"`
	Empty           bool               `json:"empty"`
}

// UsagePage is the recent-usage line chart.
type UsagePage struct {
	Labels       []string        `json:"labels"`
	Values       metrics.Series  `json:"values"`
	Insight      metrics.Insight `json:"insight"`
	DatasetLabel string          `json:"datasetLabel"`
}

// BudgetPage is the cumulative cost chart with its budget line.
type BudgetPage struct {
	Labels          []string       `json:"labels"`
	CumulativeCost  metrics.Series `json:"cumulativeCost"`
	BudgetLine      metrics.Series `json:"budgetLine"`
	Total           float64        `json:"total"`
	CostLabel       string         `json:"costLabel"`
	BudgetLineLabel string         `json:"budgetLineLabel"`
}

// BreakdownPage is the day/night doughnut.
type BreakdownPage struct {
	DayUsage     float64 `json:"dayUsage"`
	NightUsage   float64 `json:"nightUsage"`
	DayPercent   int     `json:"dayPercent"`
	NightPercent int     `json:"nightPercent"`
	DayLegend    string  `json:"dayLegend"`
	NightLegend  string  `json:"nightLegend"`
}

// Pages is everything one ingestion produces for one room selection.
type Pages struct {
	Room        string          `json:"room"`
	RoomLabel   string          `json:"roomLabel"`
	Rooms       []RoomOption    `json:"rooms"`
	Dashboard   DashboardPage   `json:"dashboard"`
	Usage       UsagePage       `json:"usage"`
	Budget      BudgetPage      `json:"budget"`
	Breakdown   BreakdownPage   `json:"breakdown"`
	Stats       csvingest.Stats `json:"stats"`
	Source      string          `json:"source"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// Payload returns the payload of a single page, or nil for an unknown page.
func (p *Pages) Payload(page Page) any {
	switch page {
	case PageDashboard:
		return p.Dashboard
	case PageUsage:
		return p.Usage
	case PageBudget:
		return p.Budget
	case PageBreakdown:
		return p.Breakdown
	default:
		return nil
	}
}

const (
	usageDatasetLabel = "การใช้ไฟ (kWh)"
	costDatasetLabel  = "ค่าไฟสะสมจริง"
)
