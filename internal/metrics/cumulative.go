package metrics

import (
	"fmt"

	"github.com/ignite/meter-dashboard/internal/csvingest"
)

// CumulativeCost is the budget-trend chart: running cost against a flat
// budget line.
type CumulativeCost struct {
	Labels         []string `json:"labels"`
	CumulativeCost Series   `json:"cumulativeCost"`
	BudgetLine     Series   `json:"budgetLine"`
	Total          float64  `json:"total"`
	Limit          float64  `json:"budgetLimit"`
}

// Cumulative runs a prefix sum of cost_baht over every reading and emits the
// sampled points. The last emitted value always equals Total.
func Cumulative(readings []csvingest.Reading, cfg Config) CumulativeCost {
	cfg = cfg.withDefaults()
	indices := SampleIndices(len(readings), cfg.SampleThreshold, cfg.SampleStep)
	out := CumulativeCost{
		Labels:         make([]string, 0, len(indices)),
		CumulativeCost: make(Series, 0, len(indices)),
		BudgetLine:     make(Series, 0, len(indices)),
		Limit:          cfg.BudgetLimit,
	}

	next := 0
	for i, r := range readings {
		out.Total += r.Record.FloatOr(csvingest.ColCost, 0)
		if next >= len(indices) || indices[next] != i {
			continue
		}
		next++
		out.Labels = append(out.Labels, DateLabel(r))
		out.CumulativeCost = append(out.CumulativeCost, out.Total)
		out.BudgetLine = append(out.BudgetLine, cfg.BudgetLimit)
	}
	return out
}

// SampleIndices returns the indices of an n-point series to display. Up to
// threshold points are all kept; beyond that only multiples of step and the
// final index are.
func SampleIndices(n, threshold, step int) []int {
	if n <= 0 {
		return nil
	}
	if step <= 0 {
		step = 1
	}
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if n <= threshold || i%step == 0 || i == n-1 {
			out = append(out, i)
		}
	}
	return out
}

// DateLabel formats a reading's date as day/month without padding.
func DateLabel(r csvingest.Reading) string {
	return fmt.Sprintf("%d/%d", r.At.Day(), int(r.At.Month()))
}
