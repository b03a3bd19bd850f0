package metrics

import (
	"math"
	"strings"

	"github.com/ignite/meter-dashboard/internal/csvingest"
)

// BudgetStatus is the dashboard page's headline: the total, its share of
// the budget and the status level of the row the total was read from.
type BudgetStatus struct {
	Amount     float64    `json:"totalAmount"`
	Level      Level      `json:"statusLevel"`
	Style      LevelStyle `json:"style"`
	Progress   float64    `json:"progressPercent"`
	Limit      float64    `json:"budgetLimit"`
	LastUpdate string     `json:"lastUpdate"`
	Mode       TotalMode  `json:"totalMode"`
	Empty      bool       `json:"empty"`
}

// Budget computes the budget status for readings, which must be sorted
// oldest first.
func Budget(readings []csvingest.Reading, cfg Config) BudgetStatus {
	cfg = cfg.withDefaults()
	status := BudgetStatus{
		Level: LevelNormal,
		Style: LevelNormal.Style(),
		Limit: cfg.BudgetLimit,
		Mode:  cfg.TotalMode,
	}
	if len(readings) == 0 {
		status.Empty = true
		return status
	}

	target := readings[len(readings)-1].Record
	switch cfg.TotalMode {
	case TotalCostSum:
		for _, r := range readings {
			status.Amount += r.Record.FloatOr(csvingest.ColCost, 0)
		}
	default:
		if rec, amount, ok := lastPaid(readings); ok {
			target, status.Amount = rec, amount
		}
	}

	status.Level = ParseLevel(target.Get(csvingest.ColLevel))
	status.Style = status.Level.Style()
	status.LastUpdate = target.Timestamp()
	status.Progress = Progress(status.Amount, cfg.BudgetLimit)
	return status
}

// Progress returns amount as a percentage of limit, capped at 100.
func Progress(amount, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return math.Min(100, 100*amount/limit)
}

// lastPaid walks readings newest first and returns the first record whose
// amount_paid is numeric once thousands separators are removed.
func lastPaid(readings []csvingest.Reading) (csvingest.Record, float64, bool) {
	for i := len(readings) - 1; i >= 0; i-- {
		rec := readings[i].Record
		raw := strings.ReplaceAll(rec.Get(csvingest.ColAmountPaid), ",", "")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if amount, ok := csvingest.LeadingFloat(raw); ok {
			return rec, amount, true
		}
	}
	return nil, 0, false
}
