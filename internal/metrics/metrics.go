package metrics

import "github.com/ignite/meter-dashboard/internal/csvingest"

// Result bundles the four derivations for one reading set.
type Result struct {
	Budget     BudgetStatus   `json:"budget"`
	Usage      RecentUsage    `json:"usage"`
	Cumulative CumulativeCost `json:"cumulative"`
	DayNight   DayNight       `json:"dayNight"`
}

// Compute runs every derivation over readings.
func Compute(readings []csvingest.Reading, cfg Config) Result {
	return Result{
		Budget:     Budget(readings, cfg),
		Usage:      Recent(readings, cfg),
		Cumulative: Cumulative(readings, cfg),
		DayNight:   Breakdown(readings, cfg),
	}
}
