package metrics

import (
	"math"

	"github.com/ignite/meter-dashboard/internal/csvingest"
)

// DayNight splits kwh_usage between day and night hours.
type DayNight struct {
	DayUsage     float64 `json:"dayUsage"`
	NightUsage   float64 `json:"nightUsage"`
	DayPercent   int     `json:"dayPercent"`
	NightPercent int     `json:"nightPercent"`
}

// IsDay reports whether hour falls in [start, end).
func IsDay(hour, start, end int) bool {
	return hour >= start && hour < end
}

// Breakdown sums kwh_usage per bucket by the hour of each reading's parsed
// time. Non-numeric usage counts as zero.
func Breakdown(readings []csvingest.Reading, cfg Config) DayNight {
	cfg = cfg.withDefaults()
	var out DayNight
	for _, r := range readings {
		kwh := r.Record.FloatOr(csvingest.ColUsage, 0)
		if IsDay(r.At.Hour(), cfg.DayStartHour, cfg.DayEndHour) {
			out.DayUsage += kwh
		} else {
			out.NightUsage += kwh
		}
	}

	total := out.DayUsage + out.NightUsage
	if total > 0 && !math.IsInf(total, 0) {
		out.DayPercent = int(math.Round(out.DayUsage / total * 100))
		out.NightPercent = int(math.Round(out.NightUsage / total * 100))
	}
	return out
}
