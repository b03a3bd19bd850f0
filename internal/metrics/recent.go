package metrics

import (
	"fmt"
	"math"
	"strings"

	"github.com/ignite/meter-dashboard/internal/csvingest"
)

// Placeholder is shown for an insight field with no value.
const Placeholder = "-"

// Insight describes the newest reading on the usage page.
type Insight struct {
	Room         string `json:"room"`
	MeterReading string `json:"meterReading"`
	Power        string `json:"power"`
	Cost         string `json:"cost"`
}

// RecentUsage is the usage page's line chart plus its insight panel.
type RecentUsage struct {
	Labels  []string `json:"labels"`
	Values  Series   `json:"values"`
	Insight Insight  `json:"insight"`
}

// Recent takes the last cfg.RecentWindow readings and emits an HH:MM label
// and the kwh_usage value for each. Non-numeric usage becomes NaN.
func Recent(readings []csvingest.Reading, cfg Config) RecentUsage {
	cfg = cfg.withDefaults()
	window := readings
	if len(window) > cfg.RecentWindow {
		window = window[len(window)-cfg.RecentWindow:]
	}

	out := RecentUsage{
		Labels: make([]string, 0, len(window)),
		Values: make(Series, 0, len(window)),
	}
	for _, r := range window {
		out.Labels = append(out.Labels, TimeLabel(r.Record.Timestamp()))
		out.Values = append(out.Values, r.Record.FloatOr(csvingest.ColUsage, math.NaN()))
	}

	if len(readings) == 0 {
		out.Insight = Insight{Room: Placeholder, MeterReading: Placeholder, Power: Placeholder, Cost: Placeholder}
		return out
	}
	out.Insight = insightFor(readings[len(readings)-1].Record, cfg.Currency)
	return out
}

// TimeLabel returns the first five characters of the time part of a raw
// timestamp, or the raw timestamp when it has no space.
func TimeLabel(ts string) string {
	parts := strings.Split(ts, " ")
	if len(parts) < 2 {
		return ts
	}
	r := []rune(parts[1])
	if len(r) > 5 {
		r = r[:5]
	}
	return string(r)
}

func insightFor(rec csvingest.Record, currency string) Insight {
	in := Insight{
		Room:         orPlaceholder(rec.Room(), ""),
		MeterReading: orPlaceholder(rec.Get(csvingest.ColReading), " หน่วย"),
		Power:        orPlaceholder(rec.Get(csvingest.ColPower), " W"),
		Cost:         Placeholder,
	}
	if cost, ok := rec.Float(csvingest.ColCost); ok {
		in.Cost = fmt.Sprintf("%.2f %s", cost, currency)
	}
	return in
}

func orPlaceholder(v, suffix string) string {
	if v == "" {
		return Placeholder
	}
	return v + suffix
}
