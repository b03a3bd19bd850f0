package csvingest

import (
	"sort"
	"strings"
	"time"
)

// timestampLayouts are tried in order after the first space has been
// replaced by "T". Single-digit month, day and hour fields are accepted, as
// are fractional seconds.
var timestampLayouts = []string{
	"2006-1-2T15:04:05",
	"2006-1-2T15:04",
	"2006-1-2",
	time.RFC3339,
}

// ParseTimestamp parses a sheet timestamp such as "2024-01-31 21:05:00".
// Values without a zone are interpreted in loc (UTC when nil).
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	s = strings.Replace(s, " ", "T", 1)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FilterAndSort drops records whose timestamp does not parse and returns the
// rest in ascending time order. Records sharing an instant keep their input
// order.
func FilterAndSort(records []Record, loc *time.Location) []Reading {
	readings, _ := filterAndSort(records, loc)
	return readings
}

func filterAndSort(records []Record, loc *time.Location) ([]Reading, int) {
	readings := make([]Reading, 0, len(records))
	dropped := 0
	for _, rec := range records {
		at, ok := ParseTimestamp(rec.Timestamp(), loc)
		if !ok {
			dropped++
			continue
		}
		readings = append(readings, Reading{Record: rec, At: at})
	}
	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].At.Before(readings[j].At)
	})
	return readings, dropped
}
