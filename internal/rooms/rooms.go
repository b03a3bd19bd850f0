// Package rooms enumerates the rooms present in a reading set and narrows a
// set to one room.
package rooms

import (
	"sort"
	"strings"

	"github.com/ignite/meter-dashboard/internal/csvingest"
)

// All selects every room.
const All = "all"

// List returns the distinct non-empty room labels in records. Numeric labels
// come first in ascending numeric order; other labels follow lexically.
func List(records []csvingest.Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range records {
		room := rec.Room()
		if room == "" || seen[room] {
			continue
		}
		seen[room] = true
		out = append(out, room)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, aNum := csvingest.LeadingFloat(out[i])
		b, bNum := csvingest.LeadingFloat(out[j])
		switch {
		case aNum && bNum:
			if a != b {
				return a < b
			}
			return out[i] < out[j]
		case aNum != bNum:
			return aNum
		default:
			return out[i] < out[j]
		}
	})
	return out
}

// IsAll reports whether room selects every room.
func IsAll(room string) bool {
	room = strings.TrimSpace(room)
	return room == "" || strings.EqualFold(room, All)
}

// Filter returns the readings whose trimmed room label equals the trimmed
// room, so every label List returns selects exactly its own readings. The
// input slice is returned as is when room selects every room.
func Filter(readings []csvingest.Reading, room string) []csvingest.Reading {
	if IsAll(room) {
		return readings
	}
	want := strings.TrimSpace(room)
	out := make([]csvingest.Reading, 0, len(readings))
	for _, r := range readings {
		if r.Record.Room() == want {
			out = append(out, r)
		}
	}
	return out
}
