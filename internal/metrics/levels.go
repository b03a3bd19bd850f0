package metrics

import "strings"

// Level is the status level read from a reading's level column.
type Level string

const (
	LevelNormal   Level = "normal"
	LevelWarning  Level = "warning"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// LevelStyle is the fixed display data attached to a Level.
type LevelStyle struct {
	Level       Level  `json:"level"`
	Label       string `json:"label"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
	BarColor    string `json:"barColor"`
	CSSClass    string `json:"cssClass"`
}

var levelStyles = map[Level]LevelStyle{
	LevelNormal: {
		Level:       LevelNormal,
		Label:       "NORMAL",
		Title:       "Normal",
		Description: "สถานะ : ปกติ",
		Color:       "#27AE60",
		BarColor:    "#27AE60",
		CSSClass:    "status-normal",
	},
	LevelWarning: {
		Level:       LevelWarning,
		Label:       "WARNING",
		Title:       "Warning",
		Description: "สถานะ : ไฟสูงกว่าปกติเล็กน้อย",
		Color:       "#F9A825",
		BarColor:    "#FFC107",
		CSSClass:    "status-warning",
	},
	LevelHigh: {
		Level:       LevelHigh,
		Label:       "HIGH",
		Title:       "High",
		Description: "สถานะ : ไฟสูงกว่าปกติ",
		Color:       "#FF5252",
		BarColor:    "#FF5252",
		CSSClass:    "status-high",
	},
	LevelCritical: {
		Level:       LevelCritical,
		Label:       "CRITICAL",
		Title:       "Critical",
		Description: "สถานะ : ไฟกำลังพุ่งสูง",
		Color:       "#FF9800",
		BarColor:    "#FF9800",
		CSSClass:    "status-critical",
	},
}

// ParseLevel maps a raw level cell to a Level. Unknown or empty values are
// normal.
func ParseLevel(s string) Level {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := levelStyles[l]; ok {
		return l
	}
	return LevelNormal
}

// Style returns the display data for l, falling back to normal.
func (l Level) Style() LevelStyle {
	if s, ok := levelStyles[l]; ok {
		return s
	}
	return levelStyles[LevelNormal]
}
