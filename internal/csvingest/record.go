package csvingest

import (
	"strings"
	"time"
)

// Column is a normalized (lower-cased, trimmed) header name.
type Column = string

// Logical columns of the meter sheet. Presence is not enforced: a missing
// column simply reads as "" downstream.
const (
	ColTimestamp  Column = "timestamp"
	ColRoom       Column = "room_number"
	ColCost       Column = "cost_baht"
	ColUsage      Column = "kwh_usage"
	ColReading    Column = "kwh_reading"
	ColPower      Column = "power_watts"
	ColLevel      Column = "level"
	ColAmountPaid Column = "amount_paid"
)

// Record maps a column name to its single cleaned value. Numeric columns
// stay strings here; callers coerce at the point of use.
type Record map[Column]string

// Get returns the value for col, or "" when the column is absent.
func (r Record) Get(col Column) string {
	return r[col]
}

// Timestamp returns the raw timestamp string.
func (r Record) Timestamp() string { return r[ColTimestamp] }

// Room returns the trimmed room label.
func (r Record) Room() string { return strings.TrimSpace(r[ColRoom]) }

// Reading is a Record that survived filtering, paired with its parsed time.
type Reading struct {
	Record Record
	At     time.Time
}
