// Package metrics derives the dashboard quantities from a chronologically
// sorted reading set: budget status, recent usage, cumulative cost and the
// day/night split. Every derivation degrades to zeroed output on empty or
// malformed input and never returns an error.
package metrics

// TotalMode selects how the dashboard total is computed.
type TotalMode string

const (
	// TotalLastPaid shows the newest usable amount_paid value.
	TotalLastPaid TotalMode = "last_paid"
	// TotalCostSum shows the running sum of cost_baht.
	TotalCostSum TotalMode = "cost_sum"
)

// Config holds the overridable parameters of every derivation.
type Config struct {
	BudgetLimit     float64
	DayStartHour    int
	DayEndHour      int
	RecentWindow    int
	SampleThreshold int
	SampleStep      int
	Currency        string
	TotalMode       TotalMode
}

// DefaultConfig returns the stock dashboard parameters.
func DefaultConfig() Config {
	return Config{
		BudgetLimit:     1500,
		DayStartHour:    9,
		DayEndHour:      22,
		RecentWindow:    20,
		SampleThreshold: 50,
		SampleStep:      5,
		Currency:        "฿",
		TotalMode:       TotalLastPaid,
	}
}

// withDefaults fills zero-valued fields from DefaultConfig. A day window of
// 0..0 is treated as unset.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BudgetLimit <= 0 {
		c.BudgetLimit = d.BudgetLimit
	}
	if c.DayStartHour == 0 && c.DayEndHour == 0 {
		c.DayStartHour, c.DayEndHour = d.DayStartHour, d.DayEndHour
	}
	if c.RecentWindow <= 0 {
		c.RecentWindow = d.RecentWindow
	}
	if c.SampleThreshold <= 0 {
		c.SampleThreshold = d.SampleThreshold
	}
	if c.SampleStep <= 0 {
		c.SampleStep = d.SampleStep
	}
	if c.Currency == "" {
		c.Currency = d.Currency
	}
	if c.TotalMode != TotalCostSum {
		c.TotalMode = TotalLastPaid
	}
	return c
}
