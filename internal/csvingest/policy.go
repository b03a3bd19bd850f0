package csvingest

// DuplicatePolicy decides which value a record keeps when the header names
// the same column more than once. An empty value never overwrites.
type DuplicatePolicy int

const (
	// FirstNonEmpty keeps the first non-empty occurrence.
	FirstNonEmpty DuplicatePolicy = iota
	// LastNonEmpty lets every later non-empty occurrence overwrite.
	LastNonEmpty
)

func (p DuplicatePolicy) String() string {
	switch p {
	case LastNonEmpty:
		return "last_non_empty"
	default:
		return "first_non_empty"
	}
}

// PolicyTable selects a DuplicatePolicy per column name.
type PolicyTable struct {
	Default DuplicatePolicy
	Columns map[Column]DuplicatePolicy
}

// DefaultPolicies returns the sheet's resolution table: amount_paid is
// appended to over time, so its latest non-empty cell wins; every other
// column keeps its first non-empty cell.
func DefaultPolicies() PolicyTable {
	return PolicyTable{
		Default: FirstNonEmpty,
		Columns: map[Column]DuplicatePolicy{
			ColAmountPaid: LastNonEmpty,
		},
	}
}

// For returns the policy for col.
func (t PolicyTable) For(col Column) DuplicatePolicy {
	if p, ok := t.Columns[col]; ok {
		return p
	}
	return t.Default
}

// assign writes val into rec[col] according to the policy. The key is always
// created so every header column is addressable on the record.
func (p DuplicatePolicy) assign(rec Record, col Column, val string) {
	existing, seen := rec[col]
	if val == "" {
		if !seen {
			rec[col] = ""
		}
		return
	}
	switch p {
	case LastNonEmpty:
		rec[col] = val
	default:
		if existing == "" {
			rec[col] = val
		}
	}
}
