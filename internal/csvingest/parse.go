package csvingest

import "time"

// Options tunes a Parse run. The zero value uses the default delimiter,
// DefaultPolicies and UTC.
type Options struct {
	Delimiter rune
	Policies  *PolicyTable
	Location  *time.Location
}

// Stats counts what happened to the data rows of one ingestion. Dropped rows
// are expected and never reported as errors.
type Stats struct {
	RowsSeen            int `json:"rows_seen"`
	Kept                int `json:"kept"`
	DroppedEmpty        int `json:"dropped_empty"`
	DroppedNoTimestamp  int `json:"dropped_no_timestamp"`
	DroppedBadTimestamp int `json:"dropped_bad_timestamp"`
}

// Dropped is the total number of rows that did not survive.
func (s Stats) Dropped() int {
	return s.DroppedEmpty + s.DroppedNoTimestamp + s.DroppedBadTimestamp
}

// Result is the output of one ingestion.
type Result struct {
	Header []Column
	// Records are the normalized rows in input order, before timestamp
	// validation.
	Records []Record
	// Readings are the records with a parseable timestamp, oldest first.
	Readings []Reading
	Stats    Stats
}

// Parse runs tokenizing, normalization and filtering over raw CSV text. It
// never fails; malformed input yields an empty Result.
func Parse(text string, opts Options) Result {
	delim := opts.Delimiter
	if delim == 0 {
		delim = DefaultDelimiter
	}
	policies := DefaultPolicies()
	if opts.Policies != nil {
		policies = *opts.Policies
	}

	rows := TokenizeWith(text, delim)
	if len(rows) == 0 {
		return Result{}
	}

	norm := NewNormalizer(rows[0], policies)
	res := Result{Header: norm.Header()}
	for _, row := range rows[1:] {
		res.Stats.RowsSeen++
		rec, reason := norm.Normalize(row)
		switch reason {
		case DropEmpty:
			res.Stats.DroppedEmpty++
		case DropNoTimestamp:
			res.Stats.DroppedNoTimestamp++
		default:
			res.Records = append(res.Records, rec)
		}
	}

	readings, bad := filterAndSort(res.Records, opts.Location)
	res.Readings = readings
	res.Stats.DroppedBadTimestamp = bad
	res.Stats.Kept = len(readings)
	return res
}
