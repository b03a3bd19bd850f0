package csvingest

import "strings"

// DefaultDelimiter separates fields in the exported sheet.
const DefaultDelimiter = ','

// Tokenize splits raw CSV text into rows of raw fields using the default
// delimiter. The first row is always the header.
func Tokenize(text string) [][]string {
	return TokenizeWith(text, DefaultDelimiter)
}

// TokenizeWith splits raw CSV text into rows of raw fields. Text with fewer
// than two lines (header plus one data row) yields nil.
//
// A double quote toggles the in-quotes state and is not copied into the
// field, so a delimiter inside a quoted span is literal data. Doubled quotes
// are not an escape: `"a""b"` reads as `ab`.
func TokenizeWith(text string, delim rune) [][]string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 2 {
		return nil
	}

	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, SplitLine(strings.TrimSuffix(line, "\r"), delim))
	}
	return rows
}

// SplitLine splits one line into raw fields, honoring quoted spans.
func SplitLine(line string, delim rune) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == delim && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(fields, current.String())
}
