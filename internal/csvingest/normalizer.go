package csvingest

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DropReason explains why a row did not become a Record.
type DropReason string

const (
	Kept             DropReason = ""
	DropEmpty        DropReason = "empty"
	DropNoTimestamp  DropReason = "no_timestamp"
	DropBadTimestamp DropReason = "bad_timestamp"
)

// Normalizer maps raw rows onto a cleaned header. It is built once per
// ingestion and holds no mutable state, so a single instance may be shared.
type Normalizer struct {
	header   []Column
	policies PolicyTable
}

// NewNormalizer cleans rawHeader and binds it to the duplicate-column policy
// table.
func NewNormalizer(rawHeader []string, policies PolicyTable) *Normalizer {
	header := make([]Column, len(rawHeader))
	for i, h := range rawHeader {
		header[i] = CleanHeader(h)
	}
	return &Normalizer{header: header, policies: policies}
}

// Header returns the cleaned column names in header order. Duplicates are
// preserved.
func (n *Normalizer) Header() []Column {
	out := make([]Column, len(n.header))
	copy(out, n.header)
	return out
}

// Normalize maps one raw row onto the header. The returned reason is Kept
// when the row carries at least one non-empty value and a timestamp;
// otherwise the record is nil.
func (n *Normalizer) Normalize(row []string) (Record, DropReason) {
	rec := make(Record, len(n.header))
	hasData := false

	for i, col := range n.header {
		val := ""
		if i < len(row) {
			val = CleanValue(row[i])
		}
		if val != "" {
			hasData = true
		}
		n.policies.For(col).assign(rec, col, val)
	}

	switch {
	case !hasData:
		return nil, DropEmpty
	case rec.Timestamp() == "":
		return nil, DropNoTimestamp
	}
	return rec, Kept
}

// CleanHeader trims a header token, strips a byte-order mark and a wrapping
// quote pair, and lower-cases the result.
func CleanHeader(s string) Column {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "\uFEFF\uFFFE")
	s = unquote(strings.TrimSpace(s))
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// CleanValue trims a value and strips a wrapping quote pair.
func CleanValue(s string) string {
	return unquote(strings.TrimSpace(s))
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
