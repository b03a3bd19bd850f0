package csvingest

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// LeadingFloat parses the longest numeric prefix of s, ignoring leading
// whitespace: "12.5 kWh" reads as 12.5. It reports false when s does not
// start with a number or the number is not finite ("Infinity", "1e999").
func LeadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	i := 0
	if s[i] == '+' || s[i] == '-' {
		i++
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}
	end := i

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expDigits := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			expDigits++
		}
		if expDigits > 0 {
			end = j
		}
	}

	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		// Underflow rounds to zero; overflow is rejected below.
		var ne *strconv.NumError
		if !errors.As(err, &ne) || ne.Err != strconv.ErrRange {
			return 0, false
		}
	}
	if math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Float returns the numeric value of col, or false when it is not numeric.
func (r Record) Float(col Column) (float64, bool) {
	return LeadingFloat(r[col])
}

// FloatOr returns the numeric value of col, or def when it is not numeric.
func (r Record) FloatOr(col Column, def float64) float64 {
	if f, ok := r.Float(col); ok {
		return f
	}
	return def
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
