// Package parse converts the locale-formatted strings the liquidation
// exports carry (currency values, payment period ranges) into numeric and
// date values.
package parse

import (
	"strconv"
	"strings"
)

// Currency parses a value formatted with "." as thousands separator and ","
// as decimal separator, e.g. "1.234,56" -> 1234.56. Empty, absent or
// malformed input degrades to 0; callers never see an error. The separator
// substitution is order-dependent: every "." is stripped before the first
// "," is turned into a decimal point.
func Currency(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
