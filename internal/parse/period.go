package parse

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// ErrPeriodFormat reports that a payment-period string does not contain a
// recognizable "<day> <month-abbrev>. <year>" date. It is an explicit,
// testable failure: callers that want the historical silent fallback branch
// on it instead of relying on a zero value.
var ErrPeriodFormat = errors.New("payment period does not match the expected format")

// Period is the year/month a payment belongs to, taken from the START of
// the period range. The payment's processing timestamp is deliberately not
// used here because processing can lag the pay period.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Start returns the first day of the period month.
func (p Period) Start() civil.Date {
	return civil.Date{Year: p.Year, Month: time.Month(p.Month), Day: 1}
}

// periodPattern matches one "<day> <month-abbrev>[.] <year>" occurrence.
// Period strings look like "1 abr. 2025 a 15 abr. 2025"; only the FIRST
// match matters, it is the start of the range.
var periodPattern = regexp.MustCompile(`(?i)(\d{1,2})\s+([a-záéíóúñ]+)\.?\s+(\d{4})`)

// spanishMonths maps the fixed 12 Spanish month abbreviations to month
// numbers. Anything outside this table makes the parse fail.
var spanishMonths = map[string]int{
	"ene": 1, "feb": 2, "mar": 3, "abr": 4,
	"may": 5, "jun": 6, "jul": 7, "ago": 8,
	"sep": 9, "oct": 10, "nov": 11, "dic": 12,
}

// PeriodOf extracts the year and month of the first date in a free-text
// payment-period range. It returns ErrPeriodFormat when no date-like
// substring is found or the month abbreviation is not in the table.
func PeriodOf(s string) (Period, error) {
	m := periodPattern.FindStringSubmatch(s)
	if m == nil {
		return Period{}, ErrPeriodFormat
	}

	month, ok := spanishMonths[strings.ToLower(m[2])]
	if !ok {
		return Period{}, ErrPeriodFormat
	}

	year, err := strconv.Atoi(m[3])
	if err != nil {
		return Period{}, ErrPeriodFormat
	}

	return Period{Year: year, Month: month}, nil
}
