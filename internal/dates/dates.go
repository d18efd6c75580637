// Package dates parses loosely formatted date strings coming from manual data
// entry. Parsing is best-effort: callers must treat "no date" and "invalid
// date" identically.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dayFirstPattern matches day[/-]month with an optional two-or-four-digit
// year anywhere in the text.
var dayFirstPattern = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})(?:[/-](\d{2,4}))?`)

// ParseRelaxed parses a calendar date out of free-form text. ISO 8601 dates
// are accepted directly; otherwise the lower-cased, trimmed text is searched
// for a day-first d/m or d-m pattern. A missing year defaults to the current
// UTC year and a two-digit year is taken as 2000+year. Returns ok=false for
// unmatched or invalid input, never an error.
func ParseRelaxed(text string) (time.Time, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(text))
	if cleaned == "" {
		return time.Time{}, false
	}

	if d, err := time.Parse("2006-01-02", cleaned); err == nil {
		return d, true
	}

	m := dayFirstPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return time.Time{}, false
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])

	year := time.Now().UTC().Year()
	if m[3] != "" {
		y, err := strconv.Atoi(m[3])
		if err != nil || len(m[3]) == 3 {
			return time.Time{}, false
		}
		if y < 100 {
			y += 2000
		}
		year = y
	}

	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}

	// time.Date normalises out-of-range days (32/1 becomes 1/2); reject any
	// combination that does not round-trip.
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, false
	}

	return d, true
}
