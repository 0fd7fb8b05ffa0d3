package visit

import (
	"fmt"
	"strings"
	"time"
)

// compactDateLayout is the YYYYMMDD form used by capture directory names.
const compactDateLayout = "20060102"

// dateLayouts are the textual forms accepted by ParseDate, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	compactDateLayout,
	"2006/01/02",
	"Jan 2 2006",
	"January 2, 2006",
	"2006-01-02T15:04:05Z07:00",
}

// ParseDate parses a flexible textual date into a UTC midnight time.
// An unrecognized or calendar-invalid input is the caller's error.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseCompactDate parses a YYYYMMDD directory token, rejecting tokens that
// are eight digits but not a real calendar date.
func parseCompactDate(s string) (time.Time, error) {
	t, err := time.Parse(compactDateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
