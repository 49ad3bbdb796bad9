// Package normalize turns raw statement tokens into dates and amounts.
package normalize

import (
	"strings"
	"time"
)

const (
	minYear = 2000
	maxYear = 2030
)

// dateLayouts are tried in order; the first successful parse wins.
var dateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2-Jan-2006",
	"2 Jan 2006",
	"2 Jan 06",
	"2006-1-2",
	"2.1.2006",
}

// lenientLayouts is the day-first fallback for tokens none of the
// fixed layouts accept. Month names are matched case-insensitively by time.Parse.
var lenientLayouts = []string{
	"2/1/06",
	"2-1-06",
	"2.1.06",
	"2-Jan-06",
	"2/Jan/2006",
	"2 January 2006",
	"2 January 06",
	"2-January-2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"January 2 2006",
	"2 Jan, 2006",
	"2006/1/2",
	"2006.1.2",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
}

// ParseDate parses a statement date token into a calendar date (UTC midnight).
// Dates outside 2000..2030 are rejected so that reference numbers and pincodes
// that happen to parse are not mistaken for dates.
func ParseDate(token string) (time.Time, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return time.Time{}, false
	}

	t, ok := parseLayouts(token, dateLayouts)
	if !ok {
		t, ok = parseLayouts(token, lenientLayouts)
	}
	if !ok {
		return time.Time{}, false
	}
	if t.Year() < minYear || t.Year() > maxYear {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

func parseLayouts(token string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, token); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
