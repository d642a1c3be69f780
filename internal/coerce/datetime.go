package coerce

import (
	"strings"
	"time"
)

// Candidate layouts tried in order. Unambiguous layouts come first; the
// slash/dash forms depend on the day-first policy flag and are appended
// by datetimeLayouts.
var baseLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"20060102",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
}

var monthFirstLayouts = []string{
	"01/02/2006",
	"01-02-2006",
	"01/02/2006 15:04:05",
}

var dayFirstLayouts = []string{
	"02/01/2006",
	"02-01-2006",
	"02/01/2006 15:04:05",
}

func datetimeLayouts(dayFirst bool) []string {
	layouts := append([]string(nil), baseLayouts...)
	if dayFirst {
		return append(layouts, dayFirstLayouts...)
	}
	return append(layouts, monthFirstLayouts...)
}

// parseDatetime converts one raw token to a time.Time using the layout
// set selected by the day-first flag. Day-versus-month ordering is a
// caller-supplied policy choice, never inferred from the data.
func parseDatetime(raw string, dayFirst bool) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if isSentinel(s) {
		return time.Time{}, false
	}
	for _, layout := range datetimeLayouts(dayFirst) {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
