// Package dateparser converts the date/time strings found in office document metadata to time.Time objects.
package dateparser

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// isoLayouts cover W3CDTF as written by MS Office and the xsd:dateTime
// values written by LibreOffice, which carry no zone.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ToTime parses a calendar date/time string. Values without zone
// information are taken as UTC.
func ToTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %s could not be parsed: %w", s, err)
	}
	// dateparse fills in year 0 for text like "3.5" or "oct 7"
	if t.Year() == 0 {
		return time.Time{}, fmt.Errorf("date %s has no year", s)
	}
	return t, nil
}

// ToIso returns the date/time as RFC3339 string.
// Returns an empty string in case it cannot be parsed.
func ToIso(s string) string {
	if s == "" {
		return ""
	}
	t, err := ToTime(s)
	if err != nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
