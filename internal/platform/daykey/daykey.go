// Package daykey converts calendar days to and from the yy_mm_dd token used in
// snapshot file names and date columns.
package daykey

import (
	"fmt"
	"strings"
	"time"
)

const (
	tokenLayout = "06_01_02"
	isoLayout   = "2006-01-02"
)

// Format returns the yy_mm_dd token for day.
func Format(day time.Time) string {
	return day.Format(tokenLayout)
}

// ISO returns the YYYY-MM-DD form used by player pool file names.
func ISO(day time.Time) string {
	return day.Format(isoLayout)
}

// Parse accepts either a yy_mm_dd token or a YYYY-MM-DD date.
func Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty day value")
	}
	layout := tokenLayout
	if strings.Contains(value, "-") {
		layout = isoLayout
	}
	day, err := time.ParseInLocation(layout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", value, err)
	}
	return day, nil
}

// Truncate drops the clock part of t, keeping the calendar day of its location.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Range returns every calendar day from start to end inclusive.
func Range(start, end time.Time) []time.Time {
	start, end = Truncate(start), Truncate(end)
	if end.Before(start) {
		return nil
	}
	out := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		out = append(out, day)
	}
	return out
}
