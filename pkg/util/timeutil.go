package util

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ValidDate reports whether value is a YYYY-MM-DD calendar date.
func ValidDate(value string) bool {
	_, err := time.Parse(dateLayout, strings.TrimSpace(value))
	return err == nil
}

// FormatWeekRange renders a report window such as "Mar 3 – Mar 9, 2025".
// Unparseable bounds are echoed back untouched; empty bounds render as "".
func FormatWeekRange(start, end string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" && end == "" {
		return ""
	}
	s, errStart := time.Parse(dateLayout, start)
	e, errEnd := time.Parse(dateLayout, end)
	switch {
	case errStart != nil || errEnd != nil:
		return strings.Trim(start+" – "+end, " –")
	case s.Year() == e.Year():
		return s.Format("Jan 2") + " – " + e.Format("Jan 2, 2006")
	default:
		return s.Format("Jan 2, 2006") + " – " + e.Format("Jan 2, 2006")
	}
}
