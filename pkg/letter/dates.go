package letter

import (
	"fmt"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
}

// ParseDate reads a stored date. Date-input values (YYYY-MM-DD) are the usual
// form; ISO timestamps are accepted too and keep the date they were written with.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// OrdinalSuffix returns the English suffix for a day of the month.
func OrdinalSuffix(day int) string {
	if n := day % 100; n >= 11 && n <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// FormatOrdinal renders "5th of February 2024".
func FormatOrdinal(t time.Time) string {
	return fmt.Sprintf("%d%s of %s %d", t.Day(), OrdinalSuffix(t.Day()), t.Month(), t.Year())
}

// FormatWeekday renders "Monday the 5th of February 2024".
func FormatWeekday(t time.Time) string {
	return fmt.Sprintf("%s the %s", t.Weekday(), FormatOrdinal(t))
}
