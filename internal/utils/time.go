package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/littlesteps/internal/constants"
)

var localLayouts = []string{
	constants.LocalTimestampFormat,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04",
	constants.DateFormat,
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// DateString formats t as a local calendar date (YYYY-MM-DD) in t's location.
func DateString(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// ParseLocalISO parses an ISO-8601 timestamp. Timestamps without a zone are
// interpreted in loc; zoned ones (RFC 3339) keep their instant.
func ParseLocalISO(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO timestamp %q", s)
}

// FormatISO renders an instant the way browser clients do (UTC, millisecond precision).
func FormatISO(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// AddMonths adds n calendar months, clamping the day to the end of the target month.
func AddMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// MonthsBetween returns the number of full calendar months from a to b.
// The result is negative when b is before a.
func MonthsBetween(a, b time.Time) int {
	if b.Before(a) {
		return -MonthsBetween(b, a)
	}
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if AddMonths(a, months).After(b) {
		months--
	}
	return months
}
