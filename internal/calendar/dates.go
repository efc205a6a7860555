package calendar

import (
	"fmt"
	"time"
)

// ParseDateString parses a date string in YYYY-MM-DD format.
func ParseDateString(dateStr string) (time.Time, error) {
	return time.Parse("2006-01-02", dateStr)
}

// DateKey formats a date as YYYY-MM-DD. This is the canonical key used to
// bucket events and holidays by day.
func DateKey(date time.Time) string {
	return date.Format("2006-01-02")
}

// DatePart parses just the calendar-date portion of a string, tolerating a
// trailing time suffix ("2025-03-04T19:00:00"). Stored dates sometimes carry
// a time of day; bucketing always ignores it.
func DatePart(s string) (time.Time, error) {
	if len(s) > 10 {
		s = s[:10]
	}
	return ParseDateString(s)
}

// StripTime returns the date-only portion of a time.
func StripTime(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekKey returns the ISO 8601 week key for a date, formatted YYYY-Wnn.
// The year is the ISO week-numbering year, which near January 1 can differ
// from the calendar year (2024-12-30 is 2025-W01). Every date in the same
// Monday-to-Sunday week shares a key, and dates in adjacent weeks never do.
func WeekKey(date time.Time) string {
	year, week := date.ISOWeek()
	return FormatWeekKey(year, week)
}

// FormatWeekKey renders an ISO year and week as the canonical zero-padded
// key. All week-indexed maps key on this form.
func FormatWeekKey(year, week int) string {
	return fmt.Sprintf("%d-W%02d", year, week)
}

// ParseWeekKey parses a week key of the form YYYY-Wnn, tolerating an
// unpadded week number ("2025-W5"). Callers that go on to look up a
// week-indexed map must re-render the result with FormatWeekKey.
func ParseWeekKey(key string) (year, week int, err error) {
	if _, err := fmt.Sscanf(key, "%d-W%d", &year, &week); err != nil {
		return 0, 0, fmt.Errorf("invalid week key %q: %w", key, err)
	}
	if week < 1 || week > 53 {
		return 0, 0, fmt.Errorf("invalid week key %q: week must be 1-53", key)
	}
	return year, week, nil
}
