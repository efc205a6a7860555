// Package calendar provides the date arithmetic behind the planner:
// Easter computation, nth-weekday resolution, date/week keys, and the
// month grid used by calendar views.
package calendar

import (
	"time"
)

// CalculateEaster calculates the date of Easter Sunday for a given year
// using the computus algorithm for the Gregorian calendar.
//
// The algorithm is based on the method described by J.M. Oudin (1940)
// and is valid for all years in the Gregorian calendar.
func CalculateEaster(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// NthWeekdayOfMonth finds the nth occurrence of a weekday within a month,
// e.g. the 4th Thursday of November. The second return value is false when
// the month has fewer than nth occurrences of that weekday (a 5th Monday
// most months); callers treat that as "no occurrence this year", not an
// error.
func NthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, nth int) (time.Time, bool) {
	if nth < 1 || nth > 5 {
		return time.Time{}, false
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	candidate := first.AddDate(0, 0, offset+(nth-1)*7)

	if candidate.Month() != month {
		return time.Time{}, false
	}
	return candidate, true
}
