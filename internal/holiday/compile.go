package holiday

import (
	"time"

	"github.com/zapponejosh/ministry-planner/internal/calendar"
)

// Calculated is a Rule resolved to a concrete date for one year. It is
// ephemeral: recomputed on every year compile and never persisted.
type Calculated struct {
	Rule
	Date           time.Time `json:"-"`
	CalculatedDate string    `json:"calculatedDate"` // YYYY-MM-DD
	ColorHex       string    `json:"colorHex,omitempty"`
}

// YearIndex holds the holidays of a single year, indexed by date key and by
// ISO week key. Both indexes map to collections: multiple holidays may share
// a date or a week.
type YearIndex struct {
	Year   int
	ByDate map[string][]Calculated
	ByWeek map[string][]Calculated
}

// Resolve computes the rule's occurrence for the given year. The second
// return value is false when the rule has no occurrence that year (a missing
// 5th weekday, a oneTime rule for a different year).
func Resolve(r Rule, year int) (time.Time, bool) {
	switch r.Type {
	case TypeFixed:
		return time.Date(year, r.Month, r.Day, 0, 0, 0, 0, time.UTC), true
	case TypeRelative:
		return calendar.NthWeekdayOfMonth(year, r.Month, r.Weekday, r.Nth)
	case TypeEaster:
		return calendar.CalculateEaster(year).AddDate(0, 0, r.Offset), true
	case TypeLunar:
		return lunarDate(r.LunarType, year)
	case TypeOneTime:
		if r.Year != year {
			return time.Time{}, false
		}
		date, err := calendar.ParseDateString(r.Date)
		if err != nil {
			return time.Time{}, false
		}
		return date, true
	}
	return time.Time{}, false
}

// CompileYear expands the rule table into a YearIndex for one year. Rules
// with no occurrence, and rules whose resolved date falls outside the
// requested year (a large Easter offset near a year boundary), are
// discarded. The result is a pure function of (year, rules).
func CompileYear(year int, rules []Rule) *YearIndex {
	idx := &YearIndex{
		Year:   year,
		ByDate: make(map[string][]Calculated),
		ByWeek: make(map[string][]Calculated),
	}

	for _, r := range rules {
		date, ok := Resolve(r, year)
		if !ok || date.Year() != year {
			continue
		}

		c := Calculated{
			Rule:           r,
			Date:           date,
			CalculatedDate: calendar.DateKey(date),
			ColorHex:       Colors[r.Color],
		}
		idx.ByDate[c.CalculatedDate] = append(idx.ByDate[c.CalculatedDate], c)

		weekKey := calendar.WeekKey(date)
		idx.ByWeek[weekKey] = append(idx.ByWeek[weekKey], c)
	}

	return idx
}
