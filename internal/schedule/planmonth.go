package schedule

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

var toRRuleWeekday = map[time.Weekday]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// PlanMonthDates expands a weekly weekday pattern over one month, in order.
// Used to lay out a month of devotion lessons or English classes in one
// request instead of placing each date by hand.
func PlanMonthDates(year int, month time.Month, weekdays []time.Weekday) ([]time.Time, error) {
	if len(weekdays) == 0 {
		return nil, fmt.Errorf("at least one weekday is required")
	}

	byDay := make([]rrule.Weekday, 0, len(weekdays))
	for _, w := range weekdays {
		rw, ok := toRRuleWeekday[w]
		if !ok {
			return nil, fmt.Errorf("invalid weekday %d", w)
		}
		byDay = append(byDay, rw)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   first,
		Byweekday: byDay,
	})
	if err != nil {
		return nil, fmt.Errorf("build recurrence rule: %w", err)
	}

	return r.Between(first, last, true), nil
}
