package calendar

import (
	"time"
)

// Day is a single populated cell in a month grid.
type Day struct {
	Date time.Time `json:"-"`
	Key  string    `json:"key"` // YYYY-MM-DD
}

// Week is one Monday-first row of a month grid. Days holds explicit nil
// placeholders before the 1st and after the last day of the month; cells are
// never coerced to adjacent-month dates.
type Week struct {
	ISOWeek int     `json:"isoWeek"`
	Days    [7]*Day `json:"days"`
}

// MondayIndex converts Go's Sunday-first weekday numbering to the
// Monday-first column index used by the grid (Mon=0 .. Sun=6). Holiday rules
// keep the Sunday-first numbering internally; this is the single point where
// the two conventions meet.
func MondayIndex(w time.Weekday) int {
	return (int(w) + 6) % 7
}

// MonthGrid partitions a month into Monday-first week rows. Each row's ISO
// week number is taken from its first populated day.
func MonthGrid(year int, month time.Month) []Week {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	var weeks []Week
	cur := Week{}
	col := MondayIndex(first.Weekday())

	for dayNum := 1; dayNum <= daysInMonth; dayNum++ {
		date := time.Date(year, month, dayNum, 0, 0, 0, 0, time.UTC)
		cur.Days[col] = &Day{Date: date, Key: DateKey(date)}
		col++
		if col == 7 {
			weeks = append(weeks, cur)
			cur = Week{}
			col = 0
		}
	}
	if col > 0 {
		weeks = append(weeks, cur)
	}

	for i := range weeks {
		for _, d := range weeks[i].Days {
			if d != nil {
				_, weeks[i].ISOWeek = d.Date.ISOWeek()
				break
			}
		}
	}

	return weeks
}
