package schedule

import (
	"time"

	"github.com/zapponejosh/ministry-planner/internal/calendar"
)

// ScopeAll matches every preacher in a shift.
const ScopeAll = "all"

// Shiftable is the minimal view of an entry the shift operator needs.
type Shiftable struct {
	ID       int64
	Date     *string // YYYY-MM-DD, nil = unscheduled
	Preacher string
}

// ShiftUpdate is one computed date move.
type ShiftUpdate struct {
	ID      int64  `json:"id"`
	NewDate string `json:"sermon_date"`
}

// ComputeShift returns the batch of date moves for shifting every entry
// dated on or after from by the given number of weeks. scope is either
// ScopeAll or a specific preacher name. Week-based arithmetic preserves
// each entry's day of week.
//
// The operation is deliberately not idempotent: calling it twice with the
// same arguments shifts matching entries again by the full amount.
func ComputeShift(entries []Shiftable, from time.Time, weeks int, scope string) []ShiftUpdate {
	from = calendar.StripTime(from)

	var updates []ShiftUpdate
	for _, e := range entries {
		if e.Date == nil {
			continue
		}
		if scope != "" && scope != ScopeAll && e.Preacher != scope {
			continue
		}
		day, err := calendar.DatePart(*e.Date)
		if err != nil {
			continue
		}
		if day.Before(from) {
			continue
		}
		updates = append(updates, ShiftUpdate{
			ID:      e.ID,
			NewDate: calendar.DateKey(day.AddDate(0, 0, weeks*7)),
		})
	}
	return updates
}
