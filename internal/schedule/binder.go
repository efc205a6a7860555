// Package schedule holds the pure planning logic over stored entries:
// binding events to calendar dates, bulk date shifts, and series timeline
// projection. Nothing here touches the network or the database.
package schedule

import (
	"github.com/zapponejosh/ministry-planner/internal/calendar"
	"github.com/zapponejosh/ministry-planner/internal/database"
)

// Kind tags an event with its source collection so renderers and the
// reschedule coordinator can branch on it.
type Kind string

const (
	KindSermon   Kind = "sermon"
	KindDevotion Kind = "devotion"
	KindEnglish  Kind = "english"
)

// View selects which collections a calendar view shows.
type View string

const (
	ViewSermons   View = "sermons"
	ViewDevotions View = "devotions"
	ViewEnglish   View = "english"
	ViewCombined  View = "combined"
)

// ParseView maps a query-parameter value to a View, defaulting to combined.
func ParseView(s string) View {
	switch View(s) {
	case ViewSermons, ViewDevotions, ViewEnglish:
		return View(s)
	default:
		return ViewCombined
	}
}

// Event is one calendar-bound entry, flattened for display.
type Event struct {
	Kind       Kind   `json:"kind"`
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Date       string `json:"date"` // YYYY-MM-DD
	Preacher   string `json:"preacher,omitempty"`
	LessonType string `json:"lesson_type,omitempty"`
	Status     string `json:"status,omitempty"`
	SeriesID   *int64 `json:"series_id,omitempty"`
}

// Filters narrows which entries a view includes.
type Filters struct {
	Preacher   string // exact match; empty matches all
	LessonType string // exact match; empty matches all
}

// Bind builds the date-key to event-list mapping for a view. Entries with
// no date never appear under any key; event dates are reduced to their
// date-only portion; cancelled classes are excluded from display (they stay
// in the store). For a given date the result concatenates sermons, then
// devotions, then English classes; the cross-source order is insertion
// order, not significant for correctness.
func Bind(view View, f Filters, sermons []database.Sermon, lessons []database.DevotionLesson, classes []database.EnglishClass) map[string][]Event {
	out := make(map[string][]Event)

	if view == ViewSermons || view == ViewCombined {
		for _, s := range sermons {
			if s.Date == nil {
				continue
			}
			if f.Preacher != "" && s.Preacher != f.Preacher {
				continue
			}
			if f.LessonType != "" && s.LessonType != f.LessonType {
				continue
			}
			day, err := calendar.DatePart(*s.Date)
			if err != nil {
				continue
			}
			key := calendar.DateKey(day)
			out[key] = append(out[key], Event{
				Kind:       KindSermon,
				ID:         s.ID,
				Title:      s.Name,
				Date:       key,
				Preacher:   s.Preacher,
				LessonType: s.LessonType,
				Status:     string(s.Status),
				SeriesID:   s.SeriesID,
			})
		}
	}

	if view == ViewDevotions || view == ViewCombined {
		for _, l := range lessons {
			if l.ScheduledDate == nil {
				continue
			}
			day, err := calendar.DatePart(*l.ScheduledDate)
			if err != nil {
				continue
			}
			key := calendar.DateKey(day)
			status := ""
			if l.Prepared {
				status = "prepared"
			}
			out[key] = append(out[key], Event{
				Kind:     KindDevotion,
				ID:       l.ID,
				Title:    l.Title,
				Date:     key,
				Status:   status,
				SeriesID: l.SeriesID,
			})
		}
	}

	if view == ViewEnglish || view == ViewCombined {
		for _, c := range classes {
			if c.ClassDate == nil || c.Status == database.ClassCancelled {
				continue
			}
			day, err := calendar.DatePart(*c.ClassDate)
			if err != nil {
				continue
			}
			key := calendar.DateKey(day)
			out[key] = append(out[key], Event{
				Kind:     KindEnglish,
				ID:       c.ID,
				Title:    c.Title,
				Date:     key,
				Status:   string(c.Status),
				SeriesID: c.SeriesID,
			})
		}
	}

	return out
}
