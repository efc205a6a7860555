// Package ics renders scheduled entries and holidays as an iCalendar feed
// so the plan can be subscribed to from external calendar apps.
package ics

import (
	"fmt"
	"sort"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/zapponejosh/ministry-planner/internal/calendar"
	"github.com/zapponejosh/ministry-planner/internal/holiday"
	"github.com/zapponejosh/ministry-planner/internal/schedule"
)

const prodID = "-//ministry-planner//EN"

// Export builds an all-day event feed from bound schedule entries and
// compiled holidays. Events carry stable UIDs derived from kind and ID so
// re-exports update rather than duplicate in subscribing clients.
func Export(byDate map[string][]schedule.Event, holidays []holiday.Calculated) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)

	now := time.Now().UTC()

	// Deterministic output: walk dates in order.
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	for _, dateKey := range dates {
		day, err := calendar.ParseDateString(dateKey)
		if err != nil {
			return "", fmt.Errorf("export schedule for %q: %w", dateKey, err)
		}
		for _, ev := range byDate[dateKey] {
			uid := fmt.Sprintf("%s-%d@ministry-planner", ev.Kind, ev.ID)
			ve := cal.AddEvent(uid)
			ve.SetDtStampTime(now)
			ve.SetAllDayStartAt(day)
			ve.SetAllDayEndAt(day.AddDate(0, 0, 1))
			ve.SetSummary(eventSummary(ev))
			if ev.Preacher != "" {
				ve.SetDescription("Preacher: " + ev.Preacher)
			}
		}
	}

	for _, h := range holidays {
		uid := fmt.Sprintf("holiday-%s-%s@ministry-planner", h.ID, h.CalculatedDate)
		ve := cal.AddEvent(uid)
		ve.SetDtStampTime(now)
		ve.SetAllDayStartAt(h.Date)
		ve.SetAllDayEndAt(h.Date.AddDate(0, 0, 1))
		summary := h.Name
		if h.Emoji != "" {
			summary = h.Emoji + " " + h.Name
		}
		ve.SetSummary(summary)
	}

	return cal.Serialize(), nil
}

func eventSummary(ev schedule.Event) string {
	switch ev.Kind {
	case schedule.KindSermon:
		return "Sermon: " + ev.Title
	case schedule.KindDevotion:
		return "Devotion: " + ev.Title
	case schedule.KindEnglish:
		return "English: " + ev.Title
	default:
		return ev.Title
	}
}
