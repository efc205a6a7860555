package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/ministry-planner/internal/calendar"
	"github.com/zapponejosh/ministry-planner/internal/holiday"
	"github.com/zapponejosh/ministry-planner/internal/ics"
	"github.com/zapponejosh/ministry-planner/internal/schedule"
)

// GridDay is one rendered calendar cell.
type GridDay struct {
	Date   string           `json:"date"` // YYYY-MM-DD
	Day    int              `json:"day"`
	Events []schedule.Event `json:"events"`

	// Badge fields: the first holiday of the day plus how many more
	// share it.
	Holiday      *holiday.Calculated `json:"holiday,omitempty"`
	MoreHolidays int                 `json:"more_holidays,omitempty"`
}

// GridWeek is one Monday-first calendar row. Cells outside the month are
// null.
type GridWeek struct {
	ISOWeek int         `json:"iso_week"`
	Days    [7]*GridDay `json:"days"`
}

// MonthView is the full GET /calendar/{year}/{month} payload.
type MonthView struct {
	Year  int        `json:"year"`
	Month int        `json:"month"`
	Weeks []GridWeek `json:"weeks"`
}

// GetMonthGrid handles GET /api/v1/calendar/{year}/{month}. Query
// parameters view, preacher, and lesson_type narrow which events appear.
func (h *Handlers) GetMonthGrid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1583 || year > 4099 {
		WriteBadRequest(w, "Invalid year")
		return
	}
	monthNum, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		WriteBadRequest(w, "Invalid month: use 1-12")
		return
	}
	month := time.Month(monthNum)

	view := schedule.ParseView(r.URL.Query().Get("view"))
	filters := schedule.Filters{
		Preacher:   r.URL.Query().Get("preacher"),
		LessonType: r.URL.Query().Get("lesson_type"),
	}

	byDate, err := h.bindEvents(ctx, view, filters)
	if err != nil {
		h.logger.Error("failed to load calendar events", slog.Any("error", err))
		WriteInternalError(w, "Failed to load calendar events")
		return
	}

	grid := calendar.MonthGrid(year, month)
	weeks := make([]GridWeek, len(grid))
	for i, row := range grid {
		weeks[i].ISOWeek = row.ISOWeek
		for j, day := range row.Days {
			if day == nil {
				continue
			}
			cell := &GridDay{
				Date:   day.Key,
				Day:    day.Date.Day(),
				Events: byDate[day.Key],
			}
			if cell.Events == nil {
				cell.Events = []schedule.Event{}
			}
			if hols := h.holidays.ForDate(day.Key); len(hols) > 0 {
				cell.Holiday = &hols[0]
				cell.MoreHolidays = len(hols) - 1
			}
			weeks[i].Days[j] = cell
		}
	}

	WriteSuccess(w, MonthView{Year: year, Month: monthNum, Weeks: weeks})
}

// ExportICS handles GET /api/v1/calendar/export.ics. The feed covers all
// scheduled entries plus this year's and next year's holidays.
func (h *Handlers) ExportICS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	byDate, err := h.bindEvents(ctx, schedule.ViewCombined, schedule.Filters{})
	if err != nil {
		h.logger.Error("failed to load events for export", slog.Any("error", err))
		WriteInternalError(w, "Failed to load events")
		return
	}

	year := time.Now().Year()
	holidays := append(h.holidays.ForYear(year), h.holidays.ForYear(year+1)...)

	payload, err := ics.Export(byDate, holidays)
	if err != nil {
		h.logger.Error("ics export failed", slog.Any("error", err))
		WriteInternalError(w, "Failed to build calendar export")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="ministry-planner.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(payload))
}

// bindEvents loads all three collections and buckets them by date.
func (h *Handlers) bindEvents(ctx context.Context, view schedule.View, f schedule.Filters) (map[string][]schedule.Event, error) {
	sermons, err := h.db.ListSermons(ctx)
	if err != nil {
		return nil, err
	}
	lessons, err := h.db.ListDevotionLessons(ctx)
	if err != nil {
		return nil, err
	}
	classes, err := h.db.ListEnglishClasses(ctx)
	if err != nil {
		return nil, err
	}
	return schedule.Bind(view, f, sermons, lessons, classes), nil
}
