package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/zapponejosh/ministry-planner/internal/calendar"
	"github.com/zapponejosh/ministry-planner/internal/database"
	"github.com/zapponejosh/ministry-planner/internal/logger"
	"github.com/zapponejosh/ministry-planner/internal/schedule"
)

// ListDevotionSeries handles GET /api/v1/devotions/series.
func (h *Handlers) ListDevotionSeries(w http.ResponseWriter, r *http.Request) {
	series, err := h.db.ListSeries(r.Context(), database.SeriesDevotion)
	if err != nil {
		h.logger.Error("failed to list devotion series", slog.Any("error", err))
		WriteInternalError(w, "Failed to list devotion series")
		return
	}
	WriteSuccess(w, series)
}

// devotionSeriesRequest is the create payload for a devotion series. There
// is no kind field: this endpoint always creates a devotion series.
type devotionSeriesRequest struct {
	Title     string  `json:"title" validate:"required,max=200"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// CreateDevotionSeries handles POST /api/v1/devotions/series.
func (h *Handlers) CreateDevotionSeries(w http.ResponseWriter, r *http.Request) {
	var req devotionSeriesRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	if !validateSeriesDates(req.StartDate, req.EndDate) {
		WriteBadRequest(w, "Invalid series dates: use YYYY-MM-DD with start before end")
		return
	}

	series := database.Series{
		Kind:      database.SeriesDevotion,
		Title:     req.Title,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if err := h.db.CreateSeries(r.Context(), &series); err != nil {
		h.logger.Error("failed to create devotion series", slog.Any("error", err))
		WriteInternalError(w, "Failed to create devotion series")
		return
	}
	WriteCreated(w, series)
}

// lessonRequest is the create/update payload for a devotion lesson.
type lessonRequest struct {
	SeriesID      *int64  `json:"series_id"`
	Title         string  `json:"title" validate:"required,max=200"`
	Week          int     `json:"week" validate:"min=0"`
	Lesson        int     `json:"lesson" validate:"min=0"`
	Day           int     `json:"day" validate:"min=0"`
	ScheduledDate *string `json:"scheduled_date"`
	Prepared      bool    `json:"prepared"`
}

// ListDevotionLessons handles GET /api/v1/devotions/lessons.
func (h *Handlers) ListDevotionLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.db.ListDevotionLessons(r.Context())
	if err != nil {
		h.logger.Error("failed to list lessons", slog.Any("error", err))
		WriteInternalError(w, "Failed to list lessons")
		return
	}
	WriteSuccess(w, lessons)
}

// CreateDevotionLesson handles POST /api/v1/devotions/lessons.
func (h *Handlers) CreateDevotionLesson(w http.ResponseWriter, r *http.Request) {
	var req lessonRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	lesson := database.DevotionLesson{
		SeriesID:      req.SeriesID,
		Title:         req.Title,
		Week:          req.Week,
		Lesson:        req.Lesson,
		Day:           req.Day,
		ScheduledDate: req.ScheduledDate,
		Prepared:      req.Prepared,
	}
	if err := h.db.CreateDevotionLesson(r.Context(), &lesson); err != nil {
		h.logger.Error("failed to create lesson", slog.Any("error", err))
		WriteInternalError(w, "Failed to create lesson")
		return
	}
	WriteCreated(w, lesson)
}

// UpdateDevotionLesson handles PUT /api/v1/devotions/lessons/{id}.
func (h *Handlers) UpdateDevotionLesson(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	var req lessonRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	ctx := r.Context()
	lesson, err := h.db.GetDevotionLesson(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "Lesson not found")
			return
		}
		h.logger.Error("failed to load lesson", slog.Int64("id", id), slog.Any("error", err))
		WriteInternalError(w, "Failed to update lesson")
		return
	}

	lesson.SeriesID = req.SeriesID
	lesson.Title = req.Title
	lesson.Week = req.Week
	lesson.Lesson = req.Lesson
	lesson.Day = req.Day
	lesson.ScheduledDate = req.ScheduledDate
	lesson.Prepared = req.Prepared

	if err := h.db.UpdateDevotionLesson(ctx, lesson); err != nil {
		h.logger.Error("failed to update lesson", slog.Int64("id", id), slog.Any("error", err))
		WriteInternalError(w, "Failed to update lesson")
		return
	}
	WriteSuccess(w, lesson)
}

// planMonthRequest expands a weekly weekday pattern over one month.
// Weekdays use 0=Sunday through 6=Saturday.
type planMonthRequest struct {
	SeriesID *int64 `json:"series_id"`
	Year     int    `json:"year" validate:"required,min=1583,max=4099"`
	Month    int    `json:"month" validate:"required,min=1,max=12"`
	Weekdays []int  `json:"weekdays" validate:"required,min=1,dive,min=0,max=6"`
	Title    string `json:"title" validate:"required,max=200"`
}

func (req *planMonthRequest) dates() ([]time.Time, error) {
	weekdays := make([]time.Weekday, len(req.Weekdays))
	for i, d := range req.Weekdays {
		weekdays[i] = time.Weekday(d)
	}
	return schedule.PlanMonthDates(req.Year, time.Month(req.Month), weekdays)
}

// PlanDevotionMonth handles POST /api/v1/devotions/plan-month: one lesson
// per generated date, numbered sequentially.
func (h *Handlers) PlanDevotionMonth(w http.ResponseWriter, r *http.Request) {
	var req planMonthRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	dates, err := req.dates()
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	ctx := r.Context()
	created := make([]database.DevotionLesson, 0, len(dates))
	for i, d := range dates {
		dateKey := calendar.DateKey(d)
		lesson := database.DevotionLesson{
			SeriesID:      req.SeriesID,
			Title:         fmt.Sprintf("%s %d", req.Title, i+1),
			Week:          i/len(req.Weekdays) + 1,
			Lesson:        i + 1,
			ScheduledDate: &dateKey,
		}
		if err := h.db.CreateDevotionLesson(ctx, &lesson); err != nil {
			h.logger.Error("failed to create planned lesson",
				slog.String("date", dateKey), slog.Any("error", err))
			WriteInternalError(w, "Failed to create planned lessons")
			return
		}
		created = append(created, lesson)
	}

	h.logger.Info("devotion month planned",
		slog.Int("year", req.Year), slog.Int("month", req.Month),
		slog.Int("count", len(created)))
	WriteCreated(w, created)
}

// cascadeRequest moves one entry and ripples every later entry in the same
// series by the same delta.
type cascadeRequest struct {
	FromLessonID int64  `json:"fromLessonId" validate:"required,min=1"`
	NewDate      string `json:"newDate" validate:"required"`
}

// CascadeRescheduleDevotions handles POST /api/v1/devotions/cascade-reschedule.
func (h *Handlers) CascadeRescheduleDevotions(w http.ResponseWriter, r *http.Request) {
	var req cascadeRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	if _, err := calendar.ParseDateString(req.NewDate); err != nil {
		WriteBadRequest(w, "Invalid newDate: use YYYY-MM-DD")
		return
	}

	log := logger.FromContext(r.Context())
	count, err := h.db.CascadeRescheduleDevotions(r.Context(), req.FromLessonID, req.NewDate)
	if err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "Lesson not found")
			return
		}
		log.Error("cascade reschedule failed",
			slog.Int64("from", req.FromLessonID), slog.Any("error", err))
		WriteInternalError(w, "Failed to reschedule lessons")
		return
	}

	log.Info("devotions cascade rescheduled",
		slog.Int64("from", req.FromLessonID),
		slog.String("new_date", req.NewDate),
		slog.Int("rescheduled", count))
	WriteSuccess(w, map[string]int{"rescheduled": count})
}
