package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/zapponejosh/ministry-planner/internal/calendar"
	"github.com/zapponejosh/ministry-planner/internal/database"
	"github.com/zapponejosh/ministry-planner/internal/schedule"
)

// seriesRequest is the create/update payload for a series.
type seriesRequest struct {
	Kind      string  `json:"kind" validate:"required,oneof=sermon devotion english"`
	Title     string  `json:"title" validate:"required,max=200"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

func validateSeriesDates(start, end *string) bool {
	for _, d := range []*string{start, end} {
		if d == nil {
			continue
		}
		if _, err := calendar.ParseDateString(*d); err != nil {
			return false
		}
	}
	if start != nil && end != nil && *end < *start {
		return false
	}
	return true
}

// ListAllSeries handles GET /api/v1/series?kind=sermon|devotion|english.
// An empty kind returns every series.
func (h *Handlers) ListAllSeries(w http.ResponseWriter, r *http.Request) {
	kind := database.SeriesKind(r.URL.Query().Get("kind"))
	series, err := h.db.ListSeries(r.Context(), kind)
	if err != nil {
		h.logger.Error("failed to list series", slog.Any("error", err))
		WriteInternalError(w, "Failed to list series")
		return
	}
	WriteSuccess(w, series)
}

// CreateSeries handles POST /api/v1/series.
func (h *Handlers) CreateSeries(w http.ResponseWriter, r *http.Request) {
	var req seriesRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	if !validateSeriesDates(req.StartDate, req.EndDate) {
		WriteBadRequest(w, "Invalid series dates: use YYYY-MM-DD with start before end")
		return
	}

	series := database.Series{
		Kind:      database.SeriesKind(req.Kind),
		Title:     req.Title,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if err := h.db.CreateSeries(r.Context(), &series); err != nil {
		h.logger.Error("failed to create series", slog.Any("error", err))
		WriteInternalError(w, "Failed to create series")
		return
	}

	WriteCreated(w, series)
}

// UpdateSeries handles PUT /api/v1/series/{id}.
func (h *Handlers) UpdateSeries(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	var req seriesRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	if !validateSeriesDates(req.StartDate, req.EndDate) {
		WriteBadRequest(w, "Invalid series dates: use YYYY-MM-DD with start before end")
		return
	}

	ctx := r.Context()
	series, err := h.db.GetSeries(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "Series not found")
			return
		}
		h.logger.Error("failed to load series", slog.Int64("id", id), slog.Any("error", err))
		WriteInternalError(w, "Failed to update series")
		return
	}

	series.Kind = database.SeriesKind(req.Kind)
	series.Title = req.Title
	series.StartDate = req.StartDate
	series.EndDate = req.EndDate

	if err := h.db.UpdateSeries(ctx, series); err != nil {
		h.logger.Error("failed to update series", slog.Int64("id", id), slog.Any("error", err))
		WriteInternalError(w, "Failed to update series")
		return
	}
	WriteSuccess(w, series)
}

// TimelineView is the GET /series/timeline payload: the 12-month window,
// visible series spans, and per-series fill progress.
type TimelineView struct {
	WindowStart string              `json:"window_start"`
	WindowEnd   string              `json:"window_end"` // exclusive
	Spans       []schedule.Span     `json:"spans"`
	Progress    []schedule.Progress `json:"progress"`
}

// GetTimeline handles GET /api/v1/series/timeline?month=YYYY-MM. The window
// runs from five months before the viewed month through six months after.
func (h *Handlers) GetTimeline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewed := time.Now().UTC()
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			WriteBadRequest(w, "Invalid month: use YYYY-MM")
			return
		}
		viewed = parsed
	}

	start, end := schedule.Window(viewed)

	series, err := h.db.ListSeries(ctx, "")
	if err != nil {
		h.logger.Error("failed to list series", slog.Any("error", err))
		WriteInternalError(w, "Failed to build timeline")
		return
	}
	sermons, err := h.db.ListSermons(ctx)
	if err != nil {
		h.logger.Error("failed to list sermons", slog.Any("error", err))
		WriteInternalError(w, "Failed to build timeline")
		return
	}
	lessons, err := h.db.ListDevotionLessons(ctx)
	if err != nil {
		h.logger.Error("failed to list lessons", slog.Any("error", err))
		WriteInternalError(w, "Failed to build timeline")
		return
	}

	view := TimelineView{
		WindowStart: calendar.DateKey(start),
		WindowEnd:   calendar.DateKey(end),
		Spans:       []schedule.Span{},
		Progress:    []schedule.Progress{},
	}
	for _, s := range series {
		span, ok := schedule.Project(s, start, end)
		if !ok {
			continue
		}
		view.Spans = append(view.Spans, span)

		switch s.Kind {
		case database.SeriesDevotion:
			view.Progress = append(view.Progress, schedule.LessonProgress(s.ID, lessons))
		default:
			view.Progress = append(view.Progress, schedule.SermonProgress(s, sermons))
		}
	}

	WriteSuccess(w, view)
}
