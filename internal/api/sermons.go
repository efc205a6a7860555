package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/zapponejosh/ministry-planner/internal/analyze"
	"github.com/zapponejosh/ministry-planner/internal/calendar"
	"github.com/zapponejosh/ministry-planner/internal/database"
)

// sermonRequest is the create/update payload for a sermon.
type sermonRequest struct {
	Name       string   `json:"name" validate:"required,max=200"`
	LessonType string   `json:"lesson_type" validate:"max=100"`
	Preacher   string   `json:"preacher" validate:"max=100"`
	Date       *string  `json:"sermon_date"`
	Status     string   `json:"status"`
	SeriesID   *int64   `json:"series_id"`
	Content    string   `json:"content"`
	Notes      string   `json:"notes"`
	Rating     int      `json:"rating" validate:"min=0,max=5"`
	Theme      string   `json:"theme"`
	Audience   string   `json:"audience"`
	Season     string   `json:"season"`
	Primary    string   `json:"primary_text"`
	Takeaway   string   `json:"key_takeaway"`
	Hashtags   []string `json:"hashtags"`
	InfoAdded  bool     `json:"information_added"`
}

func (req *sermonRequest) apply(s *database.Sermon) {
	s.Name = req.Name
	s.LessonType = req.LessonType
	s.Preacher = req.Preacher
	s.Date = req.Date
	s.Status = database.SermonStatus(req.Status)
	s.SeriesID = req.SeriesID
	s.Content = req.Content
	s.Notes = req.Notes
	s.Rating = req.Rating
	s.Theme = req.Theme
	s.Audience = req.Audience
	s.Season = req.Season
	s.PrimaryText = req.Primary
	s.KeyTakeaway = req.Takeaway
	s.Hashtags = req.Hashtags
	s.InfoAdded = req.InfoAdded
}

func validateSermonDate(date *string) bool {
	if date == nil {
		return true
	}
	_, err := calendar.ParseDateString(*date)
	return err == nil
}

// ListSchedule handles GET /api/v1/schedule. Sermons come back ordered by
// date with unscheduled entries last.
func (h *Handlers) ListSchedule(w http.ResponseWriter, r *http.Request) {
	sermons, err := h.db.ListSermons(r.Context())
	if err != nil {
		h.logger.Error("failed to list sermons", slog.Any("error", err))
		WriteInternalError(w, "Failed to list schedule")
		return
	}
	WriteSuccess(w, sermons)
}

// CreateSermon handles POST /api/v1/schedule.
func (h *Handlers) CreateSermon(w http.ResponseWriter, r *http.Request) {
	var req sermonRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	if !validateSermonDate(req.Date) {
		WriteBadRequest(w, "Invalid sermon_date: use YYYY-MM-DD")
		return
	}
	if req.Status != "" && !database.SermonStatus(req.Status).IsValid() {
		WriteBadRequest(w, "Invalid status")
		return
	}

	var sermon database.Sermon
	req.apply(&sermon)

	if err := h.db.CreateSermon(r.Context(), &sermon); err != nil {
		h.logger.Error("failed to create sermon", slog.Any("error", err))
		WriteInternalError(w, "Failed to create sermon")
		return
	}

	WriteCreated(w, sermon)
}

// UpdateSermon handles PUT /api/v1/schedule/{id}.
func (h *Handlers) UpdateSermon(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	var req sermonRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	if !validateSermonDate(req.Date) {
		WriteBadRequest(w, "Invalid sermon_date: use YYYY-MM-DD")
		return
	}
	if req.Status != "" && !database.SermonStatus(req.Status).IsValid() {
		WriteBadRequest(w, "Invalid status")
		return
	}

	ctx := r.Context()
	sermon, err := h.db.GetSermon(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "Sermon not found")
			return
		}
		h.logger.Error("failed to load sermon", slog.Int64("id", id), slog.Any("error", err))
		WriteInternalError(w, "Failed to update sermon")
		return
	}

	req.apply(sermon)
	if err := h.db.UpdateSermon(ctx, sermon); err != nil {
		h.logger.Error("failed to update sermon", slog.Int64("id", id), slog.Any("error", err))
		WriteInternalError(w, "Failed to update sermon")
		return
	}

	updated, err := h.db.GetSermon(ctx, id)
	if err != nil {
		WriteInternalError(w, "Failed to reload sermon")
		return
	}
	WriteSuccess(w, updated)
}

// DeleteSermon handles DELETE /api/v1/schedule/{id}.
func (h *Handlers) DeleteSermon(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	if err := h.db.DeleteSermon(r.Context(), id); err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "Sermon not found")
			return
		}
		h.logger.Error("failed to delete sermon", slog.Int64("id", id), slog.Any("error", err))
		WriteInternalError(w, "Failed to delete sermon")
		return
	}

	WriteSuccess(w, map[string]int64{"deleted": id})
}

// batchUpdateRequest is the POST /schedule/batch-update payload.
type batchUpdateRequest struct {
	Updates []database.DateUpdate `json:"updates" validate:"required,min=1,dive"`
}

// BatchUpdateSchedule handles POST /api/v1/schedule/batch-update. The whole
// batch applies in one transaction; any unknown id rolls everything back.
func (h *Handlers) BatchUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req batchUpdateRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	for _, u := range req.Updates {
		if _, err := calendar.ParseDateString(u.NewDate); err != nil {
			WriteBadRequest(w, "Invalid date in batch: use YYYY-MM-DD")
			return
		}
	}

	if err := h.db.BatchUpdateSermonDates(r.Context(), req.Updates); err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "One or more sermons in the batch do not exist")
			return
		}
		h.logger.Error("batch update failed", slog.Any("error", err))
		WriteInternalError(w, "Failed to apply batch update")
		return
	}

	h.logger.Info("batch date update applied", slog.Int("count", len(req.Updates)))
	WriteSuccess(w, map[string]int{"updated": len(req.Updates)})
}

// analyzeRequest is the POST /analyze-sermon payload.
type analyzeRequest struct {
	Title   string          `json:"title" validate:"required"`
	Content string          `json:"content" validate:"required"`
	Options analyze.Options `json:"options"`
}

// AnalyzeSermon handles POST /api/v1/analyze-sermon, proxying to the
// configured analysis service. Upstream failures surface as 502 and leave
// no other state behind.
func (h *Handlers) AnalyzeSermon(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	suggestions, err := h.analyzer.Analyze(r.Context(), analyze.Request{
		Title:   req.Title,
		Content: req.Content,
		Options: req.Options,
	})
	if err != nil {
		if errors.Is(err, analyze.ErrDisabled) {
			WriteError(w, http.StatusServiceUnavailable, "Sermon analysis is not configured", "ANALYSIS_DISABLED")
			return
		}
		h.logger.Error("sermon analysis failed", slog.Any("error", err))
		WriteError(w, http.StatusBadGateway, "Analysis service unavailable", "ANALYSIS_FAILED")
		return
	}

	WriteSuccess(w, suggestions)
}
