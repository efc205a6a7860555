package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/zapponejosh/ministry-planner/internal/calendar"
	"github.com/zapponejosh/ministry-planner/internal/database"
	"github.com/zapponejosh/ministry-planner/internal/logger"
)

// classRequest is the create/update payload for an English class.
type classRequest struct {
	SeriesID  *int64  `json:"series_id"`
	Title     string  `json:"title" validate:"required,max=200"`
	Week      int     `json:"week" validate:"min=0"`
	Lesson    int     `json:"lesson" validate:"min=0"`
	ClassDate *string `json:"class_date"`
	Status    string  `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
}

// ListEnglishClasses handles GET /api/v1/english/classes. Cancelled classes
// are included here; only calendar display filters them out.
func (h *Handlers) ListEnglishClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := h.db.ListEnglishClasses(r.Context())
	if err != nil {
		h.logger.Error("failed to list classes", slog.Any("error", err))
		WriteInternalError(w, "Failed to list classes")
		return
	}
	WriteSuccess(w, classes)
}

// CreateEnglishClass handles POST /api/v1/english/classes.
func (h *Handlers) CreateEnglishClass(w http.ResponseWriter, r *http.Request) {
	var req classRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	class := database.EnglishClass{
		SeriesID:  req.SeriesID,
		Title:     req.Title,
		Week:      req.Week,
		Lesson:    req.Lesson,
		ClassDate: req.ClassDate,
		Status:    database.ClassStatus(req.Status),
	}
	if class.Status == "" {
		class.Status = database.ClassScheduled
	}
	if err := h.db.CreateEnglishClass(r.Context(), &class); err != nil {
		h.logger.Error("failed to create class", slog.Any("error", err))
		WriteInternalError(w, "Failed to create class")
		return
	}
	WriteCreated(w, class)
}

// UpdateEnglishClass handles PUT /api/v1/english/classes/{id}.
func (h *Handlers) UpdateEnglishClass(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	var req classRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	ctx := r.Context()
	class, err := h.db.GetEnglishClass(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "Class not found")
			return
		}
		h.logger.Error("failed to load class", slog.Int64("id", id), slog.Any("error", err))
		WriteInternalError(w, "Failed to update class")
		return
	}

	class.SeriesID = req.SeriesID
	class.Title = req.Title
	class.Week = req.Week
	class.Lesson = req.Lesson
	class.ClassDate = req.ClassDate
	if req.Status != "" {
		class.Status = database.ClassStatus(req.Status)
	}

	if err := h.db.UpdateEnglishClass(ctx, class); err != nil {
		h.logger.Error("failed to update class", slog.Int64("id", id), slog.Any("error", err))
		WriteInternalError(w, "Failed to update class")
		return
	}
	WriteSuccess(w, class)
}

// PlanEnglishMonth handles POST /api/v1/english/plan-month: one class per
// generated date.
func (h *Handlers) PlanEnglishMonth(w http.ResponseWriter, r *http.Request) {
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
	created := make([]database.EnglishClass, 0, len(dates))
	for i, d := range dates {
		dateKey := calendar.DateKey(d)
		class := database.EnglishClass{
			SeriesID:  req.SeriesID,
			Title:     fmt.Sprintf("%s %d", req.Title, i+1),
			Week:      i/len(req.Weekdays) + 1,
			Lesson:    i + 1,
			ClassDate: &dateKey,
			Status:    database.ClassScheduled,
		}
		if err := h.db.CreateEnglishClass(ctx, &class); err != nil {
			h.logger.Error("failed to create planned class",
				slog.String("date", dateKey), slog.Any("error", err))
			WriteInternalError(w, "Failed to create planned classes")
			return
		}
		created = append(created, class)
	}

	h.logger.Info("english month planned",
		slog.Int("year", req.Year), slog.Int("month", req.Month),
		slog.Int("count", len(created)))
	WriteCreated(w, created)
}

// classCascadeRequest mirrors cascadeRequest with the class-flavored field
// name the clients send.
type classCascadeRequest struct {
	FromClassID int64  `json:"fromClassId" validate:"required,min=1"`
	NewDate     string `json:"newDate" validate:"required"`
}

// CascadeRescheduleEnglish handles POST /api/v1/english/cascade-reschedule.
func (h *Handlers) CascadeRescheduleEnglish(w http.ResponseWriter, r *http.Request) {
	var req classCascadeRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	if _, err := calendar.ParseDateString(req.NewDate); err != nil {
		WriteBadRequest(w, "Invalid newDate: use YYYY-MM-DD")
		return
	}

	log := logger.FromContext(r.Context())
	count, err := h.db.CascadeRescheduleEnglish(r.Context(), req.FromClassID, req.NewDate)
	if err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "Class not found")
			return
		}
		log.Error("cascade reschedule failed",
			slog.Int64("from", req.FromClassID), slog.Any("error", err))
		WriteInternalError(w, "Failed to reschedule classes")
		return
	}

	log.Info("english cascade rescheduled",
		slog.Int64("from", req.FromClassID),
		slog.String("new_date", req.NewDate),
		slog.Int("rescheduled", count))
	WriteSuccess(w, map[string]int{"rescheduled": count})
}
