package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/ministry-planner/internal/calendar"
	"github.com/zapponejosh/ministry-planner/internal/holiday"
)

// GetHolidays handles GET /api/v1/holidays?date=YYYY-MM-DD or ?week=YYYY-Wnn.
// Exactly one of the two parameters must be given.
func (h *Handlers) GetHolidays(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	week := r.URL.Query().Get("week")

	switch {
	case date != "" && week != "":
		WriteBadRequest(w, "Provide either date or week, not both")
	case date != "":
		if _, err := calendar.ParseDateString(date); err != nil {
			WriteBadRequest(w, "Invalid date format: use YYYY-MM-DD")
			return
		}
		WriteSuccess(w, h.holidays.ForDate(date))
	case week != "":
		if _, _, err := calendar.ParseWeekKey(week); err != nil {
			WriteBadRequest(w, "Invalid week format: use YYYY-Wnn")
			return
		}
		WriteSuccess(w, h.holidays.ForWeek(week))
	default:
		WriteBadRequest(w, "Either date or week parameter is required")
	}
}

// GetUpcomingHolidays handles GET /api/v1/holidays/upcoming?weeks=N.
func (h *Handlers) GetUpcomingHolidays(w http.ResponseWriter, r *http.Request) {
	weeks := 6
	if raw := r.URL.Query().Get("weeks"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 52 {
			WriteBadRequest(w, "weeks must be an integer between 1 and 52")
			return
		}
		weeks = n
	}

	WriteSuccess(w, h.holidays.GetUpcoming(weeks))
}

// GetYearHolidays handles GET /api/v1/holidays/year/{year}.
func (h *Handlers) GetYearHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1583 || year > 4099 {
		WriteBadRequest(w, "Invalid year")
		return
	}

	WriteSuccess(w, h.holidays.ForYear(year))
}

// ListCustomHolidays handles GET /api/v1/holidays/custom.
func (h *Handlers) ListCustomHolidays(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, h.holidays.CustomHolidays())
}

// CreateCustomHoliday handles POST /api/v1/holidays/custom. The submitted
// rule's id is ignored; the service assigns one.
func (h *Handlers) CreateCustomHoliday(w http.ResponseWriter, r *http.Request) {
	var rule holiday.Rule
	if err := h.decodeAndValidate(r, &rule); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	created, err := h.holidays.AddCustom(rule)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	h.logger.Info("custom holiday created",
		slog.String("id", created.ID),
		slog.String("name", created.Name))
	WriteCreated(w, created)
}

// DeleteCustomHoliday handles DELETE /api/v1/holidays/custom/{id}.
// Deleting an unknown id succeeds; the end state is the same.
func (h *Handlers) DeleteCustomHoliday(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		WriteBadRequest(w, "Holiday id is required")
		return
	}

	h.holidays.DeleteCustom(id)
	WriteSuccess(w, map[string]string{"deleted": id})
}
