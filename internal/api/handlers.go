// Package api exposes the planner over HTTP: schedule, series, devotions,
// English classes, holidays, the month grid, ICS export, and the sermon
// analysis proxy.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/zapponejosh/ministry-planner/internal/analyze"
	"github.com/zapponejosh/ministry-planner/internal/config"
	"github.com/zapponejosh/ministry-planner/internal/database"
	"github.com/zapponejosh/ministry-planner/internal/holiday"
)

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	db       *database.DB
	holidays *holiday.Service
	analyzer *analyze.Analyzer
	cfg      *config.Config
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *database.DB, holidays *holiday.Service, analyzer *analyze.Analyzer, cfg *config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		db:       db,
		holidays: holidays,
		analyzer: analyzer,
		cfg:      cfg,
		logger:   logger,
		validate: validator.New(),
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.db.Health(ctx); err != nil {
		h.logger.Warn("health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", "HEALTH_CHECK_FAILED")
		return
	}

	WriteSuccess(w, map[string]string{
		"status": "healthy",
	})
}

// decodeAndValidate decodes the request body into dst and runs struct
// validation. Callers pass a pointer.
func (h *Handlers) decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("field %s failed validation (%s)", f.Field(), f.Tag())
		}
		return err
	}
	return nil
}

// idParam extracts a numeric {id} path parameter.
func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return id, nil
}
