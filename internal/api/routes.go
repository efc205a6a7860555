package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zapponejosh/ministry-planner/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Reads are public; every mutating route sits behind the API key.
func SetupRoutes(handlers *Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RecoveryMiddleware(logger))
	r.Use(LoggingMiddleware(logger))
	r.Use(CORSMiddleware())

	auth := AuthMiddleware(cfg, logger)

	r.Get("/health", handlers.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		// Schedule (sermons)
		r.Get("/schedule", handlers.ListSchedule)
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/schedule", handlers.CreateSermon)
			r.Put("/schedule/{id}", handlers.UpdateSermon)
			r.Delete("/schedule/{id}", handlers.DeleteSermon)
			r.Post("/schedule/batch-update", handlers.BatchUpdateSchedule)
		})

		// Series and timeline
		r.Get("/series", handlers.ListAllSeries)
		r.Get("/series/timeline", handlers.GetTimeline)
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/series", handlers.CreateSeries)
			r.Put("/series/{id}", handlers.UpdateSeries)
		})

		// Devotions
		r.Get("/devotions/series", handlers.ListDevotionSeries)
		r.Get("/devotions/lessons", handlers.ListDevotionLessons)
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/devotions/series", handlers.CreateDevotionSeries)
			r.Post("/devotions/lessons", handlers.CreateDevotionLesson)
			r.Put("/devotions/lessons/{id}", handlers.UpdateDevotionLesson)
			r.Post("/devotions/plan-month", handlers.PlanDevotionMonth)
			r.Post("/devotions/cascade-reschedule", handlers.CascadeRescheduleDevotions)
		})

		// English classes
		r.Get("/english/classes", handlers.ListEnglishClasses)
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/english/classes", handlers.CreateEnglishClass)
			r.Put("/english/classes/{id}", handlers.UpdateEnglishClass)
			r.Post("/english/plan-month", handlers.PlanEnglishMonth)
			r.Post("/english/cascade-reschedule", handlers.CascadeRescheduleEnglish)
		})

		// Holidays
		r.Get("/holidays", handlers.GetHolidays)
		r.Get("/holidays/upcoming", handlers.GetUpcomingHolidays)
		r.Get("/holidays/year/{year}", handlers.GetYearHolidays)
		r.Get("/holidays/custom", handlers.ListCustomHolidays)
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/holidays/custom", handlers.CreateCustomHoliday)
			r.Delete("/holidays/custom/{id}", handlers.DeleteCustomHoliday)
		})

		// Calendar
		r.Get("/calendar/export.ics", handlers.ExportICS)
		r.Get("/calendar/{year}/{month}", handlers.GetMonthGrid)

		// Analysis proxy
		r.With(auth).Post("/analyze-sermon", handlers.AnalyzeSermon)
	})

	return r
}
