// Package main is the entry point for the ministry planner API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/zapponejosh/ministry-planner/internal/analyze"
	"github.com/zapponejosh/ministry-planner/internal/api"
	"github.com/zapponejosh/ministry-planner/internal/config"
	"github.com/zapponejosh/ministry-planner/internal/database"
	"github.com/zapponejosh/ministry-planner/internal/holiday"
	"github.com/zapponejosh/ministry-planner/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.Setup(cfg)

	log.Info("starting ministry planner API",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("log_level", cfg.LogLevel),
	)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	db, err := database.Open(database.DefaultConfig(cfg.DatabasePath), log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	applied, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if applied > 0 {
		log.Info("migrations applied", slog.Int("count", applied))
	}

	var extraRules []holiday.Rule
	if cfg.HolidayRulesPath != "" {
		extraRules, err = holiday.LoadRulesFile(cfg.HolidayRulesPath)
		if err != nil {
			return fmt.Errorf("load holiday rules file: %w", err)
		}
		log.Info("holiday rules file loaded",
			slog.String("path", cfg.HolidayRulesPath),
			slog.Int("rules", len(extraRules)))
	}

	store := holiday.NewStore(cfg.CustomHolidaysPath)
	holidays := holiday.NewService(store, extraRules, log)

	// Re-center the ±1 year cache window so it tracks the calendar after
	// New Year without a restart.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.HolidayRefreshCron, func() {
		holidays.RefreshWindow()
		log.Info("holiday cache window refreshed")
	}); err != nil {
		return fmt.Errorf("schedule holiday refresh: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	analyzer := analyze.New(cfg.AnalyzerURL)

	handlers := api.NewHandlers(db, holidays, analyzer, cfg, log)
	router := api.SetupRoutes(handlers, cfg, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-stop:
		log.Info("shutting down", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("ministry planner API stopped")
	return nil
}
