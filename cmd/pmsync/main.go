package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/config"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/services"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)

	app := bootstrap(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go streamToasts(ctx, app.toaster)

	if err := app.auth.Init(ctx); err != nil {
		logger.Warn().Err(err).Msg("Stored session rejected")
	}
	if !app.auth.IsAuthenticated() && cfg.Auth.Email != "" {
		if _, err := app.auth.Login(ctx, services.LoginRequest{Email: cfg.Auth.Email, Password: cfg.Auth.Password}); err != nil {
			logger.Fatalf("Login failed: %s", services.ErrorMessage(err))
		}
	}
	if !app.auth.IsAuthenticated() {
		logger.Fatalf("%v: set PM_EMAIL and PM_PASSWORD or store a token first", services.ErrNotAuthenticated)
	}
	user, _ := app.auth.User()
	logger.Info().Str("user", user.FullName()).Str("role", user.Role).Msg("Session ready")

	app.projects.Watch(ctx)
	if mode := app.calendar.FetchEvents(ctx); mode.Offline() {
		logger.Warn().Str("mode", string(mode)).Str("error", app.calendar.Err()).Msg("Calendar is offline")
	}
	if err := app.notifications.FetchNotifications(ctx); err != nil {
		logger.Warn().Err(err).Msg("Initial notification fetch failed")
	}
	app.notifications.Start(ctx)

	logSummary(app)

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info().Str("addr", cfg.Metrics.Addr).Msg("Metrics server starting")
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down...")
	cancel()
	app.shutdown()
	if metricsSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Metrics server shutdown error")
		}
	}
	logger.Info().Msg("Shutdown complete")
}

// logSummary prints the dashboard and the next calendar entries.
func logSummary(app *appServices) {
	stats := app.projects.Dashboard()
	logger.Info().
		Int("projects", stats.TotalProjects).
		Int("overdue", stats.Overdue).
		Float64("avg_progress", stats.AverageProgress).
		Int("tasks", stats.TotalTasks).
		Int("team", stats.TeamSize).
		Float64("budget", stats.TotalBudget).
		Interface("by_status", stats.ByStatus).
		Msg("Dashboard")
	for _, d := range stats.UpcomingDeadlines {
		logger.Info().Str("project", d.Name).Str("end_date", d.EndDate.String()).Int("days_left", d.DaysLeft).Msg("Upcoming deadline")
	}

	mode := app.calendar.Mode()
	for _, ev := range app.calendar.Upcoming(5) {
		logger.Info().
			Str("title", ev.Title).
			Time("start", ev.Start.Time).
			Int("workdays_until", app.calendar.WorkdaysUntil(ev)).
			Str("source", string(mode)).
			Msg("Upcoming event")
	}
	logger.Info().Int("unread", app.notifications.UnreadCount()).Msg("Notifications")
}

// streamToasts logs every toast until ctx ends.
func streamToasts(ctx context.Context, toaster *services.Toaster) {
	id, toasts := toaster.Subscribe("cli")
	defer toaster.Unsubscribe(id)
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-toasts:
			if !ok {
				return
			}
			event := logger.Info()
			switch t.Level {
			case services.ToastError:
				event = logger.Error()
			case services.ToastWarning:
				event = logger.Warn()
			}
			event.Str("level", t.Level).Msg(t.Message)
		}
	}
}
