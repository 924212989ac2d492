package main

import (
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/api"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/config"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/services"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/store"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/logger"
)

// appServices holds the controllers shared by the session.
type appServices struct {
	store         store.Store
	client        *api.Client
	toaster       *services.Toaster
	auth          *services.AuthController
	projects      *services.ProjectController
	team          *services.TeamController
	calendar      *services.CalendarController
	notifications *services.NotificationController
}

// bootstrap opens local storage and wires every controller to one client.
func bootstrap(cfg *config.Config) *appServices {
	st, err := store.Open(cfg.Store)
	if err != nil {
		logger.Fatalf("Failed to open local storage: %v", err)
	}

	client := api.NewFromConfig(cfg.API, st)
	toaster := services.NewToaster()
	auth := services.NewAuthController(client, toaster)

	return &appServices{
		store:         st,
		client:        client,
		toaster:       toaster,
		auth:          auth,
		projects:      services.NewProjectController(client, auth, toaster),
		team:          services.NewTeamController(client, toaster),
		calendar:      services.NewCalendarController(client, st, services.NewHolidayCalendar(), cfg.Calendar.HolidayCountry, toaster),
		notifications: services.NewNotificationController(client, toaster, services.NotificationOptionsFromConfig(cfg.Realtime)),
	}
}

// shutdown stops background work.
func (s *appServices) shutdown() {
	s.notifications.Stop()
	logger.Info().Msg("Notification channel stopped")
}
