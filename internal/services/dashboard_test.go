package services

import (
	"testing"
	"time"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/models"
)

func TestBuildDashboard(t *testing.T) {
	now := time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC)
	past := models.NewDate(2024, 6, 1)
	soon := models.NewDate(2024, 6, 14)
	sooner := models.NewDate(2024, 6, 11)
	far := models.NewDate(2024, 9, 1)
	budget := models.Number(1000)

	projects := []models.Project{
		{ID: 1, Name: "Late", Status: models.ProjectActive, Priority: models.PriorityHigh, EndDate: &past, TasksCount: 4, CompletedTasks: 4, TeamSize: 3},
		{ID: 2, Name: "Soon", Status: models.ProjectActive, Priority: models.PriorityHigh, EndDate: &soon, Budget: &budget, TotalEstimatedHours: 10, TotalTimeSpent: 5},
		{ID: 3, Name: "Sooner", Status: models.ProjectActive, Priority: models.PriorityLow, EndDate: &sooner, TeamSize: 2},
		{ID: 4, Name: "Far", Status: models.ProjectOnHold, Priority: models.PriorityLow, EndDate: &far, Budget: &budget},
		{ID: 5, Name: "Done", Status: models.ProjectCompleted, EndDate: &past, ProgressPercentage: num(100)},
	}

	stats := BuildDashboard(projects, now)

	if stats.TotalProjects != 5 {
		t.Errorf("TotalProjects = %d", stats.TotalProjects)
	}
	if stats.ByStatus[models.ProjectActive] != 3 || stats.ByStatus[models.ProjectOnHold] != 1 || stats.ByStatus[models.ProjectCompleted] != 1 {
		t.Errorf("ByStatus = %v", stats.ByStatus)
	}
	if stats.ByPriority[models.PriorityHigh] != 2 || stats.ByPriority[models.PriorityLow] != 2 {
		t.Errorf("ByPriority = %v", stats.ByPriority)
	}
	if stats.Overdue != 1 {
		t.Errorf("Overdue = %d, completed projects must not count", stats.Overdue)
	}
	// (100 + 50 + 0 + 0 + 100) / 5
	if stats.AverageProgress != 50 {
		t.Errorf("AverageProgress = %v", stats.AverageProgress)
	}
	if stats.TotalTasks != 4 || stats.CompletedTasks != 4 || stats.TeamSize != 5 {
		t.Errorf("unexpected counters %+v", stats)
	}
	if stats.TotalBudget != 2000 || stats.EstimatedHours != 10 || stats.HoursSpent != 5 {
		t.Errorf("unexpected sums %+v", stats)
	}

	if len(stats.UpcomingDeadlines) != 2 {
		t.Fatalf("expected 2 deadlines, got %+v", stats.UpcomingDeadlines)
	}
	first, second := stats.UpcomingDeadlines[0], stats.UpcomingDeadlines[1]
	if first.ProjectID != 3 || first.DaysLeft != 1 {
		t.Errorf("unexpected first deadline %+v", first)
	}
	if second.ProjectID != 2 || second.DaysLeft != 4 {
		t.Errorf("unexpected second deadline %+v", second)
	}
}

func TestBuildDashboard_Empty(t *testing.T) {
	stats := BuildDashboard(nil, time.Now())
	if stats.TotalProjects != 0 || stats.AverageProgress != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.UpcomingDeadlines == nil || stats.ByStatus == nil {
		t.Error("collections should be non-nil")
	}
}

func TestBuildDashboard_DaysLeftInLocalZone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// Late evening before the 2024-03-10 spring-forward change.
	now := time.Date(2024, 3, 9, 22, 0, 0, 0, ny)
	end := models.NewDate(2024, 3, 12)
	projects := []models.Project{{ID: 1, Name: "Launch", Status: models.ProjectActive, EndDate: &end}}

	stats := BuildDashboard(projects, now)
	if len(stats.UpcomingDeadlines) != 1 || stats.UpcomingDeadlines[0].DaysLeft != 3 {
		t.Errorf("expected 3 days left, got %+v", stats.UpcomingDeadlines)
	}
}
