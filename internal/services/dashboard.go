package services

import (
	"math"
	"sort"
	"time"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/models"
)

// Deadline is an active project ending within the upcoming window.
type Deadline struct {
	ProjectID uint        `json:"project_id"`
	Name      string      `json:"name"`
	EndDate   models.Date `json:"end_date"`
	DaysLeft  int         `json:"days_left"`
}

type DashboardStats struct {
	TotalProjects     int            `json:"total_projects"`
	ByStatus          map[string]int `json:"by_status"`
	ByPriority        map[string]int `json:"by_priority"`
	Overdue           int            `json:"overdue"`
	AverageProgress   float64        `json:"average_progress"`
	TotalTasks        int            `json:"total_tasks"`
	CompletedTasks    int            `json:"completed_tasks"`
	TeamSize          int            `json:"team_size"`
	TotalBudget       float64        `json:"total_budget"`
	EstimatedHours    float64        `json:"estimated_hours"`
	HoursSpent        float64        `json:"hours_spent"`
	UpcomingDeadlines []Deadline     `json:"upcoming_deadlines"`
}

// DeadlineWindow bounds UpcomingDeadlines.
const DeadlineWindow = 14 * 24 * time.Hour

// BuildDashboard aggregates projects as of now.
func BuildDashboard(projects []models.Project, now time.Time) DashboardStats {
	stats := DashboardStats{
		TotalProjects:     len(projects),
		ByStatus:          make(map[string]int),
		ByPriority:        make(map[string]int),
		UpcomingDeadlines: []Deadline{},
	}
	today := models.Date{Time: now}.Day().Time
	horizon := today.Add(DeadlineWindow)

	var progress float64
	for _, p := range projects {
		stats.ByStatus[p.Status]++
		stats.ByPriority[p.Priority]++
		if p.Overdue(now) {
			stats.Overdue++
		}
		progress += ProjectProgress(p)
		stats.TotalTasks += p.TasksCount
		stats.CompletedTasks += p.CompletedTasks
		stats.TeamSize += p.TeamSize
		if p.Budget != nil {
			stats.TotalBudget += p.Budget.Float()
		}
		stats.EstimatedHours += p.TotalEstimatedHours.Float()
		stats.HoursSpent += p.TotalTimeSpent.Float()

		if p.Status == models.ProjectActive && p.EndDate != nil {
			end := p.EndDate.Day().Time
			if !end.Before(today) && !end.After(horizon) {
				stats.UpcomingDeadlines = append(stats.UpcomingDeadlines, Deadline{
					ProjectID: p.ID,
					Name:      p.Name,
					EndDate:   p.EndDate.Day(),
					DaysLeft:  calendarDays(today, end),
				})
			}
		}
	}
	if len(projects) > 0 {
		stats.AverageProgress = math.Round(progress / float64(len(projects)))
	}
	sort.SliceStable(stats.UpcomingDeadlines, func(i, j int) bool {
		return stats.UpcomingDeadlines[i].EndDate.Before(stats.UpcomingDeadlines[j].EndDate.Time)
	})
	return stats
}

// Dashboard aggregates the currently held projects.
func (c *ProjectController) Dashboard() DashboardStats {
	return BuildDashboard(c.Projects(), c.now())
}
