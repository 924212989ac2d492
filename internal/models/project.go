package models

import "time"

const (
	ProjectActive    = "active"
	ProjectCompleted = "completed"
	ProjectOnHold    = "on_hold"
	ProjectCancelled = "cancelled"
)

const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Project carries the server-derived counters alongside its own fields.
type Project struct {
	ID                  uint      `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	Status              string    `json:"status"`
	Priority            string    `json:"priority"`
	StartDate           *Date     `json:"start_date,omitempty"`
	EndDate             *Date     `json:"end_date,omitempty"`
	Budget              *Number   `json:"budget,omitempty"`
	TasksCount          int       `json:"tasks_count"`
	CompletedTasks      int       `json:"completed_tasks"`
	TeamSize            int       `json:"team_size"`
	TotalEstimatedHours Number    `json:"total_estimated_hours"`
	TotalTimeSpent      Number    `json:"total_time_spent"`
	ProgressPercentage  *Number   `json:"progress_percentage,omitempty"`
	CreatedBy           uint      `json:"created_by"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Overdue reports whether an unfinished project's end date is before now.
func (p Project) Overdue(now time.Time) bool {
	if p.EndDate == nil || p.EndDate.IsZero() {
		return false
	}
	if p.Status == ProjectCompleted || p.Status == ProjectCancelled {
		return false
	}
	return p.EndDate.Day().Before(Date{now}.Day().Time)
}
