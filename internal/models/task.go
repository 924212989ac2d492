package models

import "time"

const (
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskReview     = "review"
	TaskCompleted  = "completed"
	TaskCancelled  = "cancelled"
)

const (
	MilestonePending    = "pending"
	MilestoneInProgress = "in_progress"
	MilestoneCompleted  = "completed"
	MilestoneOverdue    = "overdue"
)

type Task struct {
	ID                 uint      `json:"id"`
	ProjectID          uint      `json:"project_id"`
	MilestoneID        *uint     `json:"milestone_id,omitempty"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Status             string    `json:"status"`
	Priority           string    `json:"priority"`
	DueDate            *Date     `json:"due_date,omitempty"`
	EstimatedHours     Number    `json:"estimated_hours"`
	AssignedTo         *uint     `json:"assigned_to,omitempty"`
	Assignee           *User     `json:"assignee,omitempty"`
	TotalTimeSpent     Number    `json:"total_time_spent"`
	ProgressPercentage *Number   `json:"progress_percentage,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type Milestone struct {
	ID                   uint      `json:"id"`
	ProjectID            uint      `json:"project_id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Status               string    `json:"status"`
	DueDate              *Date     `json:"due_date,omitempty"`
	CompletionPercentage *Number   `json:"completion_percentage,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type TimeLog struct {
	ID          uint      `json:"id"`
	TaskID      uint      `json:"task_id"`
	ProjectID   uint      `json:"project_id"`
	UserID      uint      `json:"user_id"`
	HoursSpent  Number    `json:"hours_spent"`
	Date        Date      `json:"date"`
	Description string    `json:"description"`
	User        *User     `json:"user,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// Comment is append-only; clients refetch the task's comments after posting.
type Comment struct {
	ID          uint         `json:"id"`
	TaskID      uint         `json:"task_id"`
	UserID      uint         `json:"user_id"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments"`
	User        *User        `json:"user,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
