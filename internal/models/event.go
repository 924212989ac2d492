package models

import "time"

const (
	EventMeeting   = "meeting"
	EventDeadline  = "deadline"
	EventMilestone = "milestone"
	EventReminder  = "reminder"
)

// CalendarEvent is an entry of /events. End is optional for point events.
type CalendarEvent struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Start       Date      `json:"start"`
	End         *Date     `json:"end,omitempty"`
	AllDay      bool      `json:"all_day"`
	ProjectID   *uint     `json:"project_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Until returns the end of the event, or its start for point events.
func (e CalendarEvent) Until() time.Time {
	if e.End != nil && !e.End.IsZero() {
		return e.End.Time
	}
	return e.Start.Time
}
