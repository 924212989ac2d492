package models

import (
	"encoding/json"
	"time"
)

const (
	NotificationComment      = "comment"
	NotificationAssignment   = "assignment"
	NotificationStatusChange = "status_change"
	NotificationMilestone    = "milestone"
	NotificationCustom       = "custom"
)

type Notification struct {
	ID        FlexID          `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Read      bool            `json:"read"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
