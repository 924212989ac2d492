package mockapi

import (
	"sort"
	"strings"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/models"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/response"
	"github.com/gin-gonic/gin"
)

// listEvents answers with a bare array.
func (s *Server) listEvents(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.CalendarEvent{}
	for _, id := range sortedIDs(s.st.events) {
		out = append(out, *s.st.events[id])
	}
	response.Bare(c, out)
}

type eventBody struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Type        *string      `json:"type"`
	Start       *models.Date `json:"start"`
	End         *models.Date `json:"end"`
	AllDay      *bool        `json:"all_day"`
	ProjectID   *uint        `json:"project_id"`
}

func (b eventBody) apply(e *models.CalendarEvent) {
	if b.Title != nil {
		e.Title = strings.TrimSpace(*b.Title)
	}
	if b.Description != nil {
		e.Description = *b.Description
	}
	if b.Type != nil {
		e.Type = *b.Type
	}
	if b.Start != nil {
		e.Start = *b.Start
	}
	if b.End != nil {
		e.End = b.End
	}
	if b.AllDay != nil {
		e.AllDay = *b.AllDay
	}
	if b.ProjectID != nil {
		e.ProjectID = b.ProjectID
	}
}

func (s *Server) createEvent(c *gin.Context) {
	var body eventBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if body.Title == nil || strings.TrimSpace(*body.Title) == "" || body.Start == nil || body.Start.IsZero() {
		response.BadRequest(c, "Title and start are required")
		return
	}
	var e models.CalendarEvent
	body.apply(&e)
	if e.Type == "" {
		e.Type = models.EventMeeting
	}
	response.Created(c, s.AddEvent(e), "Event created successfully")
}

func (s *Server) updateEvent(c *gin.Context) {
	id, _ := paramID(c)
	var body eventBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.st.events[id]
	if !ok {
		response.NotFound(c, "Event not found")
		return
	}
	body.apply(e)
	response.Success(c, *e)
}

func (s *Server) deleteEvent(c *gin.Context) {
	id, _ := paramID(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.events[id]; !ok {
		response.NotFound(c, "Event not found")
		return
	}
	delete(s.st.events, id)
	response.Message(c, "Event deleted successfully")
}

// listNotifications returns newest first.
func (s *Server) listNotifications(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := sortedIDs(s.st.notifications)
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	out := make([]models.Notification, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.st.notifications[id])
	}
	response.Success(c, out)
}

func (s *Server) markRead(c *gin.Context) {
	id, _ := paramID(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.st.notifications[id]
	if !ok {
		response.NotFound(c, "Notification not found")
		return
	}
	n.Read = true
	response.Success(c, *n)
}

func (s *Server) markAllRead(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.st.notifications {
		n.Read = true
	}
	response.Message(c, "All notifications marked as read")
}

func (s *Server) deleteNotification(c *gin.Context) {
	id, _ := paramID(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.notifications[id]; !ok {
		response.NotFound(c, "Notification not found")
		return
	}
	delete(s.st.notifications, id)
	response.Message(c, "Notification deleted")
}
