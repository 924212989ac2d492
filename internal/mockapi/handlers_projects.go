package mockapi

import (
	"strings"
	"time"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/middleware"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/models"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/response"
	"github.com/gin-gonic/gin"
)

type projectBody struct {
	Name               *string        `json:"name"`
	Description        *string        `json:"description"`
	Status             *string        `json:"status"`
	Priority           *string        `json:"priority"`
	StartDate          *models.Date   `json:"start_date"`
	EndDate            *models.Date   `json:"end_date"`
	Budget             *models.Number `json:"budget"`
	ProgressPercentage *models.Number `json:"progress_percentage"`
}

func (b projectBody) apply(p *models.Project) {
	if b.Name != nil {
		p.Name = strings.TrimSpace(*b.Name)
	}
	if b.Description != nil {
		p.Description = *b.Description
	}
	if b.Status != nil {
		p.Status = *b.Status
	}
	if b.Priority != nil {
		p.Priority = *b.Priority
	}
	if b.StartDate != nil {
		p.StartDate = b.StartDate
	}
	if b.EndDate != nil {
		p.EndDate = b.EndDate
	}
	if b.Budget != nil {
		p.Budget = b.Budget
	}
	if b.ProgressPercentage != nil {
		p.ProgressPercentage = b.ProgressPercentage
	}
	p.UpdatedAt = time.Now()
}

// listProjects answers with the doubly nested envelope.
func (s *Server) listProjects(c *gin.Context) {
	status := c.Query("status")
	priority := c.Query("priority")
	search := strings.ToLower(strings.TrimSpace(c.Query("search")))

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Project{}
	for _, id := range sortedIDs(s.st.projects) {
		p := s.st.projects[id]
		if status != "" && p.Status != status {
			continue
		}
		if priority != "" && p.Priority != priority {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		out = append(out, s.st.projectView(p))
	}
	response.Nested(c, out)
}

func (s *Server) getProject(c *gin.Context) {
	id, _ := paramID(c)
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.st.projects[id]
	if !ok {
		response.NotFound(c, "Project not found")
		return
	}
	response.Success(c, s.st.projectView(p))
}

func (s *Server) createProject(c *gin.Context) {
	var body projectBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if body.Name == nil || strings.TrimSpace(*body.Name) == "" {
		response.BadRequest(c, "Project name is required")
		return
	}

	s.mu.RLock()
	dup := s.st.projectByName(*body.Name) != nil
	s.mu.RUnlock()
	if dup {
		response.Error(c, response.NewConflict("Project with this name already exists"))
		return
	}

	var p models.Project
	body.apply(&p)
	p.CreatedBy = middleware.GetUserID(c)
	p = s.AddProject(p)
	s.AddMember(p.ID, p.CreatedBy, models.RoleProjectManager)

	s.mu.RLock()
	view := s.st.projectView(s.st.projects[p.ID])
	s.mu.RUnlock()
	response.Created(c, view, "Project created successfully")
}

func (s *Server) updateProject(c *gin.Context) {
	id, _ := paramID(c)
	var body projectBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.projects[id]
	if !ok {
		response.NotFound(c, "Project not found")
		return
	}
	if body.Name != nil {
		if other := s.st.projectByName(*body.Name); other != nil && other.ID != id {
			response.Error(c, response.NewConflict("Project with this name already exists"))
			return
		}
	}
	body.apply(p)
	response.Success(c, s.st.projectView(p))
}

func (s *Server) deleteProject(c *gin.Context) {
	id, _ := paramID(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.projects[id]; !ok {
		response.NotFound(c, "Project not found")
		return
	}
	delete(s.st.projects, id)
	for tid, t := range s.st.tasks {
		if t.ProjectID == id {
			delete(s.st.tasks, tid)
		}
	}
	for mid, m := range s.st.milestones {
		if m.ProjectID == id {
			delete(s.st.milestones, mid)
		}
	}
	for mid, m := range s.st.members {
		if m.ProjectID == id {
			delete(s.st.members, mid)
		}
	}
	for lid, l := range s.st.timeLogs {
		if l.ProjectID == id {
			delete(s.st.timeLogs, lid)
		}
	}
	response.Message(c, "Project deleted successfully")
}

// projectTasks answers with a bare array.
func (s *Server) projectTasks(c *gin.Context) {
	id, _ := paramID(c)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Task{}
	for _, tid := range sortedIDs(s.st.tasks) {
		if t := s.st.tasks[tid]; t.ProjectID == id {
			out = append(out, s.st.taskView(t))
		}
	}
	response.Bare(c, out)
}

func (s *Server) projectMilestones(c *gin.Context) {
	id, _ := paramID(c)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Milestone{}
	for _, mid := range sortedIDs(s.st.milestones) {
		if m := s.st.milestones[mid]; m.ProjectID == id {
			out = append(out, *m)
		}
	}
	response.Success(c, out)
}

func (s *Server) projectTeam(c *gin.Context) {
	id, _ := paramID(c)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.ProjectMember{}
	for _, mid := range sortedIDs(s.st.members) {
		m := s.st.members[mid]
		if m.ProjectID != id {
			continue
		}
		view := *m
		view.User = s.st.userPtr(m.UserID)
		out = append(out, view)
	}
	response.Success(c, out)
}

func (s *Server) projectTimeLogs(c *gin.Context) {
	id, _ := paramID(c)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.TimeLog{}
	for _, lid := range sortedIDs(s.st.timeLogs) {
		if l := s.st.timeLogs[lid]; l.ProjectID == id {
			view := *l
			view.User = s.st.userPtr(l.UserID)
			out = append(out, view)
		}
	}
	response.Bare(c, out)
}

type taskBody struct {
	ProjectID          *uint          `json:"project_id"`
	MilestoneID        *uint          `json:"milestone_id"`
	Title              *string        `json:"title"`
	Description        *string        `json:"description"`
	Status             *string        `json:"status"`
	Priority           *string        `json:"priority"`
	DueDate            *models.Date   `json:"due_date"`
	EstimatedHours     *models.Number `json:"estimated_hours"`
	AssignedTo         *uint          `json:"assigned_to"`
	ProgressPercentage *models.Number `json:"progress_percentage"`
}

func (b taskBody) apply(t *models.Task) {
	if b.MilestoneID != nil {
		t.MilestoneID = b.MilestoneID
	}
	if b.Title != nil {
		t.Title = strings.TrimSpace(*b.Title)
	}
	if b.Description != nil {
		t.Description = *b.Description
	}
	if b.Status != nil {
		t.Status = *b.Status
	}
	if b.Priority != nil {
		t.Priority = *b.Priority
	}
	if b.DueDate != nil {
		t.DueDate = b.DueDate
	}
	if b.EstimatedHours != nil {
		t.EstimatedHours = *b.EstimatedHours
	}
	if b.AssignedTo != nil {
		t.AssignedTo = b.AssignedTo
	}
	if b.ProgressPercentage != nil {
		t.ProgressPercentage = b.ProgressPercentage
	}
	t.UpdatedAt = time.Now()
}

func (s *Server) createTask(c *gin.Context) {
	var body taskBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if body.ProjectID == nil || body.Title == nil || strings.TrimSpace(*body.Title) == "" {
		response.BadRequest(c, "Project and title are required")
		return
	}
	s.mu.RLock()
	_, ok := s.st.projects[*body.ProjectID]
	s.mu.RUnlock()
	if !ok {
		response.NotFound(c, "Project not found")
		return
	}

	t := models.Task{ProjectID: *body.ProjectID}
	body.apply(&t)
	t = s.AddTask(t)
	if t.AssignedTo != nil {
		s.notifyAssignment(t)
	}

	s.mu.RLock()
	view := s.st.taskView(s.st.tasks[t.ID])
	s.mu.RUnlock()
	response.Created(c, view, "Task created successfully")
}

func (s *Server) updateTask(c *gin.Context) {
	id, _ := paramID(c)
	var body taskBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	s.mu.Lock()
	t, ok := s.st.tasks[id]
	if !ok {
		s.mu.Unlock()
		response.NotFound(c, "Task not found")
		return
	}
	prevAssignee := t.AssignedTo
	prevStatus := t.Status
	body.apply(t)
	view := s.st.taskView(t)
	s.mu.Unlock()

	if view.AssignedTo != nil && (prevAssignee == nil || *prevAssignee != *view.AssignedTo) {
		s.notifyAssignment(view)
	}
	if view.Status != prevStatus {
		s.pushAndStore(models.NotificationStatusChange, gin.H{"task": view.Title, "status": view.Status},
			"Status Updated", "Task "+view.Title+" status changed to "+view.Status)
	}
	response.Success(c, view)
}

func (s *Server) deleteTask(c *gin.Context) {
	id, _ := paramID(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.tasks[id]; !ok {
		response.NotFound(c, "Task not found")
		return
	}
	delete(s.st.tasks, id)
	for lid, l := range s.st.timeLogs {
		if l.TaskID == id {
			delete(s.st.timeLogs, lid)
		}
	}
	for cid, cm := range s.st.comments {
		if cm.TaskID == id {
			delete(s.st.comments, cid)
		}
	}
	response.Message(c, "Task deleted successfully")
}

// taskComments answers with the doubly nested envelope.
func (s *Server) taskComments(c *gin.Context) {
	id, _ := paramID(c)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Comment{}
	for _, cid := range sortedIDs(s.st.comments) {
		if cm := s.st.comments[cid]; cm.TaskID == id {
			view := *cm
			if view.User == nil {
				view.User = s.st.userPtr(cm.UserID)
			}
			out = append(out, view)
		}
	}
	response.Nested(c, out)
}

func (s *Server) taskTimeLogs(c *gin.Context) {
	id, _ := paramID(c)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.TimeLog{}
	for _, lid := range sortedIDs(s.st.timeLogs) {
		if l := s.st.timeLogs[lid]; l.TaskID == id {
			out = append(out, *l)
		}
	}
	response.Success(c, out)
}

type milestoneBody struct {
	ProjectID            *uint          `json:"project_id"`
	Name                 *string        `json:"name"`
	Description          *string        `json:"description"`
	Status               *string        `json:"status"`
	DueDate              *models.Date   `json:"due_date"`
	CompletionPercentage *models.Number `json:"completion_percentage"`
}

func (b milestoneBody) apply(m *models.Milestone) {
	if b.Name != nil {
		m.Name = strings.TrimSpace(*b.Name)
	}
	if b.Description != nil {
		m.Description = *b.Description
	}
	if b.Status != nil {
		m.Status = *b.Status
	}
	if b.DueDate != nil {
		m.DueDate = b.DueDate
	}
	if b.CompletionPercentage != nil {
		m.CompletionPercentage = b.CompletionPercentage
	}
	m.UpdatedAt = time.Now()
}

func (s *Server) createMilestone(c *gin.Context) {
	var body milestoneBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if body.ProjectID == nil || body.Name == nil || strings.TrimSpace(*body.Name) == "" {
		response.BadRequest(c, "Project and name are required")
		return
	}
	s.mu.RLock()
	_, ok := s.st.projects[*body.ProjectID]
	s.mu.RUnlock()
	if !ok {
		response.NotFound(c, "Project not found")
		return
	}
	m := models.Milestone{ProjectID: *body.ProjectID}
	body.apply(&m)
	response.Created(c, s.AddMilestone(m), "Milestone created successfully")
}

func (s *Server) updateMilestone(c *gin.Context) {
	id, _ := paramID(c)
	var body milestoneBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	s.mu.Lock()
	m, ok := s.st.milestones[id]
	if !ok {
		s.mu.Unlock()
		response.NotFound(c, "Milestone not found")
		return
	}
	prevStatus := m.Status
	body.apply(m)
	view := *m
	s.mu.Unlock()

	if view.Status != prevStatus {
		s.pushAndStore(models.NotificationMilestone, gin.H{"milestone": view.Name, "status": view.Status},
			"Milestone Update", "Milestone "+view.Name+" is now "+view.Status)
	}
	response.Success(c, view)
}

func (s *Server) deleteMilestone(c *gin.Context) {
	id, _ := paramID(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.milestones[id]; !ok {
		response.NotFound(c, "Milestone not found")
		return
	}
	delete(s.st.milestones, id)
	for _, t := range s.st.tasks {
		if t.MilestoneID != nil && *t.MilestoneID == id {
			t.MilestoneID = nil
		}
	}
	response.Message(c, "Milestone deleted successfully")
}

// milestoneTasks answers with the doubly nested envelope.
func (s *Server) milestoneTasks(c *gin.Context) {
	id, _ := paramID(c)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Task{}
	for _, tid := range sortedIDs(s.st.tasks) {
		t := s.st.tasks[tid]
		if t.MilestoneID != nil && *t.MilestoneID == id {
			out = append(out, s.st.taskView(t))
		}
	}
	response.Nested(c, out)
}

type timeLogBody struct {
	TaskID      uint          `json:"task_id"`
	HoursSpent  models.Number `json:"hours_spent"`
	Date        models.Date   `json:"date"`
	Description string        `json:"description"`
}

func (s *Server) createTimeLog(c *gin.Context) {
	var body timeLogBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if body.HoursSpent <= 0 {
		response.BadRequest(c, "Hours spent must be positive")
		return
	}
	s.mu.RLock()
	t, ok := s.st.tasks[body.TaskID]
	var projectID uint
	if ok {
		projectID = t.ProjectID
	}
	s.mu.RUnlock()
	if !ok {
		response.NotFound(c, "Task not found")
		return
	}
	if body.Date.IsZero() {
		body.Date = models.Date{Time: time.Now()}.Day()
	}
	l := s.AddTimeLog(models.TimeLog{
		TaskID:      body.TaskID,
		ProjectID:   projectID,
		UserID:      middleware.GetUserID(c),
		HoursSpent:  body.HoursSpent,
		Date:        body.Date,
		Description: body.Description,
	})
	response.Created(c, l, "Time logged successfully")
}

func (s *Server) deleteTimeLog(c *gin.Context) {
	id, _ := paramID(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.timeLogs[id]; !ok {
		response.NotFound(c, "Time log not found")
		return
	}
	delete(s.st.timeLogs, id)
	response.Message(c, "Time log deleted successfully")
}

type commentBody struct {
	TaskID      uint                `json:"task_id"`
	Content     string              `json:"content"`
	Attachments []models.Attachment `json:"attachments"`
}

func (s *Server) createComment(c *gin.Context) {
	var body commentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if strings.TrimSpace(body.Content) == "" {
		response.BadRequest(c, "Comment content is required")
		return
	}
	userID := middleware.GetUserID(c)
	s.mu.RLock()
	t, ok := s.st.tasks[body.TaskID]
	var title string
	if ok {
		title = t.Title
	}
	author := s.st.userPtr(userID)
	s.mu.RUnlock()
	if !ok {
		response.NotFound(c, "Task not found")
		return
	}

	cm := s.AddComment(models.Comment{TaskID: body.TaskID, UserID: userID, User: author, Content: body.Content, Attachments: body.Attachments})
	name := "Someone"
	if author != nil {
		name = author.FullName()
	}
	s.pushAndStore(models.NotificationComment, gin.H{"task": title, "user": name, "comment": body.Content},
		"New Comment", name+" commented on "+title)
	response.Created(c, cm, "Comment added successfully")
}

func (s *Server) notifyAssignment(t models.Task) {
	s.pushAndStore(models.NotificationAssignment, gin.H{"task": t.Title, "task_id": t.ID},
		"Task Assigned", "You have been assigned to task: "+t.Title)
}

// pushAndStore records a notification for polling and pushes the matching
// typed message to connected clients.
func (s *Server) pushAndStore(kind string, data gin.H, title, message string) {
	s.mu.Lock()
	n := s.addNotificationLocked(models.Notification{Type: kind, Title: title, Message: message})
	s.mu.Unlock()
	data["id"] = n.ID
	s.Push(gin.H{"type": kind, "data": data})
}
