package mockapi

import (
	"crypto/rand"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/models"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/utils"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/logger"
	"github.com/google/uuid"
)

type userRecord struct {
	models.User
	passwordHash string
}

type state struct {
	nextID        uint
	users         map[uint]*userRecord
	projects      map[uint]*models.Project
	members       map[uint]*models.ProjectMember
	tasks         map[uint]*models.Task
	milestones    map[uint]*models.Milestone
	timeLogs      map[uint]*models.TimeLog
	comments      map[uint]*models.Comment
	invitations   map[string]*models.Invitation
	events        map[uint]*models.CalendarEvent
	notifications map[uint]*models.Notification
}

func newState() *state {
	return &state{
		users:         make(map[uint]*userRecord),
		projects:      make(map[uint]*models.Project),
		members:       make(map[uint]*models.ProjectMember),
		tasks:         make(map[uint]*models.Task),
		milestones:    make(map[uint]*models.Milestone),
		timeLogs:      make(map[uint]*models.TimeLog),
		comments:      make(map[uint]*models.Comment),
		invitations:   make(map[string]*models.Invitation),
		events:        make(map[uint]*models.CalendarEvent),
		notifications: make(map[uint]*models.Notification),
	}
}

func (st *state) id() uint {
	st.nextID++
	return st.nextID
}

func sortedIDs[T any](m map[uint]*T) []uint {
	ids := make([]uint, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (st *state) userByEmail(email string) *userRecord {
	for _, u := range st.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func (st *state) projectByName(name string) *models.Project {
	for _, p := range st.projects {
		if strings.EqualFold(strings.TrimSpace(p.Name), strings.TrimSpace(name)) {
			return p
		}
	}
	return nil
}

func (st *state) invitationByToken(token string) *models.Invitation {
	for _, inv := range st.invitations {
		if inv.Token == token {
			return inv
		}
	}
	return nil
}

// projectView fills the counters the backend derives from related rows.
func (st *state) projectView(p *models.Project) models.Project {
	out := *p
	var tasks, completed int
	var estimated, spent float64
	for _, t := range st.tasks {
		if t.ProjectID != p.ID {
			continue
		}
		tasks++
		if t.Status == models.TaskCompleted {
			completed++
		}
		estimated += t.EstimatedHours.Float()
	}
	for _, l := range st.timeLogs {
		if l.ProjectID == p.ID {
			spent += l.HoursSpent.Float()
		}
	}
	team := 0
	for _, m := range st.members {
		if m.ProjectID == p.ID {
			team++
		}
	}
	if tasks > 0 {
		out.TasksCount = tasks
		out.CompletedTasks = completed
		out.TotalEstimatedHours = models.Number(estimated)
	}
	if spent > 0 {
		out.TotalTimeSpent = models.Number(spent)
	}
	if team > 0 {
		out.TeamSize = team
	}
	return out
}

func (st *state) taskView(t *models.Task) models.Task {
	out := *t
	var spent float64
	for _, l := range st.timeLogs {
		if l.TaskID == t.ID {
			spent += l.HoursSpent.Float()
		}
	}
	if spent > 0 {
		out.TotalTimeSpent = models.Number(spent)
	}
	if t.AssignedTo != nil {
		if u, ok := st.users[*t.AssignedTo]; ok {
			user := u.User
			out.Assignee = &user
		}
	}
	return out
}

func (st *state) userPtr(id uint) *models.User {
	if u, ok := st.users[id]; ok {
		user := u.User
		return &user
	}
	return nil
}

func newInvitationToken() string {
	buf := make([]byte, models.InvitationTokenLength/2)
	if _, err := rand.Read(buf); err != nil {
		return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	}
	return hex.EncodeToString(buf)
}

// AddUser creates an account that can log in with password.
func (s *Server) AddUser(u models.User, password string) models.User {
	hash, err := utils.HashPassword(password)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to hash mock password")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.st.id()
	if u.Role == "" {
		u.Role = models.RoleMember
	}
	if u.Status == "" {
		u.Status = "active"
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	s.st.users[u.ID] = &userRecord{User: u, passwordHash: hash}
	return u
}

func (s *Server) AddProject(p models.Project) models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.st.id()
	if p.Status == "" {
		p.Status = models.ProjectActive
	}
	if p.Priority == "" {
		p.Priority = models.PriorityMedium
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.st.projects[p.ID] = &p
	return p
}

func (s *Server) AddMember(projectID, userID uint, role string) models.ProjectMember {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := models.ProjectMember{ID: s.st.id(), ProjectID: projectID, UserID: userID, Role: role, JoinedAt: time.Now()}
	s.st.members[m.ID] = &m
	return m
}

func (s *Server) AddTask(t models.Task) models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.st.id()
	if t.Status == "" {
		t.Status = models.TaskTodo
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now
	s.st.tasks[t.ID] = &t
	return t
}

func (s *Server) AddMilestone(m models.Milestone) models.Milestone {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.st.id()
	if m.Status == "" {
		m.Status = models.MilestonePending
	}
	now := time.Now()
	m.CreatedAt, m.UpdatedAt = now, now
	s.st.milestones[m.ID] = &m
	return m
}

func (s *Server) AddTimeLog(l models.TimeLog) models.TimeLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = s.st.id()
	if t, ok := s.st.tasks[l.TaskID]; ok && l.ProjectID == 0 {
		l.ProjectID = t.ProjectID
	}
	l.CreatedAt = time.Now()
	s.st.timeLogs[l.ID] = &l
	return l
}

func (s *Server) AddComment(c models.Comment) models.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.st.id()
	if c.Attachments == nil {
		c.Attachments = []models.Attachment{}
	}
	c.CreatedAt = time.Now()
	s.st.comments[c.ID] = &c
	return c
}

// AddInvitation stores inv, filling id, token, status and expiry when unset.
func (s *Server) AddInvitation(inv models.Invitation) models.Invitation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.Token == "" {
		inv.Token = newInvitationToken()
	}
	if inv.Status == "" {
		inv.Status = models.InvitationPending
	}
	if inv.ExpiresAt.IsZero() {
		inv.ExpiresAt = time.Now().Add(7 * 24 * time.Hour)
	}
	inv.CreatedAt = time.Now()
	s.st.invitations[inv.ID] = &inv
	return inv
}

func (s *Server) AddEvent(e models.CalendarEvent) models.CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.st.id()
	e.CreatedAt = time.Now()
	s.st.events[e.ID] = &e
	return e
}

// AddNotification stores n so the next poll returns it. It is not pushed.
func (s *Server) AddNotification(n models.Notification) models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addNotificationLocked(n)
}

func (s *Server) addNotificationLocked(n models.Notification) models.Notification {
	id := s.st.id()
	n.ID = models.FlexID(uintString(id))
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	s.st.notifications[id] = &n
	return n
}

func (s *Server) Invitation(id string) (models.Invitation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.st.invitations[id]
	if !ok {
		return models.Invitation{}, false
	}
	return *inv, true
}

// seed loads a small demo workspace; demo@example.com / password123.
func (s *Server) seed() {
	owner := s.AddUser(models.User{FirstName: "Demo", LastName: "User", Email: "demo@example.com", Username: "demo", Role: models.RoleProjectManager}, "password123")
	dev := s.AddUser(models.User{FirstName: "Dana", LastName: "Lee", Email: "dana@example.com", Username: "dana", Role: models.RoleDeveloper}, "password123")

	start := models.NewDate(time.Now().Year(), time.Now().Month(), 1)
	end := models.Date{Time: start.AddDate(0, 3, 0)}
	budget := models.Number(25000)
	web := s.AddProject(models.Project{Name: "Website Redesign", Description: "New marketing site", Priority: models.PriorityHigh, StartDate: &start, EndDate: &end, Budget: &budget, CreatedBy: owner.ID})
	app := s.AddProject(models.Project{Name: "Mobile App", Description: "iOS and Android client", Priority: models.PriorityCritical, CreatedBy: owner.ID})
	s.AddProject(models.Project{Name: "Legacy Cleanup", Status: models.ProjectOnHold, Priority: models.PriorityLow, CreatedBy: owner.ID})

	for _, p := range []models.Project{web, app} {
		s.AddMember(p.ID, owner.ID, models.RoleProjectManager)
		s.AddMember(p.ID, dev.ID, models.RoleDeveloper)
	}

	due := models.Date{Time: start.AddDate(0, 1, 0)}
	ms := s.AddMilestone(models.Milestone{ProjectID: web.ID, Name: "Design sign-off", DueDate: &due})
	design := s.AddTask(models.Task{ProjectID: web.ID, MilestoneID: &ms.ID, Title: "Wireframes", Status: models.TaskCompleted, EstimatedHours: 8, AssignedTo: &dev.ID})
	s.AddTask(models.Task{ProjectID: web.ID, MilestoneID: &ms.ID, Title: "Visual design", Status: models.TaskInProgress, EstimatedHours: 16, AssignedTo: &dev.ID})
	s.AddTask(models.Task{ProjectID: app.ID, Title: "Auth screens", EstimatedHours: 12})
	s.AddTimeLog(models.TimeLog{TaskID: design.ID, UserID: dev.ID, HoursSpent: 6, Date: models.Date{Time: time.Now().AddDate(0, 0, -2)}.Day(), Description: "Initial wireframes"})
	s.AddComment(models.Comment{TaskID: design.ID, UserID: owner.ID, User: &owner, Content: "Looks good, ship it."})

	s.AddEvent(models.CalendarEvent{Title: "Sprint planning", Type: models.EventMeeting, Start: models.Date{Time: time.Now().Add(24 * time.Hour).Truncate(time.Hour)}, ProjectID: &web.ID})
	s.AddEvent(models.CalendarEvent{Title: "Design sign-off", Type: models.EventMilestone, Start: due, AllDay: true, ProjectID: &web.ID})

	s.AddNotification(models.Notification{Type: models.NotificationCustom, Title: "Welcome", Message: "Your workspace is ready"})
}
