package mockapi

import (
	"sort"
	"strings"
	"time"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/middleware"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/models"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/response"
	"github.com/gin-gonic/gin"
)

// teamMembers lists every user sharing a project with the caller.
func (s *Server) teamMembers(c *gin.Context) {
	me := middleware.GetUserID(c)
	s.mu.RLock()
	defer s.mu.RUnlock()

	mine := make(map[uint]bool)
	for _, m := range s.st.members {
		if m.UserID == me {
			mine[m.ProjectID] = true
		}
	}

	byUser := make(map[uint]*models.TeamMember)
	var order []uint
	for _, mid := range sortedIDs(s.st.members) {
		m := s.st.members[mid]
		if !mine[m.ProjectID] {
			continue
		}
		u, ok := s.st.users[m.UserID]
		if !ok {
			continue
		}
		tm, seen := byUser[m.UserID]
		if !seen {
			tm = &models.TeamMember{User: u.User, Projects: []models.Project{}}
			byUser[m.UserID] = tm
			order = append(order, m.UserID)
		}
		if p, ok := s.st.projects[m.ProjectID]; ok {
			tm.Projects = append(tm.Projects, *p)
		}
	}

	out := make([]models.TeamMember, 0, len(order))
	for _, id := range order {
		out = append(out, *byUser[id])
	}
	response.Success(c, out)
}

type roleBody struct {
	Role string `json:"role"`
}

func (s *Server) updateMemberRole(c *gin.Context) {
	id, _ := paramID(c)
	var body roleBody
	if err := c.ShouldBindJSON(&body); err != nil || !models.ValidRole(body.Role) {
		response.BadRequest(c, "Invalid role")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.users[id]
	if !ok {
		response.NotFound(c, "Member not found")
		return
	}
	u.Role = body.Role
	for _, m := range s.st.members {
		if m.UserID == id {
			m.Role = body.Role
		}
	}
	response.Success(c, u.User)
}

// removeMember drops the user from every project the caller belongs to.
func (s *Server) removeMember(c *gin.Context) {
	id, _ := paramID(c)
	me := middleware.GetUserID(c)
	if id == me {
		response.BadRequest(c, "You cannot remove yourself")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	mine := make(map[uint]bool)
	for _, m := range s.st.members {
		if m.UserID == me {
			mine[m.ProjectID] = true
		}
	}
	removed := 0
	for mid, m := range s.st.members {
		if m.UserID == id && mine[m.ProjectID] {
			delete(s.st.members, mid)
			removed++
		}
	}
	if removed == 0 {
		response.NotFound(c, "Member not found")
		return
	}
	response.Message(c, "Member removed successfully")
}

type invitationBody struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	ProjectID *uint  `json:"project_id"`
}

func (s *Server) createInvitation(c *gin.Context) {
	var body invitationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	body.Email = strings.TrimSpace(body.Email)
	if body.Email == "" || !strings.Contains(body.Email, "@") {
		response.BadRequest(c, "A valid email is required")
		return
	}
	if !models.ValidRole(body.Role) {
		response.BadRequest(c, "Invalid role")
		return
	}

	s.mu.RLock()
	if body.ProjectID != nil {
		if _, ok := s.st.projects[*body.ProjectID]; !ok {
			s.mu.RUnlock()
			response.NotFound(c, "Project not found")
			return
		}
	}
	for _, inv := range s.st.invitations {
		if strings.EqualFold(inv.Email, body.Email) && inv.Status == models.InvitationPending &&
			sameProject(inv.ProjectID, body.ProjectID) {
			s.mu.RUnlock()
			response.Error(c, response.NewConflict("An invitation is already pending for this email"))
			return
		}
	}
	s.mu.RUnlock()

	inv := s.AddInvitation(models.Invitation{
		Email:     body.Email,
		Role:      body.Role,
		ProjectID: body.ProjectID,
		InvitedBy: middleware.GetUserID(c),
	})
	response.Created(c, inv, "Invitation sent successfully")
}

func sameProject(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *Server) projectInvitations(c *gin.Context) {
	id, _ := paramID(c)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Invitation{}
	for _, inv := range s.st.invitations {
		if inv.ProjectID != nil && *inv.ProjectID == id {
			out = append(out, *inv)
		}
	}
	sortInvitations(out)
	response.Success(c, out)
}

func sortInvitations(list []models.Invitation) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
}

// getInvitation looks an invitation up by its token for the accept page.
func (s *Server) getInvitation(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv := s.st.invitationByToken(c.Param("ref"))
	if inv == nil {
		response.NotFound(c, "Invitation not found")
		return
	}
	_ = checkUsable(inv, time.Now())
	view := *inv
	if inv.ProjectID != nil {
		if p, ok := s.st.projects[*inv.ProjectID]; ok {
			pv := *p
			view.Project = &pv
		}
	}
	view.Inviter = s.st.userPtr(inv.InvitedBy)
	response.Success(c, view)
}

func (s *Server) declineInvitation(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv := s.st.invitationByToken(c.Param("ref"))
	if inv == nil {
		response.NotFound(c, "Invitation not found")
		return
	}
	if err := checkUsable(inv, time.Now()); err != nil {
		response.Error(c, err)
		return
	}
	inv.Status = models.InvitationDeclined
	response.Message(c, "Invitation declined")
}

func (s *Server) cancelInvitation(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.st.invitations[c.Param("ref")]
	if !ok {
		response.NotFound(c, "Invitation not found")
		return
	}
	if inv.Status != models.InvitationPending {
		response.BadRequest(c, "Only pending invitations can be cancelled")
		return
	}
	inv.Status = models.InvitationCancelled
	response.Message(c, "Invitation cancelled")
}

func (s *Server) resendInvitation(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.st.invitations[c.Param("ref")]
	if !ok {
		response.NotFound(c, "Invitation not found")
		return
	}
	if inv.Status != models.InvitationPending && inv.Status != models.InvitationExpired {
		response.BadRequest(c, "Invitation can no longer be resent")
		return
	}
	inv.Status = models.InvitationPending
	inv.ExpiresAt = time.Now().Add(7 * 24 * time.Hour)
	response.Success(c, *inv)
}
