package mockapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/middleware"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/models"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/utils"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/response"
	"github.com/gin-gonic/gin"
)

type authPayload struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerBody struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (s *Server) login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Email == "" || body.Password == "" {
		response.BadRequest(c, "Email and password are required")
		return
	}

	s.mu.RLock()
	u := s.st.userByEmail(body.Email)
	s.mu.RUnlock()
	if u == nil || !utils.CheckPassword(body.Password, u.passwordHash) {
		response.Error(c, response.NewUnauthorized("Invalid email or password"))
		return
	}

	token, err := s.issueToken(u)
	if err != nil {
		response.ServerError(c, "Failed to issue token")
		return
	}
	c.JSON(http.StatusOK, response.Response{
		Success: true,
		Message: "Login successful",
		Data:    authPayload{Token: token, User: u.User},
	})
}

func (s *Server) register(c *gin.Context) {
	var body registerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	body.Email = strings.TrimSpace(body.Email)
	if body.Email == "" || body.Password == "" || body.FirstName == "" {
		response.BadRequest(c, "First name, email and password are required")
		return
	}
	if len(body.Password) < 6 {
		response.BadRequest(c, "Password must be at least 6 characters")
		return
	}

	s.mu.RLock()
	exists := s.st.userByEmail(body.Email) != nil
	s.mu.RUnlock()
	if exists {
		response.Error(c, response.NewConflict("User with this email already exists"))
		return
	}

	user := s.AddUser(models.User{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Username:  body.Username,
		Email:     body.Email,
		Role:      models.RoleMember,
	}, body.Password)

	s.mu.RLock()
	rec := s.st.users[user.ID]
	s.mu.RUnlock()
	token, err := s.issueToken(rec)
	if err != nil {
		response.ServerError(c, "Failed to issue token")
		return
	}
	response.Created(c, authPayload{Token: token, User: user}, "Registration successful")
}

func (s *Server) profile(c *gin.Context) {
	s.mu.RLock()
	u, ok := s.st.users[middleware.GetUserID(c)]
	s.mu.RUnlock()
	if !ok {
		response.Unauthorized(c, "User no longer exists")
		return
	}
	response.Success(c, u.User)
}

type acceptBody struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

// acceptInvitation consumes the invitation, creating the account when the
// email is new, and logs the invitee in.
func (s *Server) acceptInvitation(c *gin.Context) {
	var body acceptBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	s.mu.Lock()
	inv := s.st.invitationByToken(c.Param("ref"))
	if inv == nil {
		s.mu.Unlock()
		response.NotFound(c, "Invitation not found")
		return
	}
	if err := checkUsable(inv, time.Now()); err != nil {
		s.mu.Unlock()
		response.Error(c, err)
		return
	}
	existing := s.st.userByEmail(inv.Email)
	s.mu.Unlock()

	if existing == nil && (body.Password == "" || body.FirstName == "") {
		response.BadRequest(c, "First name and password are required")
		return
	}

	var user models.User
	if existing != nil {
		user = existing.User
	} else {
		user = s.AddUser(models.User{
			FirstName: body.FirstName,
			LastName:  body.LastName,
			Username:  body.Username,
			Email:     inv.Email,
			Role:      inv.Role,
		}, body.Password)
	}

	s.mu.Lock()
	inv.Status = models.InvitationAccepted
	projectID := inv.ProjectID
	role := inv.Role
	rec := s.st.users[user.ID]
	s.mu.Unlock()
	if projectID != nil {
		s.AddMember(*projectID, user.ID, role)
	}

	token, err := s.issueToken(rec)
	if err != nil {
		response.ServerError(c, "Failed to issue token")
		return
	}
	response.Created(c, authPayload{Token: token, User: user}, "Invitation accepted")
}

// checkUsable marks lapsed invitations expired.
func checkUsable(inv *models.Invitation, now time.Time) error {
	if inv.Status == models.InvitationPending && !now.Before(inv.ExpiresAt) {
		inv.Status = models.InvitationExpired
	}
	switch inv.Status {
	case models.InvitationPending:
		return nil
	case models.InvitationExpired:
		return response.NewGone("Invitation has expired")
	default:
		return response.NewBadRequest("Invitation is no longer valid")
	}
}
