package models

import "time"

// Roles a user may hold on a project or be invited with. The backend
// dropped "admin" from both enums.
const (
	RoleMember         = "member"
	RoleDeveloper      = "developer"
	RoleProjectManager = "project_manager"
	RoleViewer         = "viewer"
)

var Roles = []string{RoleMember, RoleDeveloper, RoleProjectManager, RoleViewer}

func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// User is an account as returned by /auth/profile and team endpoints.
type User struct {
	ID        uint      `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Status    string    `json:"status"` // active, inactive
	CreatedAt time.Time `json:"created_at"`
}

func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return u.Username
	}
	return u.Email
}

// ProjectMember links a user to a project with a role.
type ProjectMember struct {
	ID        uint      `json:"id"`
	ProjectID uint      `json:"project_id"`
	UserID    uint      `json:"user_id"`
	Role      string    `json:"role"`
	User      *User     `json:"user,omitempty"`
	JoinedAt  time.Time `json:"joined_at"`
}

// TeamMember is a row of /team/members: a user plus the projects they share
// with the caller.
type TeamMember struct {
	User
	Projects []Project `json:"projects"`
}
