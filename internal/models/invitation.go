package models

import "time"

const (
	InvitationPending   = "pending"
	InvitationAccepted  = "accepted"
	InvitationDeclined  = "declined"
	InvitationCancelled = "cancelled"
	InvitationExpired   = "expired"
)

// InvitationTokenLength is the length of the hex token mailed to invitees.
const InvitationTokenLength = 64

// Invitation is keyed by a UUID and consumed once through its token.
type Invitation struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ProjectID *uint     `json:"project_id,omitempty"`
	Project   *Project  `json:"project,omitempty"`
	InvitedBy uint      `json:"invited_by"`
	Inviter   *User     `json:"inviter,omitempty"`
	Token     string    `json:"token,omitempty"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Usable reports whether the invitation can still be accepted at now.
func (i Invitation) Usable(now time.Time) bool {
	return i.Status == InvitationPending && now.Before(i.ExpiresAt)
}
