package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/api"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/models"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/logger"
	"github.com/rs/zerolog"
)

// ValidInvitationToken reports whether token has the issued shape: 64
// hexadecimal characters.
func ValidInvitationToken(token string) bool {
	if len(token) != models.InvitationTokenLength {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}

// TeamController manages the caller's team roster and invitations.
type TeamController struct {
	client  *api.Client
	toaster *Toaster
	log     zerolog.Logger
	now     func() time.Time

	mu      sync.RWMutex
	members []models.TeamMember
	lastErr string
}

func NewTeamController(client *api.Client, toaster *Toaster) *TeamController {
	return &TeamController{
		client:  client,
		toaster: toaster,
		log:     logger.Component("team"),
		now:     time.Now,
		members: []models.TeamMember{},
	}
}

func (t *TeamController) FetchMembers(ctx context.Context) error {
	resp, err := t.client.Get(ctx, "/team/members", nil)
	var list []models.TeamMember
	if err == nil {
		err = resp.List(&list)
	}
	if err != nil {
		reqErr := requestError(err, "Failed to fetch team members")
		t.mu.Lock()
		t.members = []models.TeamMember{}
		t.lastErr = reqErr.Message
		t.mu.Unlock()
		return reqErr
	}
	t.mu.Lock()
	t.members = list
	t.lastErr = ""
	t.mu.Unlock()
	return nil
}

func (t *TeamController) Members() []models.TeamMember {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.TeamMember, len(t.members))
	copy(out, t.members)
	return out
}

func (t *TeamController) Err() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastErr
}

// UpdateMemberRole changes a member's role after the backend confirmed.
func (t *TeamController) UpdateMemberRole(ctx context.Context, userID uint, role string) error {
	if !models.ValidRole(role) {
		ve := &ValidationError{}
		ve.add("role", "Role must be one of: "+strings.Join(models.Roles, ", "))
		t.setError(ve.Error())
		return ve
	}
	resp, err := t.client.Put(ctx, fmt.Sprintf("/team/members/%d/role", userID), map[string]string{"role": role})
	if err != nil {
		return t.fail(err, "Failed to update member role")
	}

	t.mu.Lock()
	for i := range t.members {
		if t.members[i].ID == userID {
			t.members[i].Role = role
		}
	}
	t.lastErr = ""
	t.mu.Unlock()
	t.toaster.Success(resp.Message("Member role updated"))
	return nil
}

func (t *TeamController) RemoveMember(ctx context.Context, userID uint) error {
	resp, err := t.client.Delete(ctx, fmt.Sprintf("/team/members/%d", userID))
	if err != nil {
		return t.fail(err, "Failed to remove member")
	}

	t.mu.Lock()
	kept := make([]models.TeamMember, 0, len(t.members))
	for _, m := range t.members {
		if m.ID != userID {
			kept = append(kept, m)
		}
	}
	t.members = kept
	t.lastErr = ""
	t.mu.Unlock()
	t.toaster.Success(resp.Message("Member removed successfully"))
	return nil
}

func (t *TeamController) Invite(ctx context.Context, in InvitationInput) (models.Invitation, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := in.Validate(); err != nil {
		t.setError(ErrorMessage(err))
		return models.Invitation{}, err
	}
	resp, err := t.client.Post(ctx, "/invitations", in)
	if err != nil {
		return models.Invitation{}, t.fail(err, "Failed to send invitation")
	}
	var inv models.Invitation
	if err := resp.Item(&inv); err != nil {
		return models.Invitation{}, t.fail(err, "Failed to send invitation")
	}
	t.setError("")
	t.toaster.Success(resp.Message("Invitation sent successfully"))
	t.log.Info().Str("email", inv.Email).Str("role", inv.Role).Msg("invitation sent")
	return inv, nil
}

func (t *TeamController) ProjectInvitations(ctx context.Context, projectID uint) []models.Invitation {
	out := []models.Invitation{}
	resp, err := t.client.Get(ctx, fmt.Sprintf("/projects/%d/invitations", projectID), nil)
	if err != nil {
		t.log.Warn().Err(err).Uint("project_id", projectID).Msg("invitation list failed")
		return out
	}
	if err := resp.List(&out); err != nil {
		return []models.Invitation{}
	}
	return out
}

func (t *TeamController) CancelInvitation(ctx context.Context, id string) error {
	resp, err := t.client.Delete(ctx, "/invitations/"+url.PathEscape(id))
	if err != nil {
		return t.fail(err, "Failed to cancel invitation")
	}
	t.setError("")
	t.toaster.Success(resp.Message("Invitation cancelled"))
	return nil
}

func (t *TeamController) ResendInvitation(ctx context.Context, id string) (models.Invitation, error) {
	resp, err := t.client.Post(ctx, "/invitations/"+url.PathEscape(id)+"/resend", nil)
	if err != nil {
		return models.Invitation{}, t.fail(err, "Failed to resend invitation")
	}
	var inv models.Invitation
	if err := resp.Item(&inv); err != nil {
		return models.Invitation{}, t.fail(err, "Failed to resend invitation")
	}
	t.setError("")
	t.toaster.Success(resp.Message("Invitation resent"))
	return inv, nil
}

// ValidateInvitation checks the token locally, then confirms with the
// backend that the invitation is still pending and unexpired.
func (t *TeamController) ValidateInvitation(ctx context.Context, token string) (models.Invitation, error) {
	if !ValidInvitationToken(token) {
		return models.Invitation{}, &RequestError{Message: "Invalid invitation link", Err: ErrInvalidInvitationToken}
	}
	resp, err := t.client.Get(ctx, "/invitations/"+token, nil)
	if err != nil {
		if api.StatusOf(err) == http.StatusNotFound {
			return models.Invitation{}, &RequestError{Message: api.MessageOf(err, "Invitation not found"), Err: errors.Join(ErrNotFound, err)}
		}
		return models.Invitation{}, requestError(err, "Failed to validate invitation")
	}
	var inv models.Invitation
	if err := resp.Item(&inv); err != nil {
		return models.Invitation{}, requestError(err, "Failed to validate invitation")
	}
	if inv.Status == models.InvitationExpired || (inv.Status == models.InvitationPending && !inv.Usable(t.now())) {
		return inv, &RequestError{Message: "This invitation has expired", Err: ErrInvitationExpired}
	}
	if inv.Status != models.InvitationPending {
		return inv, &RequestError{Message: "This invitation is no longer valid", Err: ErrInvitationUnavailable}
	}
	return inv, nil
}

func (t *TeamController) DeclineInvitation(ctx context.Context, token string) error {
	if !ValidInvitationToken(token) {
		return &RequestError{Message: "Invalid invitation link", Err: ErrInvalidInvitationToken}
	}
	resp, err := t.client.Post(ctx, "/invitations/"+token+"/decline", nil)
	if err != nil {
		return t.fail(err, "Failed to decline invitation")
	}
	t.toaster.Info(resp.Message("Invitation declined"))
	return nil
}

func (t *TeamController) setError(msg string) {
	t.mu.Lock()
	t.lastErr = msg
	t.mu.Unlock()
}

func (t *TeamController) fail(err error, fallback string) error {
	reqErr := requestError(err, fallback)
	t.setError(reqErr.Message)
	t.toaster.Error(reqErr.Message)
	t.log.Warn().Err(err).Msg(fallback)
	return reqErr
}
