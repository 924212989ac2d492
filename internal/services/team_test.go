package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/models"
)

func newTeamEnv(t *testing.T) (*testEnv, *TeamController) {
	t.Helper()
	env := newEnv(t)
	return env, NewTeamController(env.client, env.toaster)
}

func TestValidInvitationToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		valid bool
	}{
		{"hex 64", strings.Repeat("a1", 32), true},
		{"upper hex", strings.Repeat("AF", 32), true},
		{"too short", strings.Repeat("a", 63), false},
		{"too long", strings.Repeat("a", 65), false},
		{"non hex", strings.Repeat("zz", 32), false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidInvitationToken(tt.token); got != tt.valid {
				t.Errorf("ValidInvitationToken(%q) = %v", tt.token, got)
			}
		})
	}
}

func TestTeam_Members(t *testing.T) {
	env, tc := newTeamEnv(t)
	dev := env.mock.AddUser(models.User{FirstName: "Dev", Email: "dev@example.com", Role: models.RoleDeveloper}, "password1")
	p := env.mock.AddProject(models.Project{Name: "Alpha"})
	env.mock.AddMember(p.ID, env.user.ID, models.RoleProjectManager)
	env.mock.AddMember(p.ID, dev.ID, models.RoleDeveloper)
	env.login(t)
	ctx := context.Background()

	if err := tc.FetchMembers(ctx); err != nil {
		t.Fatalf("FetchMembers: %v", err)
	}
	if got := tc.Members(); len(got) != 2 {
		t.Fatalf("expected 2 members, got %+v", got)
	}

	if err := tc.UpdateMemberRole(ctx, dev.ID, models.RoleViewer); err != nil {
		t.Fatalf("UpdateMemberRole: %v", err)
	}
	for _, m := range tc.Members() {
		if m.ID == dev.ID && m.Role != models.RoleViewer {
			t.Errorf("role not updated locally: %+v", m)
		}
	}

	if err := tc.UpdateMemberRole(ctx, dev.ID, "admin"); FieldErrors(err)["role"] == "" {
		t.Errorf("expected role validation error, got %v", err)
	}
	if n := env.mock.Calls("PUT", "/team/members/:id/role"); n != 1 {
		t.Errorf("invalid role should not reach the backend, got %d calls", n)
	}

	if err := tc.RemoveMember(ctx, dev.ID); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if got := tc.Members(); len(got) != 1 {
		t.Errorf("expected 1 member left, got %+v", got)
	}

	if err := tc.RemoveMember(ctx, env.user.ID); err == nil {
		t.Error("removing yourself should fail")
	} else if tc.Err() != "You cannot remove yourself" {
		t.Errorf("unexpected error %q", tc.Err())
	}
}

func TestTeam_InvitationLifecycle(t *testing.T) {
	env, tc := newTeamEnv(t)
	p := env.mock.AddProject(models.Project{Name: "Alpha"})
	env.login(t)
	ctx := context.Background()

	inv, err := tc.Invite(ctx, InvitationInput{Email: " guest@example.com ", Role: models.RoleDeveloper, ProjectID: &p.ID})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if inv.Email != "guest@example.com" || inv.Status != models.InvitationPending {
		t.Errorf("unexpected invitation %+v", inv)
	}

	if _, err := tc.Invite(ctx, InvitationInput{Email: "guest@example.com", Role: models.RoleDeveloper, ProjectID: &p.ID}); err == nil {
		t.Error("second pending invitation should conflict")
	}

	if got := tc.ProjectInvitations(ctx, p.ID); len(got) != 1 || got[0].ID != inv.ID {
		t.Errorf("unexpected invitations %+v", got)
	}

	resent, err := tc.ResendInvitation(ctx, inv.ID)
	if err != nil {
		t.Fatalf("ResendInvitation: %v", err)
	}
	if !resent.ExpiresAt.After(time.Now().Add(6 * 24 * time.Hour)) {
		t.Errorf("resend should extend expiry, got %v", resent.ExpiresAt)
	}

	if err := tc.CancelInvitation(ctx, inv.ID); err != nil {
		t.Fatalf("CancelInvitation: %v", err)
	}
	if got, _ := env.mock.Invitation(inv.ID); got.Status != models.InvitationCancelled {
		t.Errorf("expected cancelled, got %s", got.Status)
	}
}

func TestTeam_InviteValidation(t *testing.T) {
	env, tc := newTeamEnv(t)
	env.login(t)

	_, err := tc.Invite(context.Background(), InvitationInput{Email: "nope", Role: "admin"})
	fields := FieldErrors(err)
	if fields["email"] == "" || fields["role"] == "" {
		t.Errorf("expected email and role errors, got %v", fields)
	}
	if n := env.mock.Calls("POST", "/invitations"); n != 0 {
		t.Errorf("expected no request, got %d", n)
	}
}

func TestTeam_ValidateInvitation(t *testing.T) {
	env, tc := newTeamEnv(t)
	ctx := context.Background()

	pending := env.mock.AddInvitation(models.Invitation{Email: "a@example.com", Role: models.RoleMember, InvitedBy: env.user.ID})
	expired := env.mock.AddInvitation(models.Invitation{Email: "b@example.com", Role: models.RoleMember, ExpiresAt: time.Now().Add(-time.Hour)})
	declined := env.mock.AddInvitation(models.Invitation{Email: "c@example.com", Role: models.RoleMember, Status: models.InvitationDeclined})

	inv, err := tc.ValidateInvitation(ctx, pending.Token)
	if err != nil {
		t.Fatalf("ValidateInvitation: %v", err)
	}
	if inv.Email != "a@example.com" || inv.Inviter == nil {
		t.Errorf("unexpected invitation %+v", inv)
	}

	if _, err := tc.ValidateInvitation(ctx, expired.Token); !errors.Is(err, ErrInvitationExpired) {
		t.Errorf("expected ErrInvitationExpired, got %v", err)
	}
	if _, err := tc.ValidateInvitation(ctx, declined.Token); !errors.Is(err, ErrInvitationUnavailable) {
		t.Errorf("expected ErrInvitationUnavailable, got %v", err)
	}
	if _, err := tc.ValidateInvitation(ctx, strings.Repeat("0", 64)); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	env.mock.Journal().Reset()
	if _, err := tc.ValidateInvitation(ctx, "not-a-token"); !errors.Is(err, ErrInvalidInvitationToken) {
		t.Errorf("expected ErrInvalidInvitationToken, got %v", err)
	}
	if n := len(env.mock.Journal().Entries()); n != 0 {
		t.Errorf("malformed token should not reach the backend, got %d requests", n)
	}
}

func TestTeam_DeclineInvitation(t *testing.T) {
	env, tc := newTeamEnv(t)
	inv := env.mock.AddInvitation(models.Invitation{Email: "a@example.com", Role: models.RoleMember})

	if err := tc.DeclineInvitation(context.Background(), inv.Token); err != nil {
		t.Fatalf("DeclineInvitation: %v", err)
	}
	if got, _ := env.mock.Invitation(inv.ID); got.Status != models.InvitationDeclined {
		t.Errorf("expected declined, got %s", got.Status)
	}
	if err := tc.DeclineInvitation(context.Background(), inv.Token); err == nil {
		t.Error("declining twice should fail")
	}
}
