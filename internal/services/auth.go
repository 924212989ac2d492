package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/api"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/models"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/utils"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/logger"
	"github.com/rs/zerolog"
)

type AuthState string

const (
	StateUnauthenticated AuthState = "unauthenticated"
	StateChecking        AuthState = "checking"
	StateAuthenticated   AuthState = "authenticated"
)

type AuthEventType string

const (
	AuthLogin  AuthEventType = "login"
	AuthLogout AuthEventType = "logout"
)

// AuthEvent is published on every session change.
type AuthEvent struct {
	Type AuthEventType
	User models.User
}

// AuthController owns the session: the stored token, the current user and
// the callbacks waiting for the next login.
type AuthController struct {
	client  *api.Client
	toaster *Toaster
	log     zerolog.Logger
	now     func() time.Time

	mu      sync.RWMutex
	state   AuthState
	user    *models.User
	lastErr string
	queue   []func(models.User)

	events *Hub[AuthEvent]
}

func NewAuthController(client *api.Client, toaster *Toaster) *AuthController {
	a := &AuthController{
		client:  client,
		toaster: toaster,
		log:     logger.Component("auth"),
		now:     time.Now,
		state:   StateUnauthenticated,
		events:  NewHub[AuthEvent](16),
	}
	client.SetUnauthorizedHook(a.handleUnauthorized)
	return a
}

// Init restores a stored session. A token whose exp already passed is
// dropped without a round trip; any other token is checked against the
// profile endpoint.
func (a *AuthController) Init(ctx context.Context) error {
	token := a.client.Token()
	if token == "" {
		a.setState(StateUnauthenticated)
		return nil
	}
	if utils.TokenExpired(token, a.now()) {
		a.log.Info().Msg("stored token expired, discarding")
		a.client.ClearToken()
		a.setState(StateUnauthenticated)
		return nil
	}

	a.setState(StateChecking)
	resp, err := a.client.Get(ctx, "/auth/profile", nil)
	if err != nil {
		a.client.ClearToken()
		reqErr := requestError(err, "Session expired. Please log in again.")
		a.mu.Lock()
		a.state = StateUnauthenticated
		a.user = nil
		a.lastErr = reqErr.Message
		a.mu.Unlock()
		a.log.Warn().Err(err).Msg("stored session rejected")
		return reqErr
	}

	user, err := decodeUser(resp)
	if err != nil {
		a.client.ClearToken()
		a.setState(StateUnauthenticated)
		return err
	}
	a.authenticate(user)
	a.log.Info().Uint("user_id", user.ID).Msg("session restored")
	return nil
}

func (a *AuthController) Login(ctx context.Context, req LoginRequest) (models.User, error) {
	if err := req.Validate(); err != nil {
		return models.User{}, err
	}
	return a.establish(ctx, "/auth/login", req, "Login failed. Please try again.")
}

func (a *AuthController) Register(ctx context.Context, req RegisterRequest) (models.User, error) {
	if err := req.Validate(); err != nil {
		return models.User{}, err
	}
	return a.establish(ctx, "/auth/register", req, "Registration failed. Please try again.")
}

// AcceptInvitation consumes an invitation token, which creates the account
// and opens a session the same way Login does.
func (a *AuthController) AcceptInvitation(ctx context.Context, token string, req AcceptInvitationRequest) (models.User, error) {
	if !ValidInvitationToken(token) {
		return models.User{}, ErrInvalidInvitationToken
	}
	if err := req.Validate(); err != nil {
		return models.User{}, err
	}
	return a.establish(ctx, "/invitations/"+token+"/accept", req, "Failed to accept invitation.")
}

func (a *AuthController) establish(ctx context.Context, path string, body interface{}, fallback string) (models.User, error) {
	resp, err := a.client.Post(ctx, path, body)
	if err != nil {
		reqErr := requestError(err, fallback)
		a.setError(reqErr.Message)
		return models.User{}, reqErr
	}

	var payload struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	if err := resp.Item(&payload); err != nil || payload.Token == "" {
		reqErr := &RequestError{Message: fallback, Err: api.ErrUnexpectedShape}
		a.setError(reqErr.Message)
		return models.User{}, reqErr
	}
	if err := a.client.SetToken(payload.Token); err != nil {
		a.log.Error().Err(err).Msg("failed to persist token")
	}
	a.authenticate(payload.User)
	a.log.Info().Uint("user_id", payload.User.ID).Str("via", path).Msg("logged in")
	return payload.User, nil
}

// authenticate switches to authenticated and drains the callback queue in
// the same critical section, so OnLogin never misses a login or fires twice.
func (a *AuthController) authenticate(user models.User) {
	a.mu.Lock()
	a.state = StateAuthenticated
	a.user = &user
	a.lastErr = ""
	queue := a.queue
	a.queue = nil
	a.mu.Unlock()

	for _, cb := range queue {
		cb(user)
	}
	a.events.Publish(AuthEvent{Type: AuthLogin, User: user})
}

// Logout forgets the session locally. The backend is not called.
func (a *AuthController) Logout() {
	a.client.ClearToken()
	a.mu.Lock()
	var user models.User
	if a.user != nil {
		user = *a.user
	}
	wasAuthenticated := a.state == StateAuthenticated
	a.state = StateUnauthenticated
	a.user = nil
	a.mu.Unlock()

	if wasAuthenticated {
		a.events.Publish(AuthEvent{Type: AuthLogout, User: user})
	}
}

// handleUnauthorized runs after any 401 cleared the token.
func (a *AuthController) handleUnauthorized() {
	a.mu.RLock()
	authenticated := a.state == StateAuthenticated
	a.mu.RUnlock()
	if !authenticated {
		return
	}
	a.log.Warn().Msg("session rejected by backend")
	a.Logout()
	a.toaster.Warning("Your session has expired. Please log in again.")
}

// OnLogin runs cb now when a user is logged in, otherwise once after the
// next successful login, registration or session restore.
func (a *AuthController) OnLogin(cb func(models.User)) {
	a.mu.Lock()
	if a.state == StateAuthenticated && a.user != nil {
		user := *a.user
		a.mu.Unlock()
		cb(user)
		return
	}
	a.queue = append(a.queue, cb)
	a.mu.Unlock()
}

// Subscribe streams login and logout events.
func (a *AuthController) Subscribe(id string) (string, <-chan AuthEvent) {
	return a.events.Subscribe(id)
}

func (a *AuthController) Unsubscribe(id string) { a.events.Unsubscribe(id) }

func (a *AuthController) State() AuthState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

func (a *AuthController) IsAuthenticated() bool {
	return a.State() == StateAuthenticated
}

func (a *AuthController) User() (models.User, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.user == nil {
		return models.User{}, false
	}
	return *a.user, true
}

func (a *AuthController) Err() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastErr
}

func (a *AuthController) setState(s AuthState) {
	a.mu.Lock()
	a.state = s
	if s != StateAuthenticated {
		a.user = nil
	}
	a.mu.Unlock()
}

func (a *AuthController) setError(msg string) {
	a.mu.Lock()
	a.lastErr = msg
	a.mu.Unlock()
}

// decodeUser accepts both {user: {...}} and a bare user record.
func decodeUser(resp *api.Response) (models.User, error) {
	var wrapped struct {
		User *models.User `json:"user"`
	}
	if err := resp.Item(&wrapped); err == nil && wrapped.User != nil {
		return *wrapped.User, nil
	}
	var user models.User
	if err := resp.Item(&user); err != nil {
		return models.User{}, err
	}
	if user.ID == 0 && user.Email == "" {
		return models.User{}, errors.New("profile response carried no user")
	}
	return user, nil
}
