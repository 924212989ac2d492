package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/api"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/mockapi"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/models"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/store"
	"github.com/gin-gonic/gin"
)

const (
	testEmail    = "ana@example.com"
	testPassword = "secret123"
)

// testEnv wires a client against an in-memory backend.
type testEnv struct {
	mock    *mockapi.Server
	http    *httptest.Server
	store   *store.MemoryStore
	client  *api.Client
	toaster *Toaster
	auth    *AuthController
	user    models.User
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	mock := mockapi.New(mockapi.Options{JWTSecret: "services-test-secret", Mode: gin.TestMode})
	hs := httptest.NewServer(mock.Handler())
	// Cleanups run in reverse: sockets are dropped before the server waits
	// for outstanding handlers.
	t.Cleanup(hs.Close)
	t.Cleanup(mock.Close)

	st := store.NewMemoryStore()
	client := api.New(hs.URL+"/api", 5*time.Second, st)
	toaster := NewToaster()
	env := &testEnv{
		mock:    mock,
		http:    hs,
		store:   st,
		client:  client,
		toaster: toaster,
		auth:    NewAuthController(client, toaster),
	}
	env.user = mock.AddUser(models.User{FirstName: "Ana", LastName: "Silva", Email: testEmail, Role: models.RoleProjectManager}, testPassword)
	return env
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	if _, err := e.auth.Login(context.Background(), LoginRequest{Email: testEmail, Password: testPassword}); err != nil {
		t.Fatalf("login: %v", err)
	}
	e.mock.Journal().Reset()
}

func (e *testEnv) wsURL() string {
	return "ws" + e.http.URL[len("http"):] + "/ws"
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, within time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s: %s", within, msg)
}

// responseGate lets the first matching request reach the server but holds
// its response until Release, so a test can land other calls in between.
type responseGate struct {
	method  string
	suffix  string
	once    sync.Once
	arrived chan struct{}
	release chan struct{}
}

func (g *responseGate) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := http.DefaultTransport.RoundTrip(req)
	if req.Method != g.method || !strings.HasSuffix(req.URL.Path, g.suffix) {
		return resp, err
	}
	held := false
	g.once.Do(func() { held = true })
	if held {
		close(g.arrived)
		<-g.release
	}
	return resp, err
}

func (g *responseGate) Arrived() <-chan struct{} { return g.arrived }

func (g *responseGate) Release() { close(g.release) }

// gatedClient returns a client sharing the env's token store whose first
// method request ending in suffix is answered only after Release.
func (e *testEnv) gatedClient(method, suffix string) (*api.Client, *responseGate) {
	g := &responseGate{method: method, suffix: suffix, arrived: make(chan struct{}), release: make(chan struct{})}
	client := api.New(e.http.URL+"/api", 5*time.Second, e.store,
		api.WithHTTPClient(&http.Client{Transport: g, Timeout: 5 * time.Second}))
	return client, g
}
