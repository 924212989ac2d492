// Package mockapi is an in-memory implementation of the project-management
// backend. It speaks the same JSON contract as the real service, including
// its inconsistent envelopes, and exposes hooks to inject failures, latency
// and WebSocket pushes.
package mockapi

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/config"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/middleware"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/utils"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
)

type Options struct {
	JWTSecret  string
	TokenHours int
	Mode       string // gin mode: debug, release, test
	Seed       bool   // load demo data
	RateLimit  float64
	RateBurst  int
}

func OptionsFromConfig(cfg config.MockConfig) Options {
	return Options{
		JWTSecret:  cfg.JWTSecret,
		TokenHours: cfg.TokenHours,
		Mode:       cfg.Mode,
		Seed:       true,
		RateLimit:  5,
		RateBurst:  10,
	}
}

type fault struct {
	status  int
	message string
}

// Hold parks the next matching request until Release is called.
type Hold struct {
	arrived chan struct{}
	release chan struct{}
	once    sync.Once
	armOnce sync.Once
}

// Arrived is closed once a request reached the hold.
func (h *Hold) Arrived() <-chan struct{} { return h.arrived }

func (h *Hold) Release() {
	h.once.Do(func() { close(h.release) })
}

type Server struct {
	opts    Options
	engine  *gin.Engine
	journal *middleware.Journal
	limiter *middleware.RateLimiter
	ws      *wsHub

	mu sync.RWMutex
	st *state

	hookMu sync.Mutex
	faults map[string]fault
	delays map[string]time.Duration
	holds  map[string]*Hold
}

func New(opts Options) *Server {
	if opts.TokenHours <= 0 {
		opts.TokenHours = 24
	}
	if opts.JWTSecret != "" {
		utils.SetJWTSecret(opts.JWTSecret)
	}
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}

	s := &Server{
		opts:    opts,
		journal: middleware.NewJournal(),
		ws:      newWSHub(),
		st:      newState(),
		faults:  make(map[string]fault),
		delays:  make(map[string]time.Duration),
		holds:   make(map[string]*Hold),
	}
	if opts.RateLimit > 0 {
		s.limiter = middleware.NewRateLimiter(opts.RateLimit, opts.RateBurst)
	}
	if opts.Seed {
		s.seed()
	}
	s.engine = s.setupRouter()
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) Journal() *middleware.Journal { return s.journal }

// Calls counts requests with method to path, given relative to /api
// ("/projects") or as a route pattern ("/projects/:id").
func (s *Server) Calls(method, path string) int {
	return s.journal.Count(method, "/api"+path)
}

// Close drops WebSocket clients and stops background work.
func (s *Server) Close() {
	s.ws.closeAll()
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

func hookKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// Fail makes every request to method+path answer status with message until
// Recover is called.
func (s *Server) Fail(method, path string, status int, message string) {
	s.hookMu.Lock()
	s.faults[hookKey(method, path)] = fault{status: status, message: message}
	s.hookMu.Unlock()
}

func (s *Server) Recover(method, path string) {
	s.hookMu.Lock()
	delete(s.faults, hookKey(method, path))
	s.hookMu.Unlock()
}

// Delay adds latency to every request to method+path.
func (s *Server) Delay(method, path string, d time.Duration) {
	s.hookMu.Lock()
	if d <= 0 {
		delete(s.delays, hookKey(method, path))
	} else {
		s.delays[hookKey(method, path)] = d
	}
	s.hookMu.Unlock()
}

// HoldNext parks the next request to method+path before it is handled.
func (s *Server) HoldNext(method, path string) *Hold {
	h := &Hold{arrived: make(chan struct{}), release: make(chan struct{})}
	s.hookMu.Lock()
	s.holds[hookKey(method, path)] = h
	s.hookMu.Unlock()
	return h
}

// Reset clears every hook and the request journal.
func (s *Server) Reset() {
	s.hookMu.Lock()
	s.faults = make(map[string]fault)
	s.delays = make(map[string]time.Duration)
	for _, h := range s.holds {
		h.Release()
	}
	s.holds = make(map[string]*Hold)
	s.hookMu.Unlock()
	s.journal.Reset()
}

// hooks applies faults, holds and delays registered for the request.
func (s *Server) hooks() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := strings.TrimPrefix(c.Request.URL.Path, "/api")
		route := strings.TrimPrefix(c.FullPath(), "/api")
		keys := []string{hookKey(c.Request.Method, path), hookKey(c.Request.Method, route)}

		s.hookMu.Lock()
		var (
			f     fault
			hasF  bool
			delay time.Duration
			hold  *Hold
		)
		for _, k := range keys {
			if v, ok := s.faults[k]; ok && !hasF {
				f, hasF = v, true
			}
			if d, ok := s.delays[k]; ok && d > delay {
				delay = d
			}
			if h, ok := s.holds[k]; ok && hold == nil {
				hold = h
				delete(s.holds, k)
			}
		}
		s.hookMu.Unlock()

		if hold != nil {
			hold.armOnce.Do(func() { close(hold.arrived) })
			select {
			case <-hold.release:
			case <-c.Request.Context().Done():
				c.Abort()
				return
			}
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-c.Request.Context().Done():
				c.Abort()
				return
			}
		}
		if hasF {
			c.AbortWithStatusJSON(f.status, gin.H{"success": false, "message": f.message})
			return
		}
		c.Next()
	}
}

func (s *Server) issueToken(u *userRecord) (string, error) {
	return utils.GenerateToken(u.ID, u.Email, u.Role, s.opts.TokenHours)
}

// Token issues a bearer token for an existing user, as login would.
func (s *Server) Token(userID uint) string {
	s.mu.RLock()
	u, ok := s.st.users[userID]
	s.mu.RUnlock()
	if !ok {
		return ""
	}
	token, err := s.issueToken(u)
	if err != nil {
		logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to issue mock token")
	}
	return token
}
