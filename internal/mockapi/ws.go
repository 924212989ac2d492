package mockapi

import (
	"encoding/json"
	"sync"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/middleware"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/utils"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/logger"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/net/websocket"
)

// wsHub tracks open notification sockets.
type wsHub struct {
	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

func newWSHub() *wsHub {
	return &wsHub{conns: make(map[string]*websocket.Conn)}
}

func (h *wsHub) add(conn *websocket.Conn) string {
	id := uuid.NewString()
	h.mu.Lock()
	h.conns[id] = conn
	h.mu.Unlock()
	return id
}

func (h *wsHub) remove(id string) {
	h.mu.Lock()
	delete(h.conns, id)
	h.mu.Unlock()
}

func (h *wsHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *wsHub) broadcast(frame []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	sent := 0
	for id, conn := range h.conns {
		if err := websocket.Message.Send(conn, string(frame)); err != nil {
			logger.Debug().Err(err).Str("conn", id).Msg("mock ws send failed")
			continue
		}
		sent++
	}
	return sent
}

func (h *wsHub) closeAll() {
	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[string]*websocket.Conn)
	h.mu.Unlock()
	for _, conn := range conns {
		conn.Close()
	}
}

// handleWS upgrades authenticated clients; the token travels in the query.
func (s *Server) handleWS(c *gin.Context) {
	if _, err := utils.ParseToken(middleware.BearerToken(c)); err != nil {
		response.Unauthorized(c, "authentication required")
		return
	}

	websocket.Handler(func(conn *websocket.Conn) {
		id := s.ws.add(conn)
		defer s.ws.remove(id)
		defer conn.Close()

		// Clients never send anything meaningful; read until the socket dies.
		var discard string
		for {
			if err := websocket.Message.Receive(conn, &discard); err != nil {
				return
			}
		}
	}).ServeHTTP(c.Writer, c.Request)
}

// Push sends msg as a JSON text frame to every connected client and returns
// how many received it.
func (s *Server) Push(msg interface{}) int {
	frame, err := json.Marshal(msg)
	if err != nil {
		logger.Warn().Err(err).Msg("mock push: encode failed")
		return 0
	}
	return s.ws.broadcast(frame)
}

// PushRaw sends frame unchanged, for malformed-message tests.
func (s *Server) PushRaw(frame string) int {
	return s.ws.broadcast([]byte(frame))
}

// DropConnections closes every open socket as a server restart would.
func (s *Server) DropConnections() {
	s.ws.closeAll()
}

func (s *Server) Connections() int {
	return s.ws.count()
}
