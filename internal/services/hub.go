package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Hub fans values out to subscribers. Publish never blocks: a subscriber
// whose buffer is full misses the value.
type Hub[T any] struct {
	clients map[string]chan T
	mu      sync.RWMutex
	buffer  int
}

func NewHub[T any](buffer int) *Hub[T] {
	if buffer <= 0 {
		buffer = 100
	}
	return &Hub[T]{
		clients: make(map[string]chan T),
		buffer:  buffer,
	}
}

// Subscribe registers clientID and returns its channel. An empty id gets a
// generated one, returned alongside.
func (h *Hub[T]) Subscribe(clientID string) (string, <-chan T) {
	if clientID == "" {
		clientID = uuid.NewString()
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.clients[clientID]; ok {
		close(old)
	}
	ch := make(chan T, h.buffer)
	h.clients[clientID] = ch
	return clientID, ch
}

func (h *Hub[T]) Unsubscribe(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.clients[clientID]; ok {
		close(ch)
		delete(h.clients, clientID)
	}
}

func (h *Hub[T]) Publish(v T) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.clients {
		select {
		case ch <- v:
		default:
		}
	}
}

func (h *Hub[T]) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close unsubscribes everyone.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.clients {
		close(ch)
		delete(h.clients, id)
	}
}

// Toast levels.
const (
	ToastSuccess = "success"
	ToastError   = "error"
	ToastInfo    = "info"
	ToastWarning = "warning"
)

// Toast is a short user-facing message raised by a controller.
type Toast struct {
	ID      string    `json:"id"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Toaster publishes toasts to whoever renders them.
type Toaster struct {
	hub *Hub[Toast]
}

func NewToaster() *Toaster {
	return &Toaster{hub: NewHub[Toast](50)}
}

func (t *Toaster) Subscribe(clientID string) (string, <-chan Toast) {
	return t.hub.Subscribe(clientID)
}

func (t *Toaster) Unsubscribe(clientID string) { t.hub.Unsubscribe(clientID) }

func (t *Toaster) Show(level, message string) {
	if t == nil {
		return
	}
	t.hub.Publish(Toast{ID: uuid.NewString(), Level: level, Message: message, At: time.Now()})
}

func (t *Toaster) Success(message string) { t.Show(ToastSuccess, message) }
func (t *Toaster) Error(message string)   { t.Show(ToastError, message) }
func (t *Toaster) Info(message string)    { t.Show(ToastInfo, message) }
func (t *Toaster) Warning(message string) { t.Show(ToastWarning, message) }
