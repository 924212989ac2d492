package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/api"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/config"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/models"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/logger"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// MessageGeneric is the push type carrying a preformatted notification.
const MessageGeneric = "notification"

const DefaultMaxNotifications = 50

type NotificationOptions struct {
	URL            string
	ReconnectDelay time.Duration
	PollInterval   time.Duration
	Max            int
}

func NotificationOptionsFromConfig(cfg config.RealtimeConfig) NotificationOptions {
	return NotificationOptions{
		URL:            cfg.URL,
		ReconnectDelay: cfg.ReconnectDelay,
		PollInterval:   cfg.PollInterval,
		Max:            cfg.MaxNotifications,
	}
}

type notificationEntry struct {
	n   models.Notification
	seq uint64
}

// NotificationController keeps the newest notifications, fed by pushes on
// the channel and by polls while the channel is down.
type NotificationController struct {
	client  *api.Client
	toaster *Toaster
	opts    NotificationOptions
	log     zerolog.Logger
	now     func() time.Time

	handlers map[string]func(gjson.Result) models.Notification

	mu      sync.RWMutex
	items   []notificationEntry
	unread  int
	lastErr string

	// seq numbers every arrival and every confirmed mutation; lastPoll is
	// the seq a poll was issued at when its snapshot was applied.
	seq      uint64
	lastPoll uint64
	polled   bool

	// Mutations confirmed after a poll was issued are replayed onto its
	// snapshot: removed and readAt map an id to the mutation's seq.
	removed   map[models.FlexID]uint64
	readAt    map[models.FlexID]uint64
	allReadAt uint64

	channel *Channel
	poller  *Poller
}

func NewNotificationController(client *api.Client, toaster *Toaster, opts NotificationOptions) *NotificationController {
	if opts.Max <= 0 {
		opts.Max = DefaultMaxNotifications
	}
	c := &NotificationController{
		client:  client,
		toaster: toaster,
		opts:    opts,
		log:     logger.Component("notifications"),
		now:     time.Now,
		items:   []notificationEntry{},
		removed: make(map[models.FlexID]uint64),
		readAt:  make(map[models.FlexID]uint64),
	}
	c.handlers = map[string]func(gjson.Result) models.Notification{
		models.NotificationComment:      c.handleComment,
		models.NotificationAssignment:   c.handleAssignment,
		models.NotificationStatusChange: c.handleStatusChange,
		models.NotificationMilestone:    c.handleMilestone,
		MessageGeneric:                  c.handleGeneric,
	}
	c.channel = NewChannel(opts.URL, client.Token, opts.ReconnectDelay, c.HandleMessage)
	c.poller = NewPoller(opts.PollInterval, c.FetchNotifications, c.channel.Connected)
	return c
}

// Channel exposes the underlying socket, mainly to swap its dialer.
func (c *NotificationController) Channel() *Channel { return c.channel }

// Start opens the channel and the fallback poller.
func (c *NotificationController) Start(ctx context.Context) {
	c.channel.Start(ctx)
	c.poller.Start(ctx)
}

func (c *NotificationController) Stop() {
	c.poller.Stop()
	c.channel.Stop()
}

// HandleMessage dispatches one pushed frame of the form
// {"type": "...", "data": {...}}. Malformed or unknown frames are dropped.
func (c *NotificationController) HandleMessage(raw []byte) {
	if !gjson.ValidBytes(raw) {
		c.log.Warn().Int("bytes", len(raw)).Msg("dropping malformed push")
		return
	}
	msg := gjson.ParseBytes(raw)
	kind := msg.Get("type").String()
	handle, ok := c.handlers[kind]
	if !ok {
		c.log.Debug().Str("type", kind).Msg("ignoring unknown push type")
		return
	}
	data := msg.Get("data")
	n := handle(data)
	n.Read = false
	n.CreatedAt = c.now()
	if id := data.Get("id"); id.Exists() && id.String() != "" {
		n.ID = models.FlexID(id.String())
	} else {
		n.ID = models.FlexID(uuid.NewString())
	}
	if data.IsObject() {
		n.Data = json.RawMessage(data.Raw)
	}
	metrics.NotificationsReceived.WithLabelValues("push", n.Type).Inc()
	c.prepend(n)
}

func (c *NotificationController) handleComment(data gjson.Result) models.Notification {
	user := orDefault(data.Get("user").String(), "Someone")
	return models.Notification{
		Type:    models.NotificationComment,
		Title:   "New Comment",
		Message: fmt.Sprintf("%s commented on %s", user, data.Get("task").String()),
	}
}

func (c *NotificationController) handleAssignment(data gjson.Result) models.Notification {
	return models.Notification{
		Type:    models.NotificationAssignment,
		Title:   "Task Assigned",
		Message: "You have been assigned to task: " + data.Get("task").String(),
	}
}

func (c *NotificationController) handleStatusChange(data gjson.Result) models.Notification {
	return models.Notification{
		Type:    models.NotificationStatusChange,
		Title:   "Status Updated",
		Message: fmt.Sprintf("Task %s status changed to %s", data.Get("task").String(), data.Get("status").String()),
	}
}

func (c *NotificationController) handleMilestone(data gjson.Result) models.Notification {
	msg := data.Get("message").String()
	if msg == "" {
		msg = fmt.Sprintf("Milestone %s was updated", data.Get("milestone").String())
	}
	return models.Notification{
		Type:    models.NotificationMilestone,
		Title:   "Milestone Update",
		Message: msg,
	}
}

func (c *NotificationController) handleGeneric(data gjson.Result) models.Notification {
	return models.Notification{
		Type:    orDefault(data.Get("type").String(), models.NotificationCustom),
		Title:   orDefault(data.Get("title").String(), "Notification"),
		Message: data.Get("message").String(),
	}
}

func (c *NotificationController) prepend(n models.Notification) {
	c.mu.Lock()
	for _, e := range c.items {
		if e.n.ID == n.ID {
			c.mu.Unlock()
			return
		}
	}
	c.seq++
	next := make([]notificationEntry, 0, len(c.items)+1)
	next = append(next, notificationEntry{n: n, seq: c.seq})
	next = append(next, c.items...)
	c.items = c.capLocked(next)
	c.unread++
	c.mu.Unlock()

	c.toaster.Info(n.Title + ": " + n.Message)
}

// FetchNotifications replaces the list with the server snapshot, keeping
// pushes that arrived after the poll was issued and replaying deletes and
// reads confirmed since then. A poll issued before the last applied one is
// discarded.
func (c *NotificationController) FetchNotifications(ctx context.Context) error {
	c.mu.RLock()
	issued := c.seq
	c.mu.RUnlock()

	resp, err := c.client.Get(ctx, "/notifications", nil)
	var list []models.Notification
	if err == nil {
		err = resp.List(&list)
	}
	if err != nil {
		reqErr := requestError(err, "Failed to fetch notifications")
		c.setError(reqErr.Message)
		return reqErr
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.polled && issued < c.lastPoll {
		c.log.Debug().Uint64("issued", issued).Msg("discarding stale poll")
		return nil
	}
	c.polled = true
	c.lastPoll = issued

	seen := make(map[models.FlexID]bool, len(list))
	for _, n := range list {
		seen[n.ID] = true
	}
	merged := make([]notificationEntry, 0, len(list))
	for _, e := range c.items {
		if e.seq > issued && !seen[e.n.ID] {
			merged = append(merged, e)
		}
	}
	for _, n := range list {
		if c.removed[n.ID] > issued {
			continue
		}
		if c.readAt[n.ID] > issued || c.allReadAt > issued {
			n.Read = true
		}
		metrics.NotificationsReceived.WithLabelValues("poll", n.Type).Inc()
		merged = append(merged, notificationEntry{n: n, seq: issued})
	}
	c.forgetMutationsLocked(issued)
	c.items = c.capLocked(merged)
	c.unread = 0
	for _, e := range c.items {
		if !e.n.Read {
			c.unread++
		}
	}
	c.lastErr = ""
	return nil
}

func (c *NotificationController) MarkAsRead(ctx context.Context, id models.FlexID) error {
	if _, err := c.client.Put(ctx, "/notifications/"+string(id)+"/read", nil); err != nil {
		return c.fail(err, "Failed to mark notification as read")
	}
	c.mu.Lock()
	c.seq++
	c.readAt[id] = c.seq
	for i := range c.items {
		if c.items[i].n.ID == id && !c.items[i].n.Read {
			c.items[i].n.Read = true
			if c.unread > 0 {
				c.unread--
			}
		}
	}
	c.lastErr = ""
	c.mu.Unlock()
	return nil
}

func (c *NotificationController) MarkAllAsRead(ctx context.Context) error {
	if _, err := c.client.Put(ctx, "/notifications/read-all", nil); err != nil {
		return c.fail(err, "Failed to mark all notifications as read")
	}
	c.mu.Lock()
	c.seq++
	c.allReadAt = c.seq
	for i := range c.items {
		c.items[i].n.Read = true
	}
	c.unread = 0
	c.lastErr = ""
	c.mu.Unlock()
	return nil
}

func (c *NotificationController) DeleteNotification(ctx context.Context, id models.FlexID) error {
	if _, err := c.client.Delete(ctx, "/notifications/"+string(id)); err != nil {
		return c.fail(err, "Failed to delete notification")
	}
	c.mu.Lock()
	c.seq++
	c.removed[id] = c.seq
	kept := make([]notificationEntry, 0, len(c.items))
	for _, e := range c.items {
		if e.n.ID == id {
			if !e.n.Read && c.unread > 0 {
				c.unread--
			}
			continue
		}
		kept = append(kept, e)
	}
	c.items = kept
	c.lastErr = ""
	c.mu.Unlock()
	return nil
}

// Notifications returns the list, newest first.
func (c *NotificationController) Notifications() []models.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Notification, len(c.items))
	for i, e := range c.items {
		out[i] = e.n
	}
	return out
}

func (c *NotificationController) UnreadCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.unread
}

func (c *NotificationController) Connected() bool { return c.channel.Connected() }

// Err returns the last request error, or the channel's when none.
func (c *NotificationController) Err() string {
	c.mu.RLock()
	msg := c.lastErr
	c.mu.RUnlock()
	if msg != "" {
		return msg
	}
	return c.channel.Err()
}

// forgetMutationsLocked drops replay records at or before issued. Later
// polls are issued no earlier, so those records can never apply again.
func (c *NotificationController) forgetMutationsLocked(issued uint64) {
	for id, seq := range c.removed {
		if seq <= issued {
			delete(c.removed, id)
		}
	}
	for id, seq := range c.readAt {
		if seq <= issued {
			delete(c.readAt, id)
		}
	}
}

func (c *NotificationController) capLocked(items []notificationEntry) []notificationEntry {
	if len(items) > c.opts.Max {
		return items[:c.opts.Max]
	}
	return items
}

func (c *NotificationController) setError(msg string) {
	c.mu.Lock()
	c.lastErr = msg
	c.mu.Unlock()
}

func (c *NotificationController) fail(err error, fallback string) error {
	reqErr := requestError(err, fallback)
	c.setError(reqErr.Message)
	c.toaster.Error(reqErr.Message)
	return reqErr
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
