package services

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/logger"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/net/websocket"
)

// Conn is an open notification socket.
type Conn interface {
	Receive() ([]byte, error)
	Close() error
}

type Dialer interface {
	Dial(ctx context.Context, rawURL string) (Conn, error)
}

// WebSocketDialer dials with golang.org/x/net/websocket.
type WebSocketDialer struct{}

func (WebSocketDialer) Dial(ctx context.Context, rawURL string) (Conn, error) {
	cfg, err := websocket.NewConfig(rawURL, originFor(rawURL))
	if err != nil {
		return nil, err
	}
	conn, err := cfg.DialContext(ctx)
	if err != nil {
		return nil, err
	}
	return &wsConn{conn: conn}, nil
}

type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) Receive() ([]byte, error) {
	var msg string
	if err := websocket.Message.Receive(c.conn, &msg); err != nil {
		return nil, err
	}
	return []byte(msg), nil
}

func (c *wsConn) Close() error { return c.conn.Close() }

// originFor maps ws(s)://host/... to http(s)://host.
func originFor(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "http://localhost/"
	}
	scheme := "http"
	if u.Scheme == "wss" {
		scheme = "https"
	}
	return scheme + "://" + u.Host + "/"
}

var errNoToken = errors.New("no auth token for notification channel")

// Channel is a reconnecting notification socket. After any close or failed
// dial exactly one reconnect is scheduled; further closes while it is
// pending do not add timers.
type Channel struct {
	url       string
	token     func() string
	dialer    Dialer
	delay     time.Duration
	onMessage func([]byte)
	onState   func(connected bool)
	log       zerolog.Logger

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	conn      Conn
	connected bool
	stopped   bool
	timer     *time.Timer
	lastErr   string
}

// NewChannel builds a channel for rawURL; token supplies the credential
// appended as ?token= on every dial.
func NewChannel(rawURL string, token func() string, delay time.Duration, onMessage func([]byte)) *Channel {
	return &Channel{
		url:       rawURL,
		token:     token,
		dialer:    WebSocketDialer{},
		delay:     delay,
		onMessage: onMessage,
		log:       logger.Component("realtime"),
		stopped:   true,
	}
}

// SetDialer replaces the dialer; call before Start.
func (c *Channel) SetDialer(d Dialer) { c.dialer = d }

// OnStateChange registers fn to run after every connect and disconnect.
func (c *Channel) OnStateChange(fn func(connected bool)) { c.onState = fn }

// Start dials in the background. The channel keeps reconnecting until Stop
// or until ctx ends.
func (c *Channel) Start(ctx context.Context) {
	c.mu.Lock()
	if !c.stopped {
		c.mu.Unlock()
		return
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.stopped = false
	c.mu.Unlock()

	go c.connect()
}

func (c *Channel) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	conn := c.conn
	c.conn = nil
	wasConnected := c.connected
	c.connected = false
	c.cancel()
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if wasConnected {
		metrics.RealtimeConnected.Set(0)
		c.notify(false)
	}
}

func (c *Channel) connect() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	ctx := c.ctx
	c.mu.Unlock()

	token := c.token()
	if token == "" {
		c.failed(errNoToken)
		return
	}
	conn, err := c.dialer.Dial(ctx, c.url+"?token="+url.QueryEscape(token))
	if err != nil {
		c.failed(err)
		return
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		conn.Close()
		return
	}
	c.conn = conn
	c.connected = true
	c.lastErr = ""
	c.mu.Unlock()

	metrics.RealtimeConnected.Set(1)
	c.log.Info().Str("url", c.url).Msg("notification channel connected")
	c.notify(true)
	go c.readLoop(conn)
}

func (c *Channel) readLoop(conn Conn) {
	for {
		data, err := conn.Receive()
		if err != nil {
			c.closed(conn, err)
			return
		}
		if c.onMessage != nil {
			c.onMessage(data)
		}
	}
}

func (c *Channel) closed(conn Conn, err error) {
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.connected = false
	stopped := c.stopped
	c.mu.Unlock()

	conn.Close()
	metrics.RealtimeConnected.Set(0)
	if stopped {
		return
	}
	c.log.Warn().Err(err).Dur("retry_in", c.delay).Msg("notification channel closed")
	c.notify(false)
	c.scheduleReconnect()
}

func (c *Channel) failed(err error) {
	c.mu.Lock()
	c.lastErr = err.Error()
	c.mu.Unlock()
	c.log.Debug().Err(err).Dur("retry_in", c.delay).Msg("notification channel dial failed")
	c.scheduleReconnect()
}

func (c *Channel) scheduleReconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || c.timer != nil {
		return
	}
	metrics.RealtimeReconnects.Inc()
	c.timer = time.AfterFunc(c.delay, func() {
		c.mu.Lock()
		c.timer = nil
		c.mu.Unlock()
		c.connect()
	})
}

func (c *Channel) notify(connected bool) {
	if c.onState != nil {
		c.onState(connected)
	}
}

func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Channel) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// reconnectPending reports whether a reconnect timer is armed.
func (c *Channel) reconnectPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}
