package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/config"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/store"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/logger"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/metrics"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/response"
	"golang.org/x/time/rate"
)

// Client is the single HTTP wrapper every controller routes through. It
// injects the stored bearer token and clears it on any 401. It never
// retries, deduplicates or caches.
type Client struct {
	baseURL        string
	http           *http.Client
	store          store.Store
	limiter        *rate.Limiter
	onUnauthorized func()
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRateLimit paces outgoing requests. rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithUnauthorizedHook registers fn to run after a 401 cleared the token.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func New(baseURL string, timeout time.Duration, st store.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		store:   st,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func NewFromConfig(cfg config.APIConfig, st store.Store, opts ...Option) *Client {
	opts = append([]Option{WithRateLimit(cfg.RateLimit, cfg.Burst)}, opts...)
	return New(cfg.BaseURL, cfg.Timeout, st, opts...)
}

func (c *Client) BaseURL() string { return c.baseURL }

// SetUnauthorizedHook replaces the 401 hook after construction.
func (c *Client) SetUnauthorizedHook(fn func()) { c.onUnauthorized = fn }

func (c *Client) Token() string {
	token, _ := c.store.Get(store.KeyAuthToken)
	return token
}

func (c *Client) SetToken(token string) error {
	return c.store.Set(store.KeyAuthToken, token)
}

func (c *Client) ClearToken() {
	if err := c.store.Remove(store.KeyAuthToken); err != nil {
		logger.Warn().Err(err).Msg("failed to clear stored token")
	}
}

func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, nil, body)
}

func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, nil, body)
}

func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do issues one request. Non-2xx responses are returned as *Error alongside
// the response; transport failures are wrapped with the method and path.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body interface{}) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
	}

	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.APIRequestDuration.WithLabelValues(method, endpointGroup(path), "error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	metrics.APIRequestDuration.WithLabelValues(method, endpointGroup(path), strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.ClearToken()
		metrics.APIUnauthorized.Inc()
		logger.Debug().Str("method", method).Str("path", path).Msg("401 received, stored token cleared")
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	}

	out := &Response{Status: resp.StatusCode, Body: data}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out, &Error{
			Status:  resp.StatusCode,
			Message: response.MessageFrom(data, fmt.Sprintf("Request failed with status code %d", resp.StatusCode)),
			Body:    data,
		}
	}
	return out, nil
}

// endpointGroup labels metrics with the first path segment, e.g. "projects".
func endpointGroup(path string) string {
	path = strings.TrimLeft(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "root"
	}
	return path
}

// Error is a non-2xx response from the backend.
type Error struct {
	Status  int
	Message string
	Body    []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// MessageOf returns the user-facing text for err: the backend's message for
// HTTP failures, fallback for everything else.
func MessageOf(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
