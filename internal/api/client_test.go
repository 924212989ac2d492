package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/store"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *store.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	st := store.NewMemoryStore()
	return New(srv.URL+"/api", 2*time.Second, st), st
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	c, st := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	})

	if _, err := c.Get(context.Background(), "/projects", nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("expected no Authorization without a token, got %q", gotAuth)
	}

	st.Set(store.KeyAuthToken, "abc")
	if _, err := c.Get(context.Background(), "/projects", nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotAuth != "Bearer abc" {
		t.Errorf("expected %q, got %q", "Bearer abc", gotAuth)
	}
}

func TestClient_UnauthorizedClearsToken(t *testing.T) {
	hookCalls := 0
	c, st := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"error":"token expired"}`))
	})
	c.SetUnauthorizedHook(func() { hookCalls++ })
	st.Set(store.KeyAuthToken, "stale")

	_, err := c.Get(context.Background(), "/auth/profile", nil)
	if StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401 error, got %v", err)
	}
	if _, ok := st.Get(store.KeyAuthToken); ok {
		t.Error("expected token cleared after 401")
	}
	if hookCalls != 1 {
		t.Errorf("expected hook called once, got %d", hookCalls)
	}
	if msg := MessageOf(err, "fallback"); msg != "token expired" {
		t.Errorf("expected body message, got %q", msg)
	}
}

func TestClient_ErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{"message field", 400, `{"success":false,"message":"Name is required"}`, "Name is required"},
		{"error field", 409, `{"error":"Project already exists"}`, "Project already exists"},
		{"empty body", 500, ``, "Request failed with status code 500"},
		{"html body", 502, `<html>bad gateway</html>`, "Request failed with status code 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			resp, err := c.Post(context.Background(), "/projects", map[string]string{"name": "x"})
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.Status)
			}
			if apiErr.Message != tt.expected {
				t.Errorf("expected message %q, got %q", tt.expected, apiErr.Message)
			}
			if resp == nil || resp.Status != tt.status {
				t.Errorf("expected response with status %d alongside error", tt.status)
			}
		})
	}
}

func TestClient_TransportErrorIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := New(base, time.Second, store.NewMemoryStore())
	_, err := c.Get(context.Background(), "/projects", nil)
	if err == nil {
		t.Fatal("expected transport error")
	}
	if StatusOf(err) != 0 {
		t.Errorf("transport error should carry no status, got %d", StatusOf(err))
	}
	if msg := MessageOf(err, "Network error"); msg != "Network error" {
		t.Errorf("expected fallback message, got %q", msg)
	}
}

func TestClient_ContextCancel(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Get(ctx, "/projects", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestClient_SendsQueryAndBody(t *testing.T) {
	var gotQuery url.Values
	var gotBody map[string]interface{}
	var gotMethod, gotPath, gotType string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotQuery = r.URL.Query()
		gotType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			json.Unmarshal(data, &gotBody)
		}
		w.Write([]byte(`{"success":true,"data":{"id":1,"name":"ok"}}`))
	})

	_, err := c.Get(context.Background(), "projects", url.Values{"status": {"active"}})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotPath != "/api/projects" || gotQuery.Get("status") != "active" {
		t.Errorf("unexpected request %s?%v", gotPath, gotQuery)
	}

	resp, err := c.Patch(context.Background(), "/tasks/4", map[string]string{"status": "review"})
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if gotMethod != "PATCH" || gotBody["status"] != "review" || gotType != "application/json" {
		t.Errorf("unexpected PATCH: method=%s body=%v type=%s", gotMethod, gotBody, gotType)
	}
	var it item
	if err := resp.Item(&it); err != nil || it.Name != "ok" {
		t.Errorf("Item() = %+v, %v", it, err)
	}
}

func TestClient_RateLimitWaits(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	WithRateLimit(1, 1)(c)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if _, err := c.Get(ctx, "/a", nil); err != nil {
		t.Fatalf("first request should pass: %v", err)
	}
	if _, err := c.Get(ctx, "/a", nil); err == nil {
		t.Error("second request should fail waiting for the limiter before the deadline")
	}
}

func TestEndpointGroup(t *testing.T) {
	tests := map[string]string{
		"/projects/3/tasks": "projects",
		"auth/login":        "auth",
		"/":                 "root",
		"/events?x=1":       "events",
	}
	for in, expected := range tests {
		if got := endpointGroup(in); got != expected {
			t.Errorf("endpointGroup(%q) = %q, expected %q", in, got, expected)
		}
	}
}
