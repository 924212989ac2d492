package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestJournal_RecordsRequests(t *testing.T) {
	j := NewJournal()
	router := gin.New()
	router.Use(j.Middleware())
	router.GET("/api/projects/:id", func(c *gin.Context) { c.Status(200) })
	router.POST("/auth/login", func(c *gin.Context) { c.Status(401) })

	for _, r := range []struct{ method, path, body string }{
		{"GET", "/api/projects/3", ""},
		{"GET", "/api/projects/4", ""},
		{"POST", "/auth/login", `{"email":"a@b.c","password":"hunter2"}`},
	} {
		req, _ := http.NewRequest(r.method, r.path, strings.NewReader(r.body))
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	if n := j.Count("GET", "/api/projects/:id"); n != 2 {
		t.Errorf("route count = %d, expected 2", n)
	}
	if n := j.Count("GET", "/api/projects/3"); n != 1 {
		t.Errorf("path count = %d, expected 1", n)
	}

	entries := j.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	login := entries[2]
	if login.Status != 401 {
		t.Errorf("status = %d, expected 401", login.Status)
	}
	if strings.Contains(login.Body, "hunter2") {
		t.Errorf("password not masked: %s", login.Body)
	}

	j.Reset()
	if len(j.Entries()) != 0 {
		t.Error("expected empty journal after Reset")
	}
}

func TestMaskJSONValue(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		key      string
		expected string
	}{
		{"string value", `{"password":"secret123"}`, "password", `{"password":"***"}`},
		{"with space", `{"password": "secret123"}`, "password", `{"password": "***"}`},
		{"missing key", `{"email":"a@b.c"}`, "password", `{"email":"a@b.c"}`},
		{"non-string", `{"token":null}`, "token", `{"token":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := maskJSONValue(tt.body, tt.key); got != tt.expected {
				t.Errorf("maskJSONValue() = %q, expected %q", got, tt.expected)
			}
		})
	}
}
