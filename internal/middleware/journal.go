package middleware

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// JournalEntry is one request observed by a Journal.
type JournalEntry struct {
	Method string
	Route  string // gin route pattern, e.g. /api/projects/:id
	Path   string
	Status int
	Body   string // sensitive values masked
}

// Journal records every request that passes through it. Tests use it to
// assert which calls a client did or did not make.
type Journal struct {
	mu      sync.Mutex
	entries []JournalEntry
}

func NewJournal() *Journal {
	return &Journal{}
}

func (j *Journal) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body string
		if c.Request.Body != nil {
			data, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(data))
			body = string(data)
			if len(body) > 2000 {
				body = body[:2000] + "...[truncated]"
			}
			body = maskSensitiveFields(body)
		}

		c.Next()

		j.mu.Lock()
		j.entries = append(j.entries, JournalEntry{
			Method: c.Request.Method,
			Route:  c.FullPath(),
			Path:   c.Request.URL.Path,
			Status: c.Writer.Status(),
			Body:   body,
		})
		j.mu.Unlock()
	}
}

func (j *Journal) Entries() []JournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]JournalEntry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Count returns how many requests matched method and path. path may be a
// concrete URL path or a gin route pattern.
func (j *Journal) Count(method, path string) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := 0
	for _, e := range j.entries {
		if e.Method == method && (e.Path == path || e.Route == path) {
			n++
		}
	}
	return n
}

func (j *Journal) Reset() {
	j.mu.Lock()
	j.entries = nil
	j.mu.Unlock()
}

func maskSensitiveFields(body string) string {
	for _, key := range []string{"password", "token", "secret"} {
		body = maskJSONValue(body, key)
	}
	return body
}

// maskJSONValue masks the first "key": "value" string value in body.
func maskJSONValue(body, key string) string {
	lower := strings.ToLower(body)
	idx := strings.Index(lower, "\""+key+"\"")
	if idx == -1 {
		return body
	}

	colonIdx := strings.Index(body[idx+len(key)+2:], ":")
	if colonIdx == -1 {
		return body
	}
	valueStart := idx + len(key) + 2 + colonIdx + 1

	for valueStart < len(body) && (body[valueStart] == ' ' || body[valueStart] == '\t') {
		valueStart++
	}
	if valueStart >= len(body) || body[valueStart] != '"' {
		return body
	}

	endQuote := strings.Index(body[valueStart+1:], "\"")
	if endQuote == -1 {
		return body
	}
	return body[:valueStart+1] + "***" + body[valueStart+1+endQuote:]
}
