package response

import (
	"encoding/json"
	"testing"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func decodeItems(t *testing.T, raw json.RawMessage) []item {
	t.Helper()
	var out []item
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("failed to decode list payload: %v", err)
	}
	return out
}

func TestListPayload_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bare array", body: `[{"id":1,"name":"a"},{"id":2,"name":"b"}]`},
		{name: "single envelope", body: `{"success":true,"data":[{"id":1,"name":"a"},{"id":2,"name":"b"}]}`},
		{name: "double envelope", body: `{"success":true,"data":{"success":true,"data":[{"id":1,"name":"a"},{"id":2,"name":"b"}]}}`},
		{name: "data without success", body: `{"data":{"data":[{"id":1,"name":"a"},{"id":2,"name":"b"}]}}`},
		{name: "paginated items", body: `{"success":true,"data":{"items":[{"id":1,"name":"a"},{"id":2,"name":"b"}],"total":2}}`},
		{name: "paginated nested", body: `{"success":true,"data":{"data":[{"id":1,"name":"a"},{"id":2,"name":"b"}],"total":2,"page":1}}`},
		{name: "extra top-level keys", body: `{"success":true,"data":[{"id":1,"name":"a"},{"id":2,"name":"b"}],"timestamp":"2024-06-10T08:00:00Z","request_id":"r-1"}`},
		{name: "extra keys at both levels", body: `{"success":true,"errors":[],"data":{"data":[{"id":1,"name":"a"},{"id":2,"name":"b"}],"cursor":"abc"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, ok := ListPayload([]byte(tt.body))
			if !ok {
				t.Fatalf("ListPayload(%s) returned ok=false", tt.body)
			}
			items := decodeItems(t, raw)
			if len(items) != 2 {
				t.Fatalf("expected 2 items, got %d", len(items))
			}
			if items[0].ID != 1 || items[1].Name != "b" {
				t.Errorf("unexpected items: %+v", items)
			}
		})
	}
}

func TestListPayload_NotAList(t *testing.T) {
	bodies := []string{
		``,
		`not json`,
		`{"success":true,"data":{"id":1}}`,
		`{"success":true,"data":null}`,
		`{"success":false,"message":"boom"}`,
	}

	for _, body := range bodies {
		if _, ok := ListPayload([]byte(body)); ok {
			t.Errorf("ListPayload(%q) should return ok=false", body)
		}
	}
}

func TestItemPayload_Shapes(t *testing.T) {
	bodies := []string{
		`{"id":7,"name":"x"}`,
		`{"success":true,"data":{"id":7,"name":"x"}}`,
		`{"success":true,"message":"ok","data":{"success":true,"data":{"id":7,"name":"x"}}}`,
	}

	for _, body := range bodies {
		raw, ok := ItemPayload([]byte(body))
		if !ok {
			t.Fatalf("ItemPayload(%s) returned ok=false", body)
		}
		var got item
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.ID != 7 || got.Name != "x" {
			t.Errorf("ItemPayload(%s) = %+v, expected id 7", body, got)
		}
	}
}

func TestItemPayload_KeepsRecordDataField(t *testing.T) {
	body := `{"success":true,"data":{"id":3,"type":"custom","data":{"task":"X"}}}`

	raw, ok := ItemPayload([]byte(body))
	if !ok {
		t.Fatal("expected ok=true")
	}
	var got struct {
		ID   int               `json:"id"`
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != 3 {
		t.Errorf("expected id 3, got %d", got.ID)
	}
	if got.Data["task"] != "X" {
		t.Errorf("record data field should be preserved, got %v", got.Data)
	}
}

func TestMessageFrom(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{name: "message field", body: `{"success":false,"message":"Project not found"}`, expected: "Project not found"},
		{name: "error field", body: `{"error":"invalid or expired token"}`, expected: "invalid or expired token"},
		{name: "nested error", body: `{"error":{"message":"bad input"}}`, expected: "bad input"},
		{name: "empty message", body: `{"message":"  "}`, expected: "fallback"},
		{name: "no body", body: ``, expected: "fallback"},
		{name: "html body", body: `<html>502</html>`, expected: "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MessageFrom([]byte(tt.body), "fallback"); got != tt.expected {
				t.Errorf("MessageFrom() = %q, expected %q", got, tt.expected)
			}
		})
	}
}
