package api

import (
	"testing"
)

func TestResponse_ListShapes(t *testing.T) {
	bodies := map[string]string{
		"double nested": `{"success":true,"data":{"data":[{"id":1,"name":"a"},{"id":2,"name":"b"}]}}`,
		"single":        `{"success":true,"data":[{"id":1,"name":"a"},{"id":2,"name":"b"}]}`,
		"bare":          `[{"id":1,"name":"a"},{"id":2,"name":"b"}]`,
		"items":         `{"data":{"items":[{"id":1,"name":"a"},{"id":2,"name":"b"}],"total":2}}`,
		"extra keys":    `{"success":true,"data":[{"id":1,"name":"a"},{"id":2,"name":"b"}],"timestamp":"2024-06-10T08:00:00Z"}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			var out []item
			if err := (&Response{Status: 200, Body: []byte(body)}).List(&out); err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(out) != 2 || out[0].Name != "a" || out[1].ID != 2 {
				t.Errorf("unexpected list %+v", out)
			}
		})
	}
}

func TestResponse_ListMismatchIsEmpty(t *testing.T) {
	for _, body := range []string{`{"success":true,"data":{"id":1}}`, `null`, ``, `"text"`} {
		out := []item{{ID: 9}}
		if err := (&Response{Body: []byte(body)}).List(&out); err != nil {
			t.Errorf("%q: unexpected error %v", body, err)
		}
		if out == nil || len(out) != 0 {
			t.Errorf("%q: expected empty non-nil slice, got %#v", body, out)
		}
	}
}

func TestResponse_Item(t *testing.T) {
	for _, body := range []string{
		`{"success":true,"data":{"data":{"id":5,"name":"x"}}}`,
		`{"success":true,"data":{"id":5,"name":"x"}}`,
		`{"id":5,"name":"x"}`,
	} {
		var it item
		if err := (&Response{Body: []byte(body)}).Item(&it); err != nil {
			t.Errorf("%s: %v", body, err)
			continue
		}
		if it.ID != 5 || it.Name != "x" {
			t.Errorf("%s: got %+v", body, it)
		}
	}

	var it item
	if err := (&Response{Body: []byte(`[1,2]`)}).Item(&it); err != ErrUnexpectedShape {
		t.Errorf("expected ErrUnexpectedShape, got %v", err)
	}
}

func TestResponse_Message(t *testing.T) {
	r := &Response{Body: []byte(`{"success":true,"message":"Project deleted"}`)}
	if got := r.Message("done"); got != "Project deleted" {
		t.Errorf("expected body message, got %q", got)
	}
	r = &Response{Body: []byte(`{"success":true}`)}
	if got := r.Message("done"); got != "done" {
		t.Errorf("expected fallback, got %q", got)
	}
}
