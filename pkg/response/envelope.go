package response

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// envelopeKeys are the only keys an object may carry to be treated as a
// wrapper around its "data" member rather than as a record with a data
// field. Only ItemPayload needs the distinction.
var envelopeKeys = map[string]bool{
	"success":    true,
	"data":       true,
	"message":    true,
	"error":      true,
	"code":       true,
	"meta":       true,
	"total":      true,
	"count":      true,
	"page":       true,
	"page_size":  true,
	"pagination": true,
}

func isEnvelope(r gjson.Result) bool {
	if !r.IsObject() || !r.Get("data").Exists() {
		return false
	}
	ok := true
	r.ForEach(func(key, _ gjson.Result) bool {
		if !envelopeKeys[key.String()] {
			ok = false
		}
		return ok
	})
	return ok
}

// unwrap peels at most two envelope levels off an item body.
func unwrap(r gjson.Result) gjson.Result {
	for i := 0; i < 2 && isEnvelope(r); i++ {
		r = r.Get("data")
	}
	return r
}

// ListPayload returns the JSON array carried by body. It accepts a bare
// array, {data: [...]}, {data: {data: [...]}} and {data: {items: [...]}};
// other keys next to data are ignored. ok is false when body holds no
// array in any of those places.
func ListPayload(body []byte) (json.RawMessage, bool) {
	if !gjson.ValidBytes(body) {
		return nil, false
	}
	r := gjson.ParseBytes(body)
	for depth := 0; ; depth++ {
		if r.IsArray() {
			return json.RawMessage(r.Raw), true
		}
		if !r.IsObject() {
			return nil, false
		}
		if items := r.Get("items"); items.IsArray() {
			return json.RawMessage(items.Raw), true
		}
		data := r.Get("data")
		if depth == 2 || !(data.IsArray() || data.IsObject()) {
			return nil, false
		}
		r = data
	}
}

// ItemPayload returns the JSON object carried by body after removing up to
// two envelope levels. ok is false when no object remains.
func ItemPayload(body []byte) (json.RawMessage, bool) {
	if !gjson.ValidBytes(body) {
		return nil, false
	}
	r := unwrap(gjson.ParseBytes(body))
	if !r.IsObject() {
		return nil, false
	}
	return json.RawMessage(r.Raw), true
}

// MessageFrom extracts a user-facing message from an error body: "message",
// then "error" (string or {message}), then fallback.
func MessageFrom(body []byte, fallback string) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return fallback
	}
	r := gjson.ParseBytes(body)
	for _, path := range []string{"message", "error", "error.message", "data.message"} {
		v := r.Get(path)
		if v.Type == gjson.String && strings.TrimSpace(v.String()) != "" {
			return v.String()
		}
	}
	return fallback
}
