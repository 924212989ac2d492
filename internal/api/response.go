package api

import (
	"encoding/json"
	"errors"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/logger"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/response"
)

var ErrUnexpectedShape = errors.New("unexpected response shape")

// Response is a raw 2xx (or error) reply. List and Item are the only
// places envelopes are unwrapped.
type Response struct {
	Status int
	Body   []byte
}

// List decodes the array carried by the body into out, which must point to
// a slice. A body without an array leaves out as an empty slice.
func (r *Response) List(out interface{}) error {
	raw, ok := response.ListPayload(r.Body)
	if !ok {
		logger.Warn().Int("status", r.Status).Int("bytes", len(r.Body)).Msg("list response is not an array, using empty list")
		raw = json.RawMessage("[]")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		_ = json.Unmarshal([]byte("[]"), out)
		return err
	}
	return nil
}

// Item decodes the single record carried by the body into out.
func (r *Response) Item(out interface{}) error {
	raw, ok := response.ItemPayload(r.Body)
	if !ok {
		return ErrUnexpectedShape
	}
	return json.Unmarshal(raw, out)
}

// Message returns the body's message field, or fallback.
func (r *Response) Message(fallback string) string {
	return response.MessageFrom(r.Body, fallback)
}
