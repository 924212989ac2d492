package services

import (
	"errors"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/api"
)

var (
	ErrNotAuthenticated       = errors.New("not authenticated")
	ErrDuplicateProject       = errors.New("a project with this name already exists")
	ErrInvalidInvitationToken = errors.New("invalid invitation token")
	ErrInvitationExpired      = errors.New("invitation has expired")
	ErrInvitationUnavailable  = errors.New("invitation is no longer valid")
	ErrNotFound               = errors.New("not found")
)

// RequestError is a failed backend call reduced to the message shown to
// the user. The underlying error stays reachable through errors.As.
type RequestError struct {
	Message string
	Err     error
}

func (e *RequestError) Error() string { return e.Message }

func (e *RequestError) Unwrap() error { return e.Err }

func requestError(err error, fallback string) *RequestError {
	return &RequestError{Message: api.MessageOf(err, fallback), Err: err}
}

// ErrorMessage returns the text a view should display for err.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var re *RequestError
	if errors.As(err, &re) {
		return re.Message
	}
	return err.Error()
}
