package services

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/models"
	"github.com/go-playground/validator/v10"
)

// ValidationError carries one message per invalid field, keyed by the
// field's JSON name. It never reaches the network.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// FieldErrors returns the per-field messages carried by err, if any.
func FieldErrors(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// checkStruct runs the struct tags and converts failures to field messages.
func checkStruct(v interface{}) *ValidationError {
	ve := &ValidationError{}
	err := getValidator().Struct(v)
	if err == nil {
		return ve
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		ve.add("_", err.Error())
		return ve
	}
	for _, fe := range fieldErrs {
		ve.add(fe.Field(), fieldMessage(fe))
	}
	return ve
}

func fieldMessage(fe validator.FieldError) string {
	label := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return label + " must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "hexadecimal":
		return label + " must be hexadecimal"
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", label, fe.Param())
	}
	return label + " is invalid"
}

// fieldLabel turns "first_name" into "First name".
func fieldLabel(field string) string {
	if field == "" {
		return "Value"
	}
	s := strings.ReplaceAll(field, "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}

func checkEndAfterStart(ve *ValidationError, field string, start, end *models.Date, msg string) {
	if start == nil || end == nil || start.IsZero() || end.IsZero() {
		return
	}
	if end.Before(start.Time) {
		ve.add(field, msg)
	}
}

func checkNotPast(ve *ValidationError, field string, d *models.Date, now time.Time, msg string) {
	if d == nil || d.IsZero() {
		return
	}
	if d.Day().Before(models.Date{Time: now}.Day().Time) {
		ve.add(field, msg)
	}
}

func checkNotFuture(ve *ValidationError, field string, d models.Date, now time.Time, msg string) {
	if d.IsZero() {
		return
	}
	if d.Day().After(models.Date{Time: now}.Day().Time) {
		ve.add(field, msg)
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r LoginRequest) Validate() error {
	return checkStruct(r).orNil()
}

type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Username  string `json:"username" validate:"omitempty,min=3,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
}

func (r RegisterRequest) Validate() error {
	return checkStruct(r).orNil()
}

type AcceptInvitationRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Username  string `json:"username" validate:"omitempty,min=3,max=50"`
	Password  string `json:"password" validate:"required,min=6"`
}

func (r AcceptInvitationRequest) Validate() error {
	return checkStruct(r).orNil()
}

// ProjectInput is the create/update form for a project.
type ProjectInput struct {
	Name               string         `json:"name" validate:"required,max=200"`
	Description        string         `json:"description" validate:"max=2000"`
	Status             string         `json:"status,omitempty" validate:"omitempty,oneof=active completed on_hold cancelled"`
	Priority           string         `json:"priority,omitempty" validate:"omitempty,oneof=low medium high critical"`
	StartDate          *models.Date   `json:"start_date,omitempty"`
	EndDate            *models.Date   `json:"end_date,omitempty"`
	Budget             *models.Number `json:"budget,omitempty" validate:"omitempty,gte=0"`
	ProgressPercentage *models.Number `json:"progress_percentage,omitempty" validate:"omitempty,gte=0,lte=100"`
}

func (in ProjectInput) Validate() error {
	ve := checkStruct(in)
	if strings.TrimSpace(in.Name) == "" {
		ve.add("name", "Name is required")
	}
	checkEndAfterStart(ve, "end_date", in.StartDate, in.EndDate, "End date must be after start date")
	return ve.orNil()
}

type TaskInput struct {
	ProjectID          uint           `json:"project_id" validate:"required"`
	MilestoneID        *uint          `json:"milestone_id,omitempty"`
	Title              string         `json:"title" validate:"required,max=200"`
	Description        string         `json:"description" validate:"max=5000"`
	Status             string         `json:"status,omitempty" validate:"omitempty,oneof=todo in_progress review completed cancelled"`
	Priority           string         `json:"priority,omitempty" validate:"omitempty,oneof=low medium high critical"`
	DueDate            *models.Date   `json:"due_date,omitempty"`
	EstimatedHours     *models.Number `json:"estimated_hours,omitempty" validate:"omitempty,gte=0"`
	AssignedTo         *uint          `json:"assigned_to,omitempty"`
	ProgressPercentage *models.Number `json:"progress_percentage,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// Validate checks the form; creating additionally rejects past due dates.
func (in TaskInput) Validate(creating bool, now time.Time) error {
	ve := checkStruct(in)
	if creating {
		checkNotPast(ve, "due_date", in.DueDate, now, "Due date cannot be in the past")
	}
	return ve.orNil()
}

type MilestoneInput struct {
	ProjectID            uint           `json:"project_id" validate:"required"`
	Name                 string         `json:"name" validate:"required,max=200"`
	Description          string         `json:"description" validate:"max=2000"`
	Status               string         `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed overdue"`
	DueDate              *models.Date   `json:"due_date,omitempty"`
	CompletionPercentage *models.Number `json:"completion_percentage,omitempty" validate:"omitempty,gte=0,lte=100"`
}

func (in MilestoneInput) Validate(creating bool, now time.Time) error {
	ve := checkStruct(in)
	if creating {
		checkNotPast(ve, "due_date", in.DueDate, now, "Due date cannot be in the past")
	}
	return ve.orNil()
}

type TimeLogInput struct {
	TaskID      uint          `json:"task_id" validate:"required"`
	HoursSpent  models.Number `json:"hours_spent" validate:"gt=0,lte=24"`
	Date        models.Date   `json:"date"`
	Description string        `json:"description" validate:"max=1000"`
}

func (in TimeLogInput) Validate(now time.Time) error {
	ve := checkStruct(in)
	if in.Date.IsZero() {
		ve.add("date", "Date is required")
	}
	checkNotFuture(ve, "date", in.Date, now, "Date cannot be in the future")
	return ve.orNil()
}

type CommentInput struct {
	TaskID      uint                `json:"task_id" validate:"required"`
	Content     string              `json:"content" validate:"required,max=5000"`
	Attachments []models.Attachment `json:"attachments,omitempty"`
}

func (in CommentInput) Validate() error {
	ve := checkStruct(in)
	if strings.TrimSpace(in.Content) == "" {
		ve.add("content", "Content is required")
	}
	return ve.orNil()
}

type InvitationInput struct {
	Email     string `json:"email" validate:"required,email"`
	Role      string `json:"role" validate:"required,oneof=member developer project_manager viewer"`
	ProjectID *uint  `json:"project_id,omitempty"`
}

func (in InvitationInput) Validate() error {
	return checkStruct(in).orNil()
}

type EventInput struct {
	Title       string       `json:"title" validate:"required,max=200"`
	Description string       `json:"description" validate:"max=2000"`
	Type        string       `json:"type,omitempty" validate:"omitempty,oneof=meeting deadline milestone reminder"`
	Start       models.Date  `json:"start"`
	End         *models.Date `json:"end,omitempty"`
	AllDay      bool         `json:"all_day"`
	ProjectID   *uint        `json:"project_id,omitempty"`
}

func (in EventInput) Validate() error {
	ve := checkStruct(in)
	if in.Start.IsZero() {
		ve.add("start", "Start is required")
	}
	start := in.Start
	checkEndAfterStart(ve, "end", &start, in.End, "End must be after start")
	return ve.orNil()
}
