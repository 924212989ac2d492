package services

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/api"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/models"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/logger"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
)

// ProjectFilter narrows the project list. Empty fields match everything.
type ProjectFilter struct {
	Status   string `json:"status"`
	Priority string `json:"priority"`
	Search   string `json:"search"`
}

func (f ProjectFilter) query() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Priority != "" {
		q.Set("priority", f.Priority)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q.Set("search", s)
	}
	return q
}

// ProjectController holds the project list and its filter, and routes
// nested resource calls for a project's tasks, milestones, team and time.
type ProjectController struct {
	client  *api.Client
	auth    *AuthController
	toaster *Toaster
	log     zerolog.Logger
	now     func() time.Time

	mu       sync.RWMutex
	projects []models.Project
	filter   ProjectFilter
	lastErr  string
	inflight int
	// gen is bumped by every fetch issued and every committed mutation; a
	// fetch whose generation is no longer current is discarded.
	gen     uint64
	pending map[string]int

	changes *Hub[[]models.Project]
}

func NewProjectController(client *api.Client, auth *AuthController, toaster *Toaster) *ProjectController {
	return &ProjectController{
		client:   client,
		auth:     auth,
		toaster:  toaster,
		log:      logger.Component("projects"),
		now:      time.Now,
		projects: []models.Project{},
		pending:  make(map[string]int),
		changes:  NewHub[[]models.Project](16),
	}
}

// FetchProjects replaces the list with the server's, filtered by the
// current filter. It does nothing until the session is authenticated.
func (c *ProjectController) FetchProjects(ctx context.Context) error {
	if c.auth.State() != StateAuthenticated {
		c.log.Debug().Str("state", string(c.auth.State())).Msg("skipping fetch, not authenticated")
		return nil
	}

	c.mu.Lock()
	c.gen++
	gen := c.gen
	filter := c.filter
	c.inflight++
	c.mu.Unlock()

	resp, err := c.client.Get(ctx, "/projects", filter.query())
	var list []models.Project
	if err == nil {
		err = resp.List(&list)
	}

	c.mu.Lock()
	c.inflight--
	if gen != c.gen {
		c.mu.Unlock()
		c.log.Debug().Uint64("gen", gen).Msg("discarding stale project list")
		return nil
	}
	if err != nil {
		reqErr := requestError(err, "Failed to fetch projects")
		c.projects = []models.Project{}
		c.lastErr = reqErr.Message
		c.mu.Unlock()
		c.log.Warn().Err(err).Msg("fetch projects failed")
		c.publish()
		return reqErr
	}
	c.projects = list
	c.lastErr = ""
	c.mu.Unlock()

	c.log.Debug().Int("count", len(list)).Msg("projects fetched")
	c.publish()
	return nil
}

// CreateProject validates input, rejects a name already held or being
// created without calling the backend, and appends the created project.
func (c *ProjectController) CreateProject(ctx context.Context, in ProjectInput) (models.Project, error) {
	if err := in.Validate(); err != nil {
		c.setError(ErrorMessage(err))
		return models.Project{}, err
	}

	key := nameKey(in.Name)
	c.mu.Lock()
	if c.pending[key] > 0 || c.holdsNameLocked(key, 0) {
		msg := fmt.Sprintf("Project %q already exists", strings.TrimSpace(in.Name))
		c.lastErr = msg
		c.mu.Unlock()
		return models.Project{}, &RequestError{Message: msg, Err: ErrDuplicateProject}
	}
	c.pending[key]++
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.pending[key]--; c.pending[key] <= 0 {
			delete(c.pending, key)
		}
		c.mu.Unlock()
	}()

	resp, err := c.client.Post(ctx, "/projects", in)
	if err != nil {
		return models.Project{}, c.fail(err, "Failed to create project")
	}
	var created models.Project
	if err := resp.Item(&created); err != nil {
		return models.Project{}, c.fail(err, "Failed to create project")
	}

	c.mu.Lock()
	c.gen++
	c.projects = append(cloneProjects(c.projects), created)
	c.lastErr = ""
	c.mu.Unlock()

	c.publish()
	c.toaster.Success(resp.Message("Project created successfully"))
	c.log.Info().Uint("project_id", created.ID).Str("name", created.Name).Msg("project created")
	return created, nil
}

// UpdateProject changes the local copy only after the backend confirmed.
func (c *ProjectController) UpdateProject(ctx context.Context, id uint, in ProjectInput) (models.Project, error) {
	if err := in.Validate(); err != nil {
		c.setError(ErrorMessage(err))
		return models.Project{}, err
	}
	c.mu.RLock()
	dup := c.holdsNameLocked(nameKey(in.Name), id)
	c.mu.RUnlock()
	if dup {
		msg := fmt.Sprintf("Project %q already exists", strings.TrimSpace(in.Name))
		c.setError(msg)
		return models.Project{}, &RequestError{Message: msg, Err: ErrDuplicateProject}
	}

	resp, err := c.client.Put(ctx, fmt.Sprintf("/projects/%d", id), in)
	if err != nil {
		return models.Project{}, c.fail(err, "Failed to update project")
	}
	var updated models.Project
	if err := resp.Item(&updated); err != nil {
		return models.Project{}, c.fail(err, "Failed to update project")
	}

	c.replace(updated)
	c.toaster.Success(resp.Message("Project updated successfully"))
	return updated, nil
}

// DeleteProject removes the local copy only after the backend confirmed.
func (c *ProjectController) DeleteProject(ctx context.Context, id uint) error {
	resp, err := c.client.Delete(ctx, fmt.Sprintf("/projects/%d", id))
	if err != nil {
		return c.fail(err, "Failed to delete project")
	}

	c.mu.Lock()
	c.gen++
	kept := make([]models.Project, 0, len(c.projects))
	for _, p := range c.projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	c.projects = kept
	c.lastErr = ""
	c.mu.Unlock()

	c.publish()
	c.toaster.Success(resp.Message("Project deleted successfully"))
	return nil
}

// RefreshProject reloads one project, picking up server-derived counters.
func (c *ProjectController) RefreshProject(ctx context.Context, id uint) {
	p, ok := c.Project(ctx, id)
	if !ok {
		return
	}
	c.replace(p)
}

func (c *ProjectController) replace(p models.Project) {
	c.mu.Lock()
	c.gen++
	next := cloneProjects(c.projects)
	for i := range next {
		if next[i].ID == p.ID {
			next[i] = p
		}
	}
	c.projects = next
	c.lastErr = ""
	c.mu.Unlock()
	c.publish()
}

// FilteredProjects applies status and priority equality and a
// case-insensitive substring search over name and description.
func (c *ProjectController) FilteredProjects() []models.Project {
	c.mu.RLock()
	projects := c.projects
	filter := c.filter
	c.mu.RUnlock()
	return FilterProjects(projects, filter)
}

func FilterProjects(projects []models.Project, f ProjectFilter) []models.Project {
	out := []models.Project{}
	fold := cases.Fold()
	search := fold.String(strings.TrimSpace(f.Search))
	for _, p := range projects {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.Priority != "" && p.Priority != f.Priority {
			continue
		}
		if search != "" &&
			!strings.Contains(fold.String(p.Name), search) &&
			!strings.Contains(fold.String(p.Description), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ProjectProgress is time-based when hours were estimated, then the
// server's percentage as given, then the completed-task ratio.
func ProjectProgress(p models.Project) float64 {
	if est := p.TotalEstimatedHours.Float(); est > 0 {
		return percent(p.TotalTimeSpent.Float(), est)
	}
	if p.ProgressPercentage != nil {
		return p.ProgressPercentage.Float()
	}
	if p.TasksCount > 0 {
		return percent(float64(p.CompletedTasks), float64(p.TasksCount))
	}
	return 0
}

// TaskProgress is 100 for completed tasks, otherwise time-based when
// estimated, otherwise the manual percentage.
func TaskProgress(t models.Task) float64 {
	if t.Status == models.TaskCompleted {
		return 100
	}
	if est := t.EstimatedHours.Float(); est > 0 {
		return percent(t.TotalTimeSpent.Float(), est)
	}
	if t.ProgressPercentage != nil {
		return t.ProgressPercentage.Float()
	}
	return 0
}

// MilestoneProgress prefers the stored completion percentage and falls back
// to the share of the milestone's tasks that are completed.
func MilestoneProgress(m models.Milestone, tasks []models.Task) float64 {
	if m.CompletionPercentage != nil {
		return m.CompletionPercentage.Float()
	}
	var total, done int
	for _, t := range tasks {
		if t.MilestoneID == nil || *t.MilestoneID != m.ID {
			continue
		}
		total++
		if t.Status == models.TaskCompleted {
			done++
		}
	}
	if total == 0 {
		return 0
	}
	return percent(float64(done), float64(total))
}

// percent rounds part/whole to a whole percentage in [0, 100].
func percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	v := math.Round(part / whole * 100)
	return math.Max(0, math.Min(100, v))
}

func (c *ProjectController) Projects() []models.Project {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneProjects(c.projects)
}

func (c *ProjectController) SetFilter(f ProjectFilter) {
	c.mu.Lock()
	c.filter = f
	c.mu.Unlock()
}

func (c *ProjectController) Filter() ProjectFilter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter
}

func (c *ProjectController) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inflight > 0
}

func (c *ProjectController) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Subscribe streams a snapshot of the list after every change.
func (c *ProjectController) Subscribe(id string) (string, <-chan []models.Project) {
	return c.changes.Subscribe(id)
}

func (c *ProjectController) Unsubscribe(id string) { c.changes.Unsubscribe(id) }

// Watch keeps the list in step with the session until ctx ends: it fetches
// on every login and clears on logout. When a session is already open it
// fetches once before returning.
func (c *ProjectController) Watch(ctx context.Context) {
	id, events := c.auth.Subscribe("")
	go func() {
		defer c.auth.Unsubscribe(id)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				switch ev.Type {
				case AuthLogin:
					if err := c.FetchProjects(ctx); err != nil {
						c.log.Warn().Err(err).Msg("fetch after login failed")
					}
				case AuthLogout:
					c.clear()
				}
			}
		}
	}()
	if c.auth.IsAuthenticated() {
		if err := c.FetchProjects(ctx); err != nil {
			c.log.Warn().Err(err).Msg("initial fetch failed")
		}
	}
}

func (c *ProjectController) clear() {
	c.mu.Lock()
	c.gen++
	c.projects = []models.Project{}
	c.lastErr = ""
	c.mu.Unlock()
	c.publish()
}

func (c *ProjectController) publish() {
	c.changes.Publish(c.Projects())
}

func (c *ProjectController) setError(msg string) {
	c.mu.Lock()
	c.lastErr = msg
	c.mu.Unlock()
}

// fail records a mutation failure and tells the user.
func (c *ProjectController) fail(err error, fallback string) error {
	reqErr := requestError(err, fallback)
	c.setError(reqErr.Message)
	c.toaster.Error(reqErr.Message)
	c.log.Warn().Err(err).Msg(fallback)
	return reqErr
}

func (c *ProjectController) holdsNameLocked(key string, exceptID uint) bool {
	for _, p := range c.projects {
		if p.ID != exceptID && nameKey(p.Name) == key {
			return true
		}
	}
	return false
}

func nameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

func cloneProjects(in []models.Project) []models.Project {
	out := make([]models.Project, len(in))
	copy(out, in)
	return out
}
