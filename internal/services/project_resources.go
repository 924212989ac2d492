package services

import (
	"context"
	"fmt"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/api"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/models"
)

// fetchList GETs path and decodes its array whatever the envelope. Read
// failures are logged and yield an empty list.
func fetchList[T any](ctx context.Context, c *ProjectController, path string) []T {
	out := []T{}
	resp, err := c.client.Get(ctx, path, nil)
	if err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("list fetch failed")
		return out
	}
	if err := resp.List(&out); err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("list decode failed")
		return []T{}
	}
	return out
}

// Project fetches one project by id.
func (c *ProjectController) Project(ctx context.Context, id uint) (models.Project, bool) {
	resp, err := c.client.Get(ctx, fmt.Sprintf("/projects/%d", id), nil)
	if err != nil {
		c.log.Warn().Err(err).Uint("project_id", id).Msg("project fetch failed")
		return models.Project{}, false
	}
	var p models.Project
	if err := resp.Item(&p); err != nil {
		return models.Project{}, false
	}
	return p, true
}

func (c *ProjectController) ProjectTasks(ctx context.Context, projectID uint) []models.Task {
	return fetchList[models.Task](ctx, c, fmt.Sprintf("/projects/%d/tasks", projectID))
}

func (c *ProjectController) ProjectMilestones(ctx context.Context, projectID uint) []models.Milestone {
	return fetchList[models.Milestone](ctx, c, fmt.Sprintf("/projects/%d/milestones", projectID))
}

func (c *ProjectController) ProjectTeam(ctx context.Context, projectID uint) []models.ProjectMember {
	return fetchList[models.ProjectMember](ctx, c, fmt.Sprintf("/projects/%d/team", projectID))
}

func (c *ProjectController) ProjectTimeLogs(ctx context.Context, projectID uint) []models.TimeLog {
	return fetchList[models.TimeLog](ctx, c, fmt.Sprintf("/projects/%d/time-logs", projectID))
}

func (c *ProjectController) MilestoneTasks(ctx context.Context, milestoneID uint) []models.Task {
	return fetchList[models.Task](ctx, c, fmt.Sprintf("/milestones/%d/tasks", milestoneID))
}

func (c *ProjectController) TaskTimeLogs(ctx context.Context, taskID uint) []models.TimeLog {
	return fetchList[models.TimeLog](ctx, c, fmt.Sprintf("/tasks/%d/time-logs", taskID))
}

func (c *ProjectController) TaskComments(ctx context.Context, taskID uint) []models.Comment {
	return fetchList[models.Comment](ctx, c, fmt.Sprintf("/tasks/%d/comments", taskID))
}

func (c *ProjectController) CreateTask(ctx context.Context, in TaskInput) (models.Task, error) {
	if err := in.Validate(true, c.now()); err != nil {
		c.setError(ErrorMessage(err))
		return models.Task{}, err
	}
	var t models.Task
	if err := c.mutate(ctx, in.ProjectID, "Failed to create task", "Task created successfully", func() (*api.Response, error) {
		return c.client.Post(ctx, "/tasks", in)
	}, &t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

func (c *ProjectController) UpdateTask(ctx context.Context, id uint, in TaskInput) (models.Task, error) {
	if err := in.Validate(false, c.now()); err != nil {
		c.setError(ErrorMessage(err))
		return models.Task{}, err
	}
	var t models.Task
	if err := c.mutate(ctx, in.ProjectID, "Failed to update task", "Task updated successfully", func() (*api.Response, error) {
		return c.client.Put(ctx, fmt.Sprintf("/tasks/%d", id), in)
	}, &t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

func (c *ProjectController) DeleteTask(ctx context.Context, projectID, taskID uint) error {
	return c.mutate(ctx, projectID, "Failed to delete task", "Task deleted successfully", func() (*api.Response, error) {
		return c.client.Delete(ctx, fmt.Sprintf("/tasks/%d", taskID))
	}, nil)
}

func (c *ProjectController) CreateMilestone(ctx context.Context, in MilestoneInput) (models.Milestone, error) {
	if err := in.Validate(true, c.now()); err != nil {
		c.setError(ErrorMessage(err))
		return models.Milestone{}, err
	}
	var m models.Milestone
	if err := c.mutate(ctx, in.ProjectID, "Failed to create milestone", "Milestone created successfully", func() (*api.Response, error) {
		return c.client.Post(ctx, "/milestones", in)
	}, &m); err != nil {
		return models.Milestone{}, err
	}
	return m, nil
}

func (c *ProjectController) UpdateMilestone(ctx context.Context, id uint, in MilestoneInput) (models.Milestone, error) {
	if err := in.Validate(false, c.now()); err != nil {
		c.setError(ErrorMessage(err))
		return models.Milestone{}, err
	}
	var m models.Milestone
	if err := c.mutate(ctx, in.ProjectID, "Failed to update milestone", "Milestone updated successfully", func() (*api.Response, error) {
		return c.client.Put(ctx, fmt.Sprintf("/milestones/%d", id), in)
	}, &m); err != nil {
		return models.Milestone{}, err
	}
	return m, nil
}

func (c *ProjectController) DeleteMilestone(ctx context.Context, projectID, milestoneID uint) error {
	return c.mutate(ctx, projectID, "Failed to delete milestone", "Milestone deleted successfully", func() (*api.Response, error) {
		return c.client.Delete(ctx, fmt.Sprintf("/milestones/%d", milestoneID))
	}, nil)
}

// LogTime records hours against a task of projectID.
func (c *ProjectController) LogTime(ctx context.Context, projectID uint, in TimeLogInput) (models.TimeLog, error) {
	if err := in.Validate(c.now()); err != nil {
		c.setError(ErrorMessage(err))
		return models.TimeLog{}, err
	}
	var l models.TimeLog
	if err := c.mutate(ctx, projectID, "Failed to log time", "Time logged successfully", func() (*api.Response, error) {
		return c.client.Post(ctx, "/time-logs", in)
	}, &l); err != nil {
		return models.TimeLog{}, err
	}
	return l, nil
}

func (c *ProjectController) DeleteTimeLog(ctx context.Context, projectID, id uint) error {
	return c.mutate(ctx, projectID, "Failed to delete time log", "Time log deleted successfully", func() (*api.Response, error) {
		return c.client.Delete(ctx, fmt.Sprintf("/time-logs/%d", id))
	}, nil)
}

// AddComment posts a comment and returns the task's refreshed thread.
func (c *ProjectController) AddComment(ctx context.Context, in CommentInput) ([]models.Comment, error) {
	if err := in.Validate(); err != nil {
		c.setError(ErrorMessage(err))
		return nil, err
	}
	resp, err := c.client.Post(ctx, "/comments", in)
	if err != nil {
		return nil, c.fail(err, "Failed to add comment")
	}
	c.toaster.Success(resp.Message("Comment added successfully"))
	return c.TaskComments(ctx, in.TaskID), nil
}

// mutate runs a server-confirmed change to a project's nested resources,
// decodes the returned record into out when non-nil and refreshes the
// parent project so its counters follow.
func (c *ProjectController) mutate(ctx context.Context, projectID uint, failMsg, okMsg string, call func() (*api.Response, error), out interface{}) error {
	resp, err := call()
	if err != nil {
		return c.fail(err, failMsg)
	}
	if out != nil {
		if err := resp.Item(out); err != nil {
			return c.fail(err, failMsg)
		}
	}
	c.setError("")
	c.toaster.Success(resp.Message(okMsg))
	if projectID != 0 {
		c.RefreshProject(ctx, projectID)
	}
	return nil
}
