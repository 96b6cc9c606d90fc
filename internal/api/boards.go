package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
)

// Login authenticates with email and password, returning the session
// token and the authenticated user. The token is also installed on the
// client for subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) (string, model.User, error) {
	var resp loginResponse
	err := c.post(ctx, "/api/auth/login", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return "", model.User{}, fmt.Errorf("logging in: %w", err)
	}
	c.token = resp.Token
	return resp.Token, resp.User.toModel(), nil
}

// FetchMe returns the authenticated user, validating the session token.
func (c *Client) FetchMe(ctx context.Context) (model.User, error) {
	var resp userDTO
	if err := c.get(ctx, "/api/users/me", &resp); err != nil {
		return model.User{}, fmt.Errorf("fetching current user: %w", err)
	}
	return resp.toModel(), nil
}

// FetchProjects lists the projects the user is a member of.
func (c *Client) FetchProjects(ctx context.Context) ([]model.Project, error) {
	var resp []projectDTO
	if err := c.get(ctx, "/api/projects", &resp); err != nil {
		return nil, fmt.Errorf("fetching projects: %w", err)
	}
	projects := make([]model.Project, len(resp))
	for i, p := range resp {
		projects[i] = p.toModel()
	}
	return projects, nil
}

// FetchBoard retrieves the ordered list/task state for one project.
func (c *Client) FetchBoard(ctx context.Context, projectID string) ([]model.List, error) {
	var resp boardResponse
	path := "/api/projects/" + url.PathEscape(projectID) + "/board"
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("fetching board for project %s: %w", projectID, err)
	}
	lists := make([]model.List, len(resp.Lists))
	for i, l := range resp.Lists {
		lists[i] = l.toModel()
	}
	return lists, nil
}

// CreateList persists a new list and returns the server-assigned record.
func (c *Client) CreateList(ctx context.Context, projectID, name string) (model.List, error) {
	var resp listDTO
	err := c.post(ctx, "/api/lists", createListRequest{ProjectID: projectID, Name: name}, &resp)
	if err != nil {
		return model.List{}, fmt.Errorf("creating list: %w", err)
	}
	return resp.toModel(), nil
}

// RenameList persists a list rename.
func (c *Client) RenameList(ctx context.Context, listID, name string) error {
	path := "/api/lists/" + url.PathEscape(listID)
	if err := c.patch(ctx, path, renameListRequest{Name: name}, nil); err != nil {
		return fmt.Errorf("renaming list %s: %w", listID, err)
	}
	return nil
}

// DeleteList removes a list and all its tasks on the server.
func (c *Client) DeleteList(ctx context.Context, listID string) error {
	if err := c.delete(ctx, "/api/lists/"+url.PathEscape(listID)); err != nil {
		return fmt.Errorf("deleting list %s: %w", listID, err)
	}
	return nil
}

// CreateTask persists a new task at the end of the given list and
// returns the server-assigned record.
func (c *Client) CreateTask(ctx context.Context, listID, name string) (model.Task, error) {
	var resp taskDTO
	err := c.post(ctx, "/api/tasks", createTaskRequest{ListID: listID, Name: name}, &resp)
	if err != nil {
		return model.Task{}, fmt.Errorf("creating task: %w", err)
	}
	return resp.toModel(), nil
}

// UpdateTask persists a partial task update. Nil patch fields are
// omitted from the payload and left untouched by the server.
func (c *Client) UpdateTask(ctx context.Context, taskID string, patch model.TaskPatch) error {
	req := updateTaskRequest{
		Name:        patch.Name,
		Description: patch.Description,
		Assignees:   patch.Assignees,
		Labels:      patch.Labels,
		CoverURL:    patch.CoverURL,
	}
	if patch.StartDate != nil {
		req.StartDate = *patch.StartDate
	}
	if patch.DueDate != nil {
		req.DueDate = *patch.DueDate
	}
	path := "/api/tasks/" + url.PathEscape(taskID)
	if err := c.patch(ctx, path, req, nil); err != nil {
		return fmt.Errorf("updating task %s: %w", taskID, err)
	}
	return nil
}

// DeleteTask removes a task on the server.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	if err := c.delete(ctx, "/api/tasks/"+url.PathEscape(taskID)); err != nil {
		return fmt.Errorf("deleting task %s: %w", taskID, err)
	}
	return nil
}

// MoveTask persists the new (list, index) position of a task after an
// accepted local move.
func (c *Client) MoveTask(ctx context.Context, taskID, destListID string, destIndex int) error {
	path := "/api/tasks/" + url.PathEscape(taskID) + "/move"
	req := moveTaskRequest{ListID: destListID, Index: destIndex}
	if err := c.put(ctx, path, req, nil); err != nil {
		return fmt.Errorf("moving task %s: %w", taskID, err)
	}
	return nil
}
