package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/iliyamo/timetracker/internal/model"
	"github.com/iliyamo/timetracker/internal/rules"
)

// TaskInput is a new task.
type TaskInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Hours       float64 `json:"hours"`
}

// TaskUpdate holds the fields to change; nil fields are left alone.
type TaskUpdate struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Hours       *float64 `json:"hours,omitempty"`
}

type createTaskBody struct {
	TaskInput
	DayID string `json:"dayId"`
}

func validate(title, description string, hours float64) error {
	if res := rules.ValidateTaskInput(title, description, &hours); !res.IsValid {
		return &ValidationError{Errors: res.Errors}
	}
	return nil
}

// CreateTask adds a task to the day dayID.
func (c *Client) CreateTask(ctx context.Context, s Session, dayID string, in TaskInput) (model.Task, error) {
	if err := validate(in.Title, in.Description, in.Hours); err != nil {
		return model.Task{}, err
	}
	var out model.Task
	err := c.do(ctx, http.MethodPost, "/tasks", &s, createTaskBody{TaskInput: in, DayID: dayID}, &out)
	return out, err
}

// ListTasks returns the user's tasks, newest first.  A non-empty dayID
// filters to that day.
func (c *Client) ListTasks(ctx context.Context, s Session, dayID string) ([]model.Task, error) {
	path := "/tasks"
	if dayID != "" {
		path += "?" + url.Values{"dayId": {dayID}}.Encode()
	}
	var out []model.Task
	err := c.do(ctx, http.MethodGet, path, &s, nil, &out)
	return out, err
}

// ListTasksByDay is like ListTasks with a filter but fails with a 404
// APIError when the day does not exist.
func (c *Client) ListTasksByDay(ctx context.Context, s Session, dayID string) ([]model.Task, error) {
	var out []model.Task
	err := c.do(ctx, http.MethodGet, "/tasks/day/"+escape(dayID), &s, nil, &out)
	return out, err
}

func (c *Client) GetTask(ctx context.Context, s Session, id string) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, http.MethodGet, "/tasks/"+escape(id), &s, nil, &out)
	return out, err
}

// UpdateTask applies upd to current, the task as last fetched.  The merged
// task is validated locally; only the fields in upd are sent.
func (c *Client) UpdateTask(ctx context.Context, s Session, current model.Task, upd TaskUpdate) (model.Task, error) {
	merged := current
	if upd.Title != nil {
		merged.Title = *upd.Title
	}
	if upd.Description != nil {
		merged.Description = *upd.Description
	}
	if upd.Hours != nil {
		merged.Hours = *upd.Hours
	}
	if err := validate(merged.Title, merged.Description, merged.Hours); err != nil {
		return model.Task{}, err
	}
	var out model.Task
	err := c.do(ctx, http.MethodPut, "/tasks/"+escape(current.ID), &s, upd, &out)
	return out, err
}

func (c *Client) DeleteTask(ctx context.Context, s Session, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+escape(id), &s, nil, nil)
}

// DeleteTasksByDay empties a day and returns the number of removed tasks.
func (c *Client) DeleteTasksByDay(ctx context.Context, s Session, dayID string) (int64, error) {
	var out struct {
		DeletedCount int64 `json:"deletedCount"`
	}
	err := c.do(ctx, http.MethodDelete, "/tasks/day/"+escape(dayID), &s, nil, &out)
	return out.DeletedCount, err
}
