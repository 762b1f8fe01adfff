package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iliyamo/timetracker/internal/model"
	"github.com/iliyamo/timetracker/internal/rules"
)

// CreatedDay is the answer to CreateDay.  TaskErrors lists embedded tasks
// the server could not store.
type CreatedDay struct {
	model.Day
	Tasks      []model.Task `json:"tasks"`
	TaskErrors []string     `json:"taskErrors"`
}

type createDayBody struct {
	Date  string      `json:"date"`
	Tasks []TaskInput `json:"tasks,omitempty"`
}

// CreateDay creates the day for date (YYYY-MM-DD) together with tasks.  The
// tasks are checked one by one and as a batch before sending.
func (c *Client) CreateDay(ctx context.Context, s Session, date string, tasks ...TaskInput) (CreatedDay, error) {
	var errs []string
	hours := make([]float64, 0, len(tasks))
	for i, t := range tasks {
		h := t.Hours
		for _, e := range rules.ValidateTaskInput(t.Title, t.Description, &h).Errors {
			errs = append(errs, fmt.Sprintf("Task %d: %s", i+1, e))
		}
		hours = append(hours, h)
	}
	if len(errs) == 0 {
		if batch := rules.ValidateMultipleTasks(hours); !batch.IsValid {
			errs = append(errs, fmt.Sprintf("Total hours (%s) exceed the %s-hour work day limit",
				rules.FormatHours(batch.TotalHours), rules.FormatHours(rules.MaxDailyHours)))
		}
	}
	if len(errs) > 0 {
		return CreatedDay{}, &ValidationError{Errors: errs}
	}

	var out CreatedDay
	err := c.do(ctx, http.MethodPost, "/days", &s, createDayBody{Date: date, Tasks: tasks}, &out)
	return out, err
}

// ListDays returns the user's days, newest date first.
func (c *Client) ListDays(ctx context.Context, s Session) ([]model.DaySummary, error) {
	var out []model.DaySummary
	err := c.do(ctx, http.MethodGet, "/days", &s, nil, &out)
	return out, err
}

// GetDay returns a day with its tasks and totals.
func (c *Client) GetDay(ctx context.Context, s Session, id string) (model.DayDetail, error) {
	var out model.DayDetail
	err := c.do(ctx, http.MethodGet, "/days/"+escape(id), &s, nil, &out)
	return out, err
}

// DeleteDay removes the day and its tasks and returns how many tasks went
// with it.
func (c *Client) DeleteDay(ctx context.Context, s Session, id string) (int64, error) {
	var out struct {
		DeletedTasks int64 `json:"deletedTasks"`
	}
	err := c.do(ctx, http.MethodDelete, "/days/"+escape(id), &s, nil, &out)
	return out.DeletedTasks, err
}

// CheckDailyLimit answers locally whether hours more would fit into day.
// Pass the id of a task being edited as excludeTaskID.
func CheckDailyLimit(day model.DayDetail, hours float64, excludeTaskID string) rules.LimitResult {
	src := rules.HoursFunc(func(_ context.Context, _, _, exclude string) ([]float64, error) {
		out := make([]float64, 0, len(day.Tasks))
		for _, t := range day.Tasks {
			if exclude != "" && t.ID == exclude {
				continue
			}
			out = append(out, t.Hours)
		}
		return out, nil
	})
	return rules.ValidateDailyHoursLimit(context.Background(), src, hours, day.ID, day.UserID, excludeTaskID)
}
