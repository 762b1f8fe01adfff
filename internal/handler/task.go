package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/timetracker/internal/config"
	"github.com/iliyamo/timetracker/internal/model"
	"github.com/iliyamo/timetracker/internal/queue"
	"github.com/iliyamo/timetracker/internal/repository"
	"github.com/iliyamo/timetracker/internal/rules"
	"github.com/iliyamo/timetracker/internal/service"
)

// TaskHandler serves /tasks.  Every write that changes hours goes through
// the daily cap check first.
type TaskHandler struct {
	Cfg    config.Config
	Days   *repository.DayRepo
	Tasks  *repository.TaskRepo
	Events service.Publisher
}

func NewTaskHandler(cfg config.Config, days *repository.DayRepo, tasks *repository.TaskRepo, events service.Publisher) *TaskHandler {
	if days == nil || tasks == nil {
		panic("nil repository passed to NewTaskHandler")
	}
	if events == nil {
		events = service.NopPublisher{}
	}
	return &TaskHandler{Cfg: cfg, Days: days, Tasks: tasks, Events: events}
}

type createTaskReq struct {
	taskInput
	DayID string `json:"dayId" validate:"required"`
}

// updateTaskReq distinguishes absent fields (nil / empty raw) from fields
// sent with a value.
type updateTaskReq struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Hours       json.RawMessage `json:"hours"`
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return unauthorized(c)
	}
	var req createTaskReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	hours := rules.ParseHours(req.Hours)
	res := rules.ValidateTaskInput(req.Title, req.Description, hours)
	errs := res.Errors
	if err := c.Validate(&req); err != nil {
		errs = append(errs, validationMessages(err)...)
	}
	if len(errs) > 0 {
		return fail(c, http.StatusBadRequest, "Validation failed", errs...)
	}

	dayID, ok := parseID(req.DayID)
	if !ok {
		return fail(c, http.StatusNotFound, "Day not found")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.Days.GetByIDAndUser(ctx, dayID, uid); err != nil {
		if errors.Is(err, repository.ErrDayNotFound) {
			return fail(c, http.StatusNotFound, "Day not found")
		}
		return serverError(c, h.Cfg, "Failed to create task", err)
	}

	limit := rules.ValidateDailyHoursLimit(ctx, h.Tasks, *hours, dayID, uid, "")
	if limit.Err != nil {
		return serverError(c, h.Cfg, "Unable to validate daily hours limit", limit.Err)
	}
	if !limit.IsValid {
		return limitExceeded(c, *hours, limit, false)
	}

	t := model.Task{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Hours:       *hours,
		DayID:       dayID,
		UserID:      uid,
	}
	if err := h.Tasks.Create(ctx, &t); err != nil {
		return serverError(c, h.Cfg, "Failed to create task", err)
	}
	publish(c, h.Events, queue.ActivityEvent{Kind: queue.TaskCreated, UserID: uid, DayID: dayID, TaskID: t.ID, Title: t.Title, Hours: t.Hours})
	return c.JSON(http.StatusCreated, t)
}

// ListTasks handles GET /tasks with an optional ?dayId= filter.
func (h *TaskHandler) ListTasks(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return unauthorized(c)
	}
	dayID := ""
	if raw := strings.TrimSpace(c.QueryParam("dayId")); raw != "" {
		if dayID, ok = parseID(raw); !ok {
			// no stored day can match
			return c.JSON(http.StatusOK, []model.Task{})
		}
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	tasks, err := h.Tasks.ListByUser(ctx, uid, dayID)
	if err != nil {
		return serverError(c, h.Cfg, "Failed to fetch tasks", err)
	}
	return c.JSON(http.StatusOK, tasks)
}

// ListTasksByDay handles GET /tasks/day/:dayId.  Unlike the query filter it
// answers 404 for an unknown day.
func (h *TaskHandler) ListTasksByDay(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return unauthorized(c)
	}
	dayID, ok := parseID(c.Param("dayId"))
	if !ok {
		return fail(c, http.StatusNotFound, "Day not found")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.Days.GetByIDAndUser(ctx, dayID, uid); err != nil {
		if errors.Is(err, repository.ErrDayNotFound) {
			return fail(c, http.StatusNotFound, "Day not found")
		}
		return serverError(c, h.Cfg, "Failed to fetch tasks", err)
	}
	tasks, err := h.Tasks.ListByUser(ctx, uid, dayID)
	if err != nil {
		return serverError(c, h.Cfg, "Failed to fetch tasks", err)
	}
	return c.JSON(http.StatusOK, tasks)
}

// GetTask handles GET /tasks/:id.
func (h *TaskHandler) GetTask(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return unauthorized(c)
	}
	t, err := h.loadTask(c, uid)
	if err != nil {
		return h.taskError(c, err, "Failed to fetch task")
	}
	return c.JSON(http.StatusOK, t)
}

// UpdateTask handles PUT /tasks/:id.  Supplied fields are merged over the
// stored task and the result is validated as a whole.  The cap check runs
// only when hours change and leaves the task's previous hours out.
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return unauthorized(c)
	}
	t, err := h.loadTask(c, uid)
	if err != nil {
		return h.taskError(c, err, "Failed to update task")
	}
	var req updateTaskReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	title, desc := t.Title, t.Description
	if req.Title != nil {
		title = *req.Title
	}
	if req.Description != nil {
		desc = *req.Description
	}
	hours := &t.Hours
	if len(req.Hours) > 0 {
		hours = rules.ParseHours(req.Hours)
	}
	if res := rules.ValidateTaskInput(title, desc, hours); !res.IsValid {
		return fail(c, http.StatusBadRequest, "Validation failed", res.Errors...)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if *hours != t.Hours {
		limit := rules.ValidateDailyHoursLimit(ctx, h.Tasks, *hours, t.DayID, uid, t.ID)
		if limit.Err != nil {
			return serverError(c, h.Cfg, "Unable to validate daily hours limit", limit.Err)
		}
		if !limit.IsValid {
			return limitExceeded(c, *hours, limit, true)
		}
	}

	t.Title = strings.TrimSpace(title)
	t.Description = strings.TrimSpace(desc)
	t.Hours = *hours
	if err := h.Tasks.Update(ctx, t); err != nil {
		return h.taskError(c, err, "Failed to update task")
	}
	publish(c, h.Events, queue.ActivityEvent{Kind: queue.TaskUpdated, UserID: uid, DayID: t.DayID, TaskID: t.ID, Title: t.Title, Hours: t.Hours})
	return c.JSON(http.StatusOK, t)
}

// DeleteTask handles DELETE /tasks/:id.
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return unauthorized(c)
	}
	t, err := h.loadTask(c, uid)
	if err == nil {
		ctx, cancel := requestContext(c)
		err = h.Tasks.DeleteByIDAndUser(ctx, t.ID, uid)
		cancel()
	}
	if err != nil {
		return h.taskError(c, err, "Failed to delete task")
	}
	publish(c, h.Events, queue.ActivityEvent{Kind: queue.TaskDeleted, UserID: uid, DayID: t.DayID, TaskID: t.ID, Title: t.Title, Hours: t.Hours})
	return c.JSON(http.StatusOK, echo.Map{"message": "Task deleted successfully"})
}

// DeleteTasksByDay handles DELETE /tasks/day/:dayId.  The day itself stays;
// an already empty day answers 200 with deletedCount 0.
func (h *TaskHandler) DeleteTasksByDay(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return unauthorized(c)
	}
	dayID, ok := parseID(c.Param("dayId"))
	if !ok {
		return fail(c, http.StatusNotFound, "Day not found")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.Days.GetByIDAndUser(ctx, dayID, uid); err != nil {
		if errors.Is(err, repository.ErrDayNotFound) {
			return fail(c, http.StatusNotFound, "Day not found")
		}
		return serverError(c, h.Cfg, "Failed to delete tasks", err)
	}
	n, err := h.Tasks.DeleteByDay(ctx, dayID, uid)
	if err != nil {
		return serverError(c, h.Cfg, "Failed to delete tasks", err)
	}
	if n > 0 {
		publish(c, h.Events, queue.ActivityEvent{Kind: queue.TasksCleared, UserID: uid, DayID: dayID, Count: n})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":      fmt.Sprintf("%d tasks deleted successfully", n),
		"deletedCount": n,
	})
}

// loadTask resolves :id to a task of uid.  Malformed ids report
// ErrTaskNotFound.
func (h *TaskHandler) loadTask(c echo.Context, uid string) (*model.Task, error) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return nil, repository.ErrTaskNotFound
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	return h.Tasks.GetByIDAndUser(ctx, id, uid)
}

func (h *TaskHandler) taskError(c echo.Context, err error, msg string) error {
	if errors.Is(err, repository.ErrTaskNotFound) {
		return fail(c, http.StatusNotFound, "Task not found")
	}
	return serverError(c, h.Cfg, msg, err)
}
