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

// DayHandler serves /days.  Deleting a day also removes its tasks, so it
// needs both repositories.
type DayHandler struct {
	Cfg    config.Config
	Days   *repository.DayRepo
	Tasks  *repository.TaskRepo
	Events service.Publisher
}

func NewDayHandler(cfg config.Config, days *repository.DayRepo, tasks *repository.TaskRepo, events service.Publisher) *DayHandler {
	if days == nil || tasks == nil {
		panic("nil repository passed to NewDayHandler")
	}
	if events == nil {
		events = service.NopPublisher{}
	}
	return &DayHandler{Cfg: cfg, Days: days, Tasks: tasks, Events: events}
}

// taskInput is a task as sent by clients, either embedded in a new day or
// on its own.  Hours stays raw so that strings and nulls reach the rules.
type taskInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Hours       json.RawMessage `json:"hours"`
}

type createDayReq struct {
	Date  string      `json:"date" validate:"required,datetime=2006-01-02"`
	Tasks []taskInput `json:"tasks"`
}

type createDayResp struct {
	model.Day
	Tasks      []model.Task `json:"tasks"`
	TaskErrors []string     `json:"taskErrors,omitempty"`
}

// CreateDay handles POST /days.  Embedded tasks are all checked before the
// day is written; a storage failure on one of them afterwards is reported
// in taskErrors and does not undo the day or the other tasks.
func (h *DayHandler) CreateDay(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return unauthorized(c)
	}
	var req createDayReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	hours := make([]float64, 0, len(req.Tasks))
	var errs []string
	for i, t := range req.Tasks {
		hp := rules.ParseHours(t.Hours)
		res := rules.ValidateTaskInput(t.Title, t.Description, hp)
		for _, e := range res.Errors {
			errs = append(errs, fmt.Sprintf("Task %d: %s", i+1, e))
		}
		if res.IsValid {
			hours = append(hours, *hp)
		}
	}
	if len(errs) > 0 {
		return fail(c, http.StatusBadRequest, "Validation failed", errs...)
	}
	if batch := rules.ValidateMultipleTasks(hours); !batch.IsValid {
		msg := fmt.Sprintf("Total hours (%s) exceed the %s-hour work day limit",
			rules.FormatHours(batch.TotalHours), rules.FormatHours(rules.MaxDailyHours))
		return c.JSON(http.StatusBadRequest, limitErrorBody{
			Message:        msg,
			Errors:         []string{msg},
			CurrentTotal:   0,
			NewTotal:       batch.TotalHours,
			RemainingHours: rules.MaxDailyHours,
			MaxHours:       batch.MaxHours,
		})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	day := model.Day{UserID: uid, Date: req.Date}
	if err := h.Days.Create(ctx, &day); err != nil {
		if errors.Is(err, repository.ErrDayExists) {
			return fail(c, http.StatusBadRequest, "Day already exists for this date")
		}
		return serverError(c, h.Cfg, "Failed to create day", err)
	}
	publish(c, h.Events, queue.ActivityEvent{Kind: queue.DayCreated, UserID: uid, DayID: day.ID, Date: day.Date})

	if len(req.Tasks) == 0 {
		return c.JSON(http.StatusCreated, day)
	}

	resp := createDayResp{Day: day, Tasks: []model.Task{}}
	for i, in := range req.Tasks {
		t := model.Task{
			Title:       strings.TrimSpace(in.Title),
			Description: strings.TrimSpace(in.Description),
			Hours:       hours[i],
			DayID:       day.ID,
			UserID:      uid,
		}
		if err := h.Tasks.Create(ctx, &t); err != nil {
			c.Logger().Errorf("create embedded task %d of day %s: %v", i+1, day.ID, err)
			resp.TaskErrors = append(resp.TaskErrors, fmt.Sprintf("Task %d: Failed to create task", i+1))
			continue
		}
		resp.Tasks = append(resp.Tasks, t)
		publish(c, h.Events, queue.ActivityEvent{Kind: queue.TaskCreated, UserID: uid, DayID: day.ID, TaskID: t.ID, Title: t.Title, Hours: t.Hours})
	}
	return c.JSON(http.StatusCreated, resp)
}

// ListDays handles GET /days.
func (h *DayHandler) ListDays(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	days, err := h.Days.ListSummariesByUser(ctx, uid)
	if err != nil {
		return serverError(c, h.Cfg, "Failed to fetch days", err)
	}
	return c.JSON(http.StatusOK, days)
}

// GetDay handles GET /days/:id and returns the day with its tasks.
func (h *DayHandler) GetDay(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, http.StatusNotFound, "Day not found")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	day, err := h.Days.GetByIDAndUser(ctx, id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrDayNotFound) {
			return fail(c, http.StatusNotFound, "Day not found")
		}
		return serverError(c, h.Cfg, "Failed to fetch day", err)
	}
	tasks, err := h.Tasks.ListByUser(ctx, uid, day.ID)
	if err != nil {
		return serverError(c, h.Cfg, "Failed to fetch day", err)
	}
	return c.JSON(http.StatusOK, model.NewDayDetail(*day, tasks))
}

// DeleteDay handles DELETE /days/:id.  The day row goes first, then its
// tasks; the two deletes are not atomic.
func (h *DayHandler) DeleteDay(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, http.StatusNotFound, "Day not found")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	day, err := h.Days.GetByIDAndUser(ctx, id, uid)
	if err == nil {
		err = h.Days.DeleteByIDAndUser(ctx, day.ID, uid)
	}
	if err != nil {
		if errors.Is(err, repository.ErrDayNotFound) {
			return fail(c, http.StatusNotFound, "Day not found")
		}
		return serverError(c, h.Cfg, "Failed to delete day", err)
	}
	n, err := h.Tasks.DeleteByDay(ctx, day.ID, uid)
	if err != nil {
		return serverError(c, h.Cfg, "Day deleted but its tasks could not be removed", err)
	}
	publish(c, h.Events, queue.ActivityEvent{Kind: queue.DayDeleted, UserID: uid, DayID: day.ID, Date: day.Date, Count: n})
	return c.JSON(http.StatusOK, echo.Map{"message": "Day and associated tasks deleted successfully", "deletedTasks": n})
}
