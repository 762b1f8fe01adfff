package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/timetracker/internal/config"
	"github.com/iliyamo/timetracker/internal/middleware"
	"github.com/iliyamo/timetracker/internal/queue"
	"github.com/iliyamo/timetracker/internal/rules"
	"github.com/iliyamo/timetracker/internal/service"
)

// dbTimeout bounds every storage call made while serving a request.
const dbTimeout = 5 * time.Second

// errorBody is the shape of every 4xx/5xx response.  Error carries the
// internal error text and is only filled in dev.
type errorBody struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// limitErrorBody is returned when a task would push its day over the cap.
type limitErrorBody struct {
	Message        string   `json:"message"`
	Errors         []string `json:"errors"`
	CurrentTotal   float64  `json:"currentTotal"`
	NewTotal       float64  `json:"newTotal"`
	RemainingHours float64  `json:"remainingHours"`
	MaxHours       float64  `json:"maxHours"`
}

func fail(c echo.Context, status int, msg string, errs ...string) error {
	return c.JSON(status, errorBody{Message: msg, Errors: errs})
}

// serverError logs err and answers 500 with msg.
func serverError(c echo.Context, cfg config.Config, msg string, err error) error {
	c.Logger().Errorf("%s %s: %s: %v", c.Request().Method, c.Request().URL.Path, msg, err)
	body := errorBody{Message: msg}
	if cfg.Debug() && err != nil {
		body.Error = err.Error()
	}
	return c.JSON(http.StatusInternalServerError, body)
}

func limitExceeded(c echo.Context, requested float64, res rules.LimitResult, isUpdate bool) error {
	msg := rules.HoursLimitErrorMessage(requested, res.NewTotal, res.RemainingHours, isUpdate)
	return c.JSON(http.StatusBadRequest, limitErrorBody{
		Message:        msg,
		Errors:         []string{msg},
		CurrentTotal:   res.CurrentTotal,
		NewTotal:       res.NewTotal,
		RemainingHours: res.RemainingHours,
		MaxHours:       res.MaxHours,
	})
}

// getUserID returns the id JWTAuth placed on the context.  A missing id
// means the route was mounted without the auth middleware.
func getUserID(c echo.Context) (string, bool) {
	uid := middleware.UserID(c)
	return uid, uid != ""
}

func unauthorized(c echo.Context) error {
	return fail(c, http.StatusUnauthorized, "Token is not valid")
}

// parseID normalises a path id.  Anything that is not a UUID cannot name a
// stored record, so callers answer 404.
func parseID(raw string) (string, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// publish sends ev in the background.  The request never waits for the
// broker and a failed publish is only logged.
func publish(c echo.Context, p service.Publisher, ev queue.ActivityEvent) {
	if p == nil {
		return
	}
	if ev.OccurredAt == "" {
		ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	}
	logger := c.Logger()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.Publish(ctx, ev); err != nil {
			logger.Warnf("activity %s not published: %v", ev.Kind, err)
		}
	}()
}
