package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/timetracker/internal/config"
	"github.com/iliyamo/timetracker/internal/database/databasetest"
	"github.com/iliyamo/timetracker/internal/model"
	"github.com/iliyamo/timetracker/internal/router"
)

func newServer(t *testing.T) *Client {
	t.Helper()
	cfg := config.Config{Env: "test", JWTSecret: "client-test-secret", TokenTTLHours: 1, BcryptCost: 4}
	srv := httptest.NewServer(router.New(cfg, databasetest.Open(t), router.Options{}))
	t.Cleanup(srv.Close)
	return New(srv.URL, srv.Client())
}

func ptr[T any](v T) *T { return &v }

func TestSessionFlow(t *testing.T) {
	ctx := context.Background()
	c := newServer(t)

	s, err := c.Signup(ctx, "kim@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, "kim@example.com", s.User.Email)

	_, err = c.Signup(ctx, "kim@example.com", "secret1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "User already exists", apiErr.Message)

	logged, err := c.Login(ctx, "kim@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, logged.User.ID)

	p, err := c.Profile(ctx, logged)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	_, err = c.Profile(ctx, Session{Token: "bogus"})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestDayAndTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	c := newServer(t)
	s, err := c.Signup(ctx, "life@example.com", "secret1")
	require.NoError(t, err)

	day, err := c.CreateDay(ctx, s, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", day.Date)

	first, err := c.CreateTask(ctx, s, day.ID, TaskInput{Title: "Write spec", Description: "Draft design doc", Hours: 3})
	require.NoError(t, err)

	_, err = c.CreateTask(ctx, s, day.ID, TaskInput{Title: "More", Description: "Too much", Hours: 6})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, 3.0, apiErr.CurrentTotal)
	assert.Equal(t, 9.0, apiErr.NewTotal)
	assert.Equal(t, 5.0, apiErr.RemainingHours)
	assert.Equal(t, 8.0, apiErr.MaxHours)

	detail, err := c.GetDay(ctx, s, day.ID)
	require.NoError(t, err)
	local := CheckDailyLimit(detail, 6, "")
	assert.False(t, local.IsValid)
	assert.Equal(t, apiErr.NewTotal, local.NewTotal)
	assert.Equal(t, apiErr.RemainingHours, local.RemainingHours)
	assert.True(t, CheckDailyLimit(detail, 8, first.ID).IsValid)

	updated, err := c.UpdateTask(ctx, s, first, TaskUpdate{Hours: ptr(7.5)})
	require.NoError(t, err)
	assert.Equal(t, 7.5, updated.Hours)
	assert.Equal(t, first.Title, updated.Title)

	tasks, err := c.ListTasks(ctx, s, day.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	byDay, err := c.ListTasksByDay(ctx, s, day.ID)
	require.NoError(t, err)
	assert.Equal(t, tasks, byDay)

	got, err := c.GetTask(ctx, s, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 7.5, got.Hours)

	days, err := c.ListDays(ctx, s)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, 7.5, days[0].TotalHours)
	assert.Equal(t, "high", string(days[0].Status))

	n, err := c.DeleteTasksByDay(ctx, s, day.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	err = c.DeleteTask(ctx, s, first.ID)
	assert.True(t, IsNotFound(err), "task was removed with its day's tasks")

	n, err = c.DeleteDay(ctx, s, day.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	_, err = c.GetDay(ctx, s, day.ID)
	assert.True(t, IsNotFound(err))
}

func TestCreateDayWithTasks(t *testing.T) {
	ctx := context.Background()
	c := newServer(t)
	s, err := c.Signup(ctx, "batch@example.com", "secret1")
	require.NoError(t, err)

	day, err := c.CreateDay(ctx, s, "2024-05-01",
		TaskInput{Title: "a", Description: "first", Hours: 2},
		TaskInput{Title: "b", Description: "second", Hours: 1.5})
	require.NoError(t, err)
	assert.Len(t, day.Tasks, 2)
	assert.Empty(t, day.TaskErrors)

	n, err := c.DeleteDay(ctx, s, day.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	tasks, err := c.ListTasks(ctx, s, day.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

// offline fails the test if a request reaches it.
func offline(t *testing.T) *Client {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusTeapot)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL, nil)
}

func TestLocalValidationSkipsNetwork(t *testing.T) {
	ctx := context.Background()
	c := offline(t)
	s := Session{Token: "unused"}

	_, err := c.CreateTask(ctx, s, "day", TaskInput{Title: "", Description: "d", Hours: 0})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"Task title is required", "Valid hours worked is required"}, vErr.Errors)

	_, err = c.CreateDay(ctx, s, "2024-01-01",
		TaskInput{Title: "a", Description: "d", Hours: 5},
		TaskInput{Title: "b", Description: "d", Hours: 4})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"Total hours (9) exceed the 8-hour work day limit"}, vErr.Errors)

	_, err = c.CreateDay(ctx, s, "2024-01-01", TaskInput{Title: "a", Description: "", Hours: 1})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"Task 1: Task description is required"}, vErr.Errors)

	current := model.Task{ID: "t1", Title: "a", Description: "d", Hours: 2}
	_, err = c.UpdateTask(ctx, s, current, TaskUpdate{Hours: ptr(0.05)})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"Minimum task duration is 0.1 hours (6 minutes)"}, vErr.Errors)
}

func TestAPIErrorWithoutJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL+"/", nil).ListDays(context.Background(), Session{Token: "x"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream down", apiErr.Message)
	assert.EqualError(t, err, "api: status 502: upstream down")
}

func TestCheckDailyLimitExcludesTask(t *testing.T) {
	day := model.DayDetail{
		Day:   model.Day{ID: "d1", UserID: "u1"},
		Tasks: []model.Task{{ID: "t1", Hours: 5}, {ID: "t2", Hours: 2}},
	}
	res := CheckDailyLimit(day, 6.5, "t1")
	assert.False(t, res.IsValid)
	assert.Equal(t, 2.0, res.CurrentTotal)
	assert.Equal(t, 8.5, res.NewTotal)

	assert.True(t, CheckDailyLimit(day, 6, "t1").IsValid)
	assert.True(t, CheckDailyLimit(day, 1, "").IsValid)
	assert.False(t, CheckDailyLimit(day, 1.5, "").IsValid)
}
