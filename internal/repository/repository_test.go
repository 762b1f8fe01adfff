package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/timetracker/internal/database/databasetest"
	"github.com/iliyamo/timetracker/internal/model"
	"github.com/iliyamo/timetracker/internal/rules"
	"github.com/iliyamo/timetracker/internal/utils"
)

func TestUserRepoCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepo(databasetest.Open(t))

	u, err := users.Create(ctx, "  Ann@Example.com ", "secret1", bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.NotEmpty(t, u.ID)
	assert.True(t, utils.VerifyPassword(u.PasswordHash, "secret1"))

	_, err = users.Create(ctx, "ANN@example.com", "other", bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrEmailExists)

	byEmail, err := users.GetByEmail(ctx, "ann@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, byID.Email)

	_, err = users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDayRepoUniquePerUserAndDate(t *testing.T) {
	ctx := context.Background()
	days := NewDayRepo(databasetest.Open(t))

	d := &model.Day{UserID: "u1", Date: "2024-01-01"}
	require.NoError(t, days.Create(ctx, d))
	assert.NotEmpty(t, d.ID)

	err := days.Create(ctx, &model.Day{UserID: "u1", Date: "2024-01-01"})
	assert.ErrorIs(t, err, ErrDayExists)

	// the same date is free for another user
	require.NoError(t, days.Create(ctx, &model.Day{UserID: "u2", Date: "2024-01-01"}))
}

func TestDayRepoOwnership(t *testing.T) {
	ctx := context.Background()
	days := NewDayRepo(databasetest.Open(t))

	d := &model.Day{UserID: "u1", Date: "2024-01-01"}
	require.NoError(t, days.Create(ctx, d))

	got, err := days.GetByIDAndUser(ctx, d.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", got.Date)

	_, err = days.GetByIDAndUser(ctx, d.ID, "u2")
	assert.ErrorIs(t, err, ErrDayNotFound)
	assert.ErrorIs(t, days.DeleteByIDAndUser(ctx, d.ID, "u2"), ErrDayNotFound)

	require.NoError(t, days.DeleteByIDAndUser(ctx, d.ID, "u1"))
	assert.ErrorIs(t, days.DeleteByIDAndUser(ctx, d.ID, "u1"), ErrDayNotFound)
}

func TestDayRepoListSummaries(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)
	days := NewDayRepo(db)
	tasks := NewTaskRepo(db)

	older := &model.Day{UserID: "u1", Date: "2024-01-01"}
	newer := &model.Day{UserID: "u1", Date: "2024-01-02"}
	other := &model.Day{UserID: "u2", Date: "2024-01-03"}
	for _, d := range []*model.Day{older, newer, other} {
		require.NoError(t, days.Create(ctx, d))
	}
	for _, h := range []float64{3, 4.5} {
		require.NoError(t, tasks.Create(ctx, &model.Task{Title: "t", Description: "d", Hours: h, DayID: older.ID, UserID: "u1"}))
	}

	list, err := days.ListSummariesByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, 0, list[0].TaskCount)
	assert.Equal(t, 0.0, list[0].TotalHours)
	assert.Equal(t, rules.StatusLow, list[0].Status)

	assert.Equal(t, older.ID, list[1].ID)
	assert.Equal(t, 2, list[1].TaskCount)
	assert.Equal(t, 7.5, list[1].TotalHours)
	assert.Equal(t, rules.StatusHigh, list[1].Status)

	empty, err := days.ListSummariesByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestTaskRepoCRUD(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	tick := base
	tasks := NewTaskRepo(databasetest.Open(t)).WithClock(func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	})

	first := &model.Task{Title: "first", Description: "d", Hours: 1, DayID: "d1", UserID: "u1"}
	second := &model.Task{Title: "second", Description: "d", Hours: 2, DayID: "d2", UserID: "u1"}
	foreign := &model.Task{Title: "foreign", Description: "d", Hours: 3, DayID: "d1", UserID: "u2"}
	for _, tk := range []*model.Task{first, second, foreign} {
		require.NoError(t, tasks.Create(ctx, tk))
	}

	all, err := tasks.ListByUser(ctx, "u1", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[0].Title, "newest first")
	assert.Equal(t, "first", all[1].Title)
	assert.True(t, all[1].CreatedAt.Equal(base.Add(time.Minute)))

	byDay, err := tasks.ListByUser(ctx, "u1", "d1")
	require.NoError(t, err)
	require.Len(t, byDay, 1)
	assert.Equal(t, first.ID, byDay[0].ID)

	_, err = tasks.GetByIDAndUser(ctx, foreign.ID, "u1")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	first.Title = "renamed"
	first.Hours = 1.5
	require.NoError(t, tasks.Update(ctx, first))
	got, err := tasks.GetByIDAndUser(ctx, first.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, 1.5, got.Hours)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	foreign.UserID = "u1"
	assert.ErrorIs(t, tasks.Update(ctx, foreign), ErrTaskNotFound)

	assert.ErrorIs(t, tasks.DeleteByIDAndUser(ctx, second.ID, "u2"), ErrTaskNotFound)
	require.NoError(t, tasks.DeleteByIDAndUser(ctx, second.ID, "u1"))
}

func TestTaskRepoHoursAndBulkDelete(t *testing.T) {
	ctx := context.Background()
	tasks := NewTaskRepo(databasetest.Open(t))

	a := &model.Task{Title: "a", Description: "d", Hours: 5, DayID: "d1", UserID: "u1"}
	b := &model.Task{Title: "b", Description: "d", Hours: 2, DayID: "d1", UserID: "u1"}
	c := &model.Task{Title: "c", Description: "d", Hours: 4, DayID: "d1", UserID: "u2"}
	for _, tk := range []*model.Task{a, b, c} {
		require.NoError(t, tasks.Create(ctx, tk))
	}

	hours, err := tasks.TaskHours(ctx, "d1", "u1", "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []float64{5, 2}, hours)

	hours, err = tasks.TaskHours(ctx, "d1", "u1", a.ID)
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, hours)

	res := rules.ValidateDailyHoursLimit(ctx, tasks, 6, "d1", "u1", a.ID)
	assert.True(t, res.IsValid)
	assert.Equal(t, 2.0, res.CurrentTotal)

	n, err := tasks.DeleteByDay(ctx, "d1", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = tasks.DeleteByDay(ctx, "d1", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	left, err := tasks.ListByUser(ctx, "u2", "d1")
	require.NoError(t, err)
	assert.Len(t, left, 1)
}
