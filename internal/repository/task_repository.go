package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/timetracker/internal/model"
)

const taskColumns = "id, title, description, hours, day_id, user_id, created_at, updated_at"

// TaskRepo encapsulates all queries on the `tasks` table.  It also serves
// as the rules.TaskHoursSource for the daily cap check.
type TaskRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the time source used for created_at/updated_at.
func (r *TaskRepo) WithClock(now func() time.Time) *TaskRepo {
	r.now = now
	return r
}

// Create inserts the task, filling ID and timestamps.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) error {
	t.ID = uuid.NewString()
	t.CreatedAt = r.now()
	t.UpdatedAt = t.CreatedAt
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO tasks ("+taskColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.Title, t.Description, t.Hours, t.DayID, t.UserID, t.CreatedAt, t.UpdatedAt)
	return err
}

// GetByIDAndUser fetches a task only if it belongs to userID.
func (r *TaskRepo) GetByIDAndUser(ctx context.Context, id, userID string) (*model.Task, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ? AND user_id = ?", id, userID)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListByUser returns the user's tasks, newest first.  A non-empty dayID
// restricts the result to that day.
func (r *TaskRepo) ListByUser(ctx context.Context, userID, dayID string) ([]model.Task, error) {
	q := "SELECT " + taskColumns + " FROM tasks WHERE user_id = ?"
	args := []any{userID}
	if dayID != "" {
		q += " AND day_id = ?"
		args = append(args, dayID)
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update writes title, description and hours of t and refreshes UpdatedAt.
func (r *TaskRepo) Update(ctx context.Context, t *model.Task) error {
	updated := r.now()
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, hours = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		t.Title, t.Description, t.Hours, updated, t.ID, t.UserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTaskNotFound
	}
	t.UpdatedAt = updated
	return nil
}

// DeleteByIDAndUser removes a single task of the user.
func (r *TaskRepo) DeleteByIDAndUser(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// DeleteByDay removes every task of the user's day and returns how many
// rows were deleted.
func (r *TaskRepo) DeleteByDay(ctx context.Context, dayID, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE day_id = ? AND user_id = ?", dayID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// TaskHours returns the hours of the day's tasks, skipping excludeTaskID.
func (r *TaskRepo) TaskHours(ctx context.Context, dayID, userID, excludeTaskID string) ([]float64, error) {
	q := "SELECT hours FROM tasks WHERE day_id = ? AND user_id = ?"
	args := []any{dayID, userID}
	if excludeTaskID != "" {
		q += " AND id <> ?"
		args = append(args, excludeTaskID)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var h float64
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(s rowScanner) (*model.Task, error) {
	var t model.Task
	if err := s.Scan(&t.ID, &t.Title, &t.Description, &t.Hours, &t.DayID, &t.UserID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
