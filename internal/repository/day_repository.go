package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/timetracker/internal/model"
	"github.com/iliyamo/timetracker/internal/rules"
)

// DayRepo encapsulates all queries on the `days` table.
type DayRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewDayRepo(db *sql.DB) *DayRepo {
	return &DayRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// ExistsForDate reports whether the user already has a day for date.
func (r *DayRepo) ExistsForDate(ctx context.Context, userID, date string) (bool, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM days WHERE user_id = ? AND day_date = ? LIMIT 1", userID, date).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create inserts a day after checking that the user has none for the same
// date.  The check and the insert are separate statements; two concurrent
// requests for the same date can both pass the check.
func (r *DayRepo) Create(ctx context.Context, d *model.Day) error {
	exists, err := r.ExistsForDate(ctx, d.UserID, d.Date)
	if err != nil {
		return err
	}
	if exists {
		return ErrDayExists
	}
	d.ID = uuid.NewString()
	d.CreatedAt = r.now()
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO days (id, user_id, day_date, created_at) VALUES (?, ?, ?, ?)",
		d.ID, d.UserID, d.Date, d.CreatedAt)
	return err
}

// GetByIDAndUser fetches a day only if it belongs to userID.
func (r *DayRepo) GetByIDAndUser(ctx context.Context, id, userID string) (*model.Day, error) {
	const q = "SELECT id, user_id, day_date, created_at FROM days WHERE id = ? AND user_id = ?"
	var d model.Day
	if err := r.db.QueryRowContext(ctx, q, id, userID).Scan(&d.ID, &d.UserID, &d.Date, &d.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDayNotFound
		}
		return nil, err
	}
	return &d, nil
}

// ListSummariesByUser returns the user's days, newest date first, with the
// task count and hour total aggregated from the tasks table.
func (r *DayRepo) ListSummariesByUser(ctx context.Context, userID string) ([]model.DaySummary, error) {
	const q = `SELECT d.id, d.user_id, d.day_date, d.created_at,
	                  COUNT(t.id), COALESCE(SUM(t.hours), 0)
	           FROM days d
	           LEFT JOIN tasks t ON t.day_id = d.id AND t.user_id = d.user_id
	           WHERE d.user_id = ?
	           GROUP BY d.id, d.user_id, d.day_date, d.created_at
	           ORDER BY d.day_date DESC, d.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.DaySummary{}
	for rows.Next() {
		var s model.DaySummary
		var total float64
		if err := rows.Scan(&s.ID, &s.UserID, &s.Date, &s.CreatedAt, &s.TaskCount, &total); err != nil {
			return nil, err
		}
		s.TotalHours = rules.Round1(total)
		s.Status = rules.GetHoursStatus(total)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByIDAndUser removes the day row only.  Tasks of the day are removed
// separately with TaskRepo.DeleteByDay.
func (r *DayRepo) DeleteByIDAndUser(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM days WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDayNotFound
	}
	return nil
}
