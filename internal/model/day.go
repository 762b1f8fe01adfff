package model

import (
	"time"

	"github.com/iliyamo/timetracker/internal/rules"
)

// Day is one calendar date of one user and the container for that date's
// tasks.  A user has at most one Day per Date.  This struct corresponds to a
// row in the `days` table.
//
// Fields:
//
//	ID        – UUID primary key.
//	UserID    – owner of the day.
//	Date      – calendar date formatted as 2006-01-02.
//	CreatedAt – timestamp when the day was created.
type Day struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}

// DaySummary is a Day with aggregates computed from its tasks at read time.
type DaySummary struct {
	Day
	TaskCount  int               `json:"taskCount"`
	TotalHours float64           `json:"totalHours"`
	Status     rules.HoursStatus `json:"status"`
}

// DayDetail is a Day together with its tasks.
type DayDetail struct {
	Day
	Tasks      []Task         `json:"tasks"`
	TaskCount  int            `json:"taskCount"`
	TotalHours float64        `json:"totalHours"`
	Progress   rules.Progress `json:"progress"`
}

// NewDayDetail derives the aggregates of a day from its tasks.
func NewDayDetail(d Day, tasks []Task) DayDetail {
	if tasks == nil {
		tasks = []Task{}
	}
	hours := make([]float64, 0, len(tasks))
	for _, t := range tasks {
		hours = append(hours, t.Hours)
	}
	total := rules.CalculateTotalHours(hours)
	return DayDetail{
		Day:        d,
		Tasks:      tasks,
		TaskCount:  len(tasks),
		TotalHours: rules.Round1(total),
		Progress:   rules.DailyHoursProgress(total),
	}
}
