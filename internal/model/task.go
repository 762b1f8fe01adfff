package model

import "time"

// Task is a unit of work with the hours spent on it.  It belongs to exactly
// one Day and one User and corresponds to a row in the `tasks` table.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Hours       float64   `json:"hours"`
	DayID       string    `json:"dayId"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
