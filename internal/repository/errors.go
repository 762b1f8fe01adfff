// Package repository contains the data access layer for users, days and
// tasks.  Day and task lookups always filter by the owning user id so that a
// record belonging to someone else is indistinguishable from a missing one.
package repository

import "errors"

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailExists is returned by UserRepo.Create for a taken email.
	ErrEmailExists = errors.New("email already exists")
	// ErrDayNotFound covers both missing days and days of another user.
	ErrDayNotFound = errors.New("day not found")
	// ErrDayExists is returned when the user already has a day for the date.
	ErrDayExists = errors.New("day already exists for date")
	// ErrTaskNotFound covers both missing tasks and tasks of another user.
	ErrTaskNotFound = errors.New("task not found")
)
