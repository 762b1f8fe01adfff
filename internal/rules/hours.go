// Package rules holds the task and daily-hours validation rules.  The
// package is pure so the server and the API client link the same code and
// reach the same accept/reject decisions.
package rules

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	MaxDailyHours        = 8.0
	MinTaskHours         = 0.1
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// totals within this distance of the cap are treated as equal to it
const capTolerance = 1e-9

// ErrLimitUnavailable is reported when the existing hours of a day could
// not be loaded.
var ErrLimitUnavailable = errors.New("unable to validate daily hours limit")

// InputResult is the outcome of ValidateTaskInput.  Errors holds every
// failed rule, not only the first one.
type InputResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// ValidateTaskInput checks the user supplied task fields.  A nil hours value
// means the field was absent; NaN means it was present but not numeric.
func ValidateTaskInput(title, description string, hours *float64) InputResult {
	errs := []string{}

	t := strings.TrimSpace(title)
	if t == "" {
		errs = append(errs, "Task title is required")
	}
	if utf8.RuneCountInString(t) > MaxTitleLength {
		errs = append(errs, fmt.Sprintf("Task title cannot exceed %d characters", MaxTitleLength))
	}

	d := strings.TrimSpace(description)
	if d == "" {
		errs = append(errs, "Task description is required")
	}
	if utf8.RuneCountInString(d) > MaxDescriptionLength {
		errs = append(errs, fmt.Sprintf("Task description cannot exceed %d characters", MaxDescriptionLength))
	}

	if hours == nil || math.IsNaN(*hours) || *hours <= 0 {
		errs = append(errs, "Valid hours worked is required")
	}
	if hours != nil {
		h := *hours
		if h > MaxDailyHours {
			errs = append(errs, fmt.Sprintf("Hours cannot exceed %s for a single task", FormatHours(MaxDailyHours)))
		}
		if h > 0 && h < MinTaskHours {
			errs = append(errs, "Minimum task duration is 0.1 hours (6 minutes)")
		}
	}

	return InputResult{IsValid: len(errs) == 0, Errors: errs}
}

// ParseHours converts a raw JSON value into the optional number used by
// ValidateTaskInput.  null and empty strings count as absent, numeric
// strings are accepted and anything else becomes NaN.
func ParseHours(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(v, 0) {
			return &v
		}
	}
	nan := math.NaN()
	return &nan
}

// TaskHoursSource returns the hours of every task of a day owned by userID,
// skipping excludeTaskID when it is not empty.
type TaskHoursSource interface {
	TaskHours(ctx context.Context, dayID, userID, excludeTaskID string) ([]float64, error)
}

// HoursFunc adapts a plain function to TaskHoursSource.
type HoursFunc func(ctx context.Context, dayID, userID, excludeTaskID string) ([]float64, error)

func (f HoursFunc) TaskHours(ctx context.Context, dayID, userID, excludeTaskID string) ([]float64, error) {
	return f(ctx, dayID, userID, excludeTaskID)
}

// LimitResult describes whether newHours fits into a day.  All numbers are
// rounded to one decimal.
type LimitResult struct {
	IsValid        bool    `json:"isValid"`
	CurrentTotal   float64 `json:"currentTotal"`
	NewTotal       float64 `json:"newTotal"`
	RemainingHours float64 `json:"remainingHours"`
	MaxHours       float64 `json:"maxHours"`
	Err            error   `json:"-"`
}

// ValidateDailyHoursLimit sums the existing hours of the day and checks that
// adding newHours stays within MaxDailyHours.  When updating a task pass its
// id as excludeTaskID so its previous value is not counted twice.
func ValidateDailyHoursLimit(ctx context.Context, src TaskHoursSource, newHours float64, dayID, userID, excludeTaskID string) LimitResult {
	existing, err := src.TaskHours(ctx, dayID, userID, excludeTaskID)
	if err != nil {
		return LimitResult{IsValid: false, MaxHours: MaxDailyHours, Err: fmt.Errorf("%w: %v", ErrLimitUnavailable, err)}
	}
	current := CalculateTotalHours(existing)
	total := current + newHours
	return LimitResult{
		IsValid:        total <= MaxDailyHours+capTolerance,
		CurrentTotal:   Round1(current),
		NewTotal:       Round1(total),
		RemainingHours: remaining(current),
		MaxHours:       MaxDailyHours,
	}
}

// HoursLimitErrorMessage renders the message shown when a task would push a
// day over the cap.
func HoursLimitErrorMessage(requested, newTotal, remainingHours float64, isUpdate bool) string {
	action := "add"
	if isUpdate {
		action = "update to"
	}
	return fmt.Sprintf("Cannot %s %s hours. Total would be %s hours, exceeding the %s-hour work day limit. You have %s hours remaining.",
		action, FormatHours(requested), FormatHours(newTotal), FormatHours(MaxDailyHours), FormatHours(remainingHours))
}

// CalculateTotalHours sums a list of task hours.
func CalculateTotalHours(hours []float64) float64 {
	total := 0.0
	for _, h := range hours {
		total += h
	}
	return total
}

// MultiResult is the outcome of ValidateMultipleTasks.
type MultiResult struct {
	IsValid        bool    `json:"isValid"`
	TotalHours     float64 `json:"totalHours"`
	MaxHours       float64 `json:"maxHours"`
	RemainingHours float64 `json:"remainingHours"`
	TasksCount     int     `json:"tasksCount"`
}

// ValidateMultipleTasks checks a batch of tasks destined for one empty day.
func ValidateMultipleTasks(hours []float64) MultiResult {
	total := CalculateTotalHours(hours)
	return MultiResult{
		IsValid:        total <= MaxDailyHours+capTolerance,
		TotalHours:     Round1(total),
		MaxHours:       MaxDailyHours,
		RemainingHours: remaining(total),
		TasksCount:     len(hours),
	}
}

// Round1 rounds to one decimal place, halves rounding up.
func Round1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

// FormatHours prints hours without trailing zeros (3, 2.5, 0.1).
func FormatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func remaining(used float64) float64 {
	return math.Max(0, Round1(MaxDailyHours-used))
}
