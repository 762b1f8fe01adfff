package rules

import "math"

// HoursStatus buckets a day's total relative to MaxDailyHours.
type HoursStatus string

const (
	StatusLow    HoursStatus = "low"
	StatusNormal HoursStatus = "normal"
	StatusHigh   HoursStatus = "high"
	StatusOver   HoursStatus = "over"
)

// GetHoursStatus uses strict thresholds, so a value sitting exactly on a
// boundary belongs to the lower band.
func GetHoursStatus(hours float64) HoursStatus {
	switch {
	case hours > MaxDailyHours:
		return StatusOver
	case hours > MaxDailyHours*0.875:
		return StatusHigh
	case hours > MaxDailyHours*0.625:
		return StatusNormal
	default:
		return StatusLow
	}
}

// Progress is the presentation view of a day's hours.
type Progress struct {
	Percentage     int         `json:"percentage"`
	Status         HoursStatus `json:"status"`
	RemainingHours float64     `json:"remainingHours"`
	IsOverLimit    bool        `json:"isOverLimit"`
}

func DailyHoursProgress(currentHours float64) Progress {
	pct := math.Min(currentHours/MaxDailyHours*100, 100)
	return Progress{
		Percentage:     int(math.Floor(pct + 0.5)),
		Status:         GetHoursStatus(currentHours),
		RemainingHours: remaining(currentHours),
		IsOverLimit:    currentHours > MaxDailyHours,
	}
}
