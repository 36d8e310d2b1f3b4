package planner

import (
	"time"

	"github.com/coursepilot/backend/internal/models"
)

// NextSessionDate returns the date of the session following current.
// With weekends excluded the available days are Monday through Friday;
// the step between sessions spreads sessions across the available days
func NextSessionDate(current time.Time, sessionsPerWeek int, includeWeekends bool) time.Time {
	availableDays := 7
	if !includeWeekends {
		availableDays = 5
	}

	daysBetween := 1
	if sessionsPerWeek < availableDays {
		daysBetween = availableDays / sessionsPerWeek
	}

	next := current.AddDate(0, 0, daysBetween)
	for i := 0; i < 7; i++ {
		if includeWeekends || isWeekday(next) {
			return next
		}
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func isWeekday(date time.Time) bool {
	wd := date.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// ValidatePlanSettings checks plan settings against the allowed ranges
func ValidatePlanSettings(settings models.PlanSettings) error {
	if settings.SessionsPerWeek < 1 || settings.SessionsPerWeek > 14 {
		return &ValidationError{Field: "sessions_per_week", Message: "must be between 1 and 14"}
	}
	if settings.SessionLengthMinutes < 15 || settings.SessionLengthMinutes > 180 {
		return &ValidationError{Field: "session_length_minutes", Message: "must be between 15 and 180"}
	}
	if settings.StartDate.Before(time.Now().AddDate(0, 0, -1)) {
		return &ValidationError{Field: "start_date", Message: "cannot be more than one day in the past"}
	}
	if settings.AdvancedSettings != nil && settings.AdvancedSettings.Strategy != "" {
		if !settings.AdvancedSettings.Strategy.IsValid() {
			return &ValidationError{Field: "strategy", Message: "unknown distribution strategy"}
		}
	}
	return nil
}

// CourseDurationWeeks returns how many calendar weeks a plan spans
func CourseDurationWeeks(totalSessions, sessionsPerWeek int) int {
	if sessionsPerWeek <= 0 {
		return 0
	}
	return (totalSessions + sessionsPerWeek - 1) / sessionsPerWeek
}

// TotalStudyTime sums video durations plus a five minute buffer per video
func TotalStudyTime(durations []int64) int64 {
	var total int64
	for _, d := range durations {
		total += d + 5*60
	}
	return total
}
