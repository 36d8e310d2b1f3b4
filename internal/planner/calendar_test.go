package planner

import (
	"testing"
	"time"

	"github.com/coursepilot/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextSessionDateDailyCadence(t *testing.T) {
	monday := date(2027, time.January, 4)

	next := NextSessionDate(monday, 5, false)
	assert.Equal(t, date(2027, time.January, 5), next)
}

func TestNextSessionDateSkipsWeekend(t *testing.T) {
	friday := date(2027, time.January, 8)

	next := NextSessionDate(friday, 5, false)
	assert.Equal(t, time.Monday, next.Weekday())
	assert.Equal(t, date(2027, time.January, 11), next)
}

func TestNextSessionDateWeekendsAllowed(t *testing.T) {
	friday := date(2027, time.January, 8)

	next := NextSessionDate(friday, 7, true)
	assert.Equal(t, date(2027, time.January, 9), next)
}

func TestNextSessionDateSpreadsSparseSessions(t *testing.T) {
	monday := date(2027, time.January, 4)

	// 2 sessions over 5 available days steps by 2 days
	next := NextSessionDate(monday, 2, false)
	assert.Equal(t, date(2027, time.January, 6), next)
}

func TestTenSessionsStayOnWeekdays(t *testing.T) {
	current := date(2027, time.January, 4) // Monday
	dates := []time.Time{current}
	for i := 0; i < 9; i++ {
		current = NextSessionDate(current, 5, false)
		dates = append(dates, current)
	}

	for i, d := range dates {
		assert.NotEqual(t, time.Saturday, d.Weekday(), "session %d", i)
		assert.NotEqual(t, time.Sunday, d.Weekday(), "session %d", i)
		if i > 0 {
			assert.True(t, d.After(dates[i-1]), "dates must increase")
		}
	}

	// The second week spills into the following Monday
	assert.Equal(t, date(2027, time.January, 15), dates[9])
}

func TestValidatePlanSettings(t *testing.T) {
	valid := models.PlanSettings{
		StartDate:            time.Now().AddDate(0, 0, 7),
		SessionsPerWeek:      3,
		SessionLengthMinutes: 60,
	}
	require.NoError(t, ValidatePlanSettings(valid))

	tests := []struct {
		name   string
		mutate func(*models.PlanSettings)
		field  string
	}{
		{
			name:   "too many sessions",
			mutate: func(s *models.PlanSettings) { s.SessionsPerWeek = 15 },
			field:  "sessions_per_week",
		},
		{
			name:   "zero sessions",
			mutate: func(s *models.PlanSettings) { s.SessionsPerWeek = 0 },
			field:  "sessions_per_week",
		},
		{
			name:   "session too short",
			mutate: func(s *models.PlanSettings) { s.SessionLengthMinutes = 10 },
			field:  "session_length_minutes",
		},
		{
			name:   "session too long",
			mutate: func(s *models.PlanSettings) { s.SessionLengthMinutes = 240 },
			field:  "session_length_minutes",
		},
		{
			name:   "start date in the past",
			mutate: func(s *models.PlanSettings) { s.StartDate = time.Now().AddDate(0, 0, -3) },
			field:  "start_date",
		},
		{
			name: "unknown strategy",
			mutate: func(s *models.PlanSettings) {
				s.AdvancedSettings = &models.AdvancedSchedulerSettings{Strategy: "bogus"}
			},
			field: "strategy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := valid
			tt.mutate(&settings)

			err := ValidatePlanSettings(settings)
			require.Error(t, err)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestCourseDurationWeeks(t *testing.T) {
	assert.Equal(t, 4, CourseDurationWeeks(10, 3))
	assert.Equal(t, 2, CourseDurationWeeks(10, 5))
	assert.Equal(t, 0, CourseDurationWeeks(10, 0))
}

func TestTotalStudyTime(t *testing.T) {
	// Five minute note-taking buffer per video
	assert.Equal(t, int64(600+300+900+300), TotalStudyTime([]int64{600, 900}))
}
