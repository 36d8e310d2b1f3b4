package planner

import (
	"testing"
	"time"

	"github.com/coursepilot/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandWithReviewsSchedule(t *testing.T) {
	seedDate := date(2027, time.March, 1)
	seed := models.PlanItem{
		Date:          seedDate,
		ModuleTitle:   "Foundations",
		SectionTitle:  "Variables",
		VideoIndices:  []int{0},
		TotalDuration: 600,
	}

	items := ExpandWithReviews([]models.PlanItem{seed}, nil, true)
	require.Len(t, items, 7)

	// Seed stays at the head after sorting
	assert.Equal(t, seedDate, items[0].Date)
	assert.Equal(t, "Variables", items[0].SectionTitle)

	expectedOffsets := []int{1, 3, 7, 14, 30, 90}
	for i, offset := range expectedOffsets {
		review := items[i+1]
		assert.Equal(t, seedDate.AddDate(0, 0, offset), review.Date)
		assert.Equal(t, "Review: Foundations", review.ModuleTitle)
		assert.Contains(t, review.SectionTitle, "Review: Variables")
		assert.Equal(t, int64(360), review.TotalDuration)
		assert.Equal(t, []int{0}, review.VideoIndices)
	}
}

func TestExpandWithReviewsMinimumDuration(t *testing.T) {
	seed := models.PlanItem{
		Date:          date(2027, time.March, 1),
		SectionTitle:  "Tiny",
		VideoIndices:  []int{2},
		TotalDuration: 30,
	}

	items := ExpandWithReviews([]models.PlanItem{seed}, []int64{1}, true)
	require.Len(t, items, 2)
	assert.Equal(t, int64(60), items[1].TotalDuration)
}

func TestExpandWithReviewsSkipsWeekends(t *testing.T) {
	friday := date(2027, time.January, 8)
	seed := models.PlanItem{
		Date:          friday,
		SectionTitle:  "Friday Session",
		VideoIndices:  []int{0},
		TotalDuration: 600,
	}

	items := ExpandWithReviews([]models.PlanItem{seed}, []int64{1}, false)
	require.Len(t, items, 2)

	// Saturday review moves to Monday
	assert.Equal(t, time.Monday, items[1].Date.Weekday())
	assert.Equal(t, date(2027, time.January, 11), items[1].Date)
}

func TestExpandWithReviewsNeverPrecedesSeed(t *testing.T) {
	seeds := []models.PlanItem{
		{Date: date(2027, time.March, 1), SectionTitle: "A", VideoIndices: []int{0}, TotalDuration: 600},
		{Date: date(2027, time.March, 3), SectionTitle: "B", VideoIndices: []int{1}, TotalDuration: 600},
	}

	items := ExpandWithReviews(seeds, nil, true)

	seedDates := map[int]time.Time{0: seeds[0].Date, 1: seeds[1].Date}
	for _, item := range items {
		if len(item.OverflowWarnings) > 0 {
			continue
		}
		seedDate := seedDates[item.VideoIndices[0]]
		assert.False(t, item.Date.Before(seedDate), "item %q precedes its seed", item.SectionTitle)
	}

	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].Date.Before(items[i-1].Date), "dates must be sorted")
	}
}
