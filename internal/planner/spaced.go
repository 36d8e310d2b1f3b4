package planner

import (
	"fmt"
	"sort"

	"github.com/coursepilot/backend/internal/models"
)

// DefaultReviewIntervals are the day offsets after a learning session at
// which review sessions are scheduled
var DefaultReviewIntervals = []int64{1, 3, 7, 14, 30, 90}

// minReviewDuration keeps review sessions meaningful
const minReviewDuration int64 = 60

// reviewDurationFactor shrinks reviews relative to the first viewing
const reviewDurationFactor = 0.6

// ExpandWithReviews appends review items for every seed item at the given
// interval offsets and returns the combined list sorted by date. Seed
// items keep their relative order on equal dates. With weekends excluded
// a review landing on Saturday or Sunday moves to the next Monday
func ExpandWithReviews(seeds []models.PlanItem, intervals []int64, includeWeekends bool) []models.PlanItem {
	if len(intervals) == 0 {
		intervals = DefaultReviewIntervals
	}

	items := append([]models.PlanItem(nil), seeds...)
	for _, seed := range seeds {
		for reviewIdx, offset := range intervals {
			duration := int64(float64(seed.TotalDuration) * reviewDurationFactor)
			if duration < minReviewDuration {
				duration = minReviewDuration
			}
			reviewDate := seed.Date.AddDate(0, 0, int(offset))
			if !includeWeekends {
				for !isWeekday(reviewDate) {
					reviewDate = reviewDate.AddDate(0, 0, 1)
				}
			}
			items = append(items, models.PlanItem{
				Date:                    reviewDate,
				ModuleTitle:             "Review: " + seed.ModuleTitle,
				SectionTitle:            fmt.Sprintf("Review: %s (Review #%d)", seed.SectionTitle, reviewIdx+1),
				VideoIndices:            append([]int(nil), seed.VideoIndices...),
				TotalDuration:           duration,
				EstimatedCompletionTime: estimatedCompletion(duration),
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.Before(items[j].Date)
	})
	return items
}
