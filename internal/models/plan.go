package models

import "time"

// DistributionStrategy selects how course content is spread across sessions
type DistributionStrategy string

const (
	StrategyModuleBased      DistributionStrategy = "module_based"
	StrategyTimeBased        DistributionStrategy = "time_based"
	StrategyHybrid           DistributionStrategy = "hybrid"
	StrategyDifficultyBased  DistributionStrategy = "difficulty_based"
	StrategySpacedRepetition DistributionStrategy = "spaced_repetition"
	StrategyAdaptive         DistributionStrategy = "adaptive"
)

// DefaultStrategy is used when no strategy is configured
const DefaultStrategy = StrategyHybrid

// IsValid reports whether the strategy is a known catalogue entry
func (s DistributionStrategy) IsValid() bool {
	switch s {
	case StrategyModuleBased, StrategyTimeBased, StrategyHybrid,
		StrategyDifficultyBased, StrategySpacedRepetition, StrategyAdaptive:
		return true
	}
	return false
}

// Plan is a generated study schedule for a course
type Plan struct {
	ID        string       `json:"id"`
	CourseID  string       `json:"course_id"`
	Settings  PlanSettings `json:"settings"`
	Items     []PlanItem   `json:"items"`
	CreatedAt int64        `json:"created_at"`
}

// PlanSettings configures plan generation
type PlanSettings struct {
	StartDate            time.Time                  `json:"start_date"`
	SessionsPerWeek      int                        `json:"sessions_per_week"`
	SessionLengthMinutes int                        `json:"session_length_minutes"`
	IncludeWeekends      bool                       `json:"include_weekends"`
	AdvancedSettings     *AdvancedSchedulerSettings `json:"advanced_settings,omitempty"`
}

// AdvancedSchedulerSettings tunes the strategy layer
type AdvancedSchedulerSettings struct {
	Strategy                DistributionStrategy `json:"strategy"`
	DifficultyAdaptation    bool                 `json:"difficulty_adaptation"`
	SpacedRepetitionEnabled bool                 `json:"spaced_repetition_enabled"`
	CognitiveLoadBalancing  bool                 `json:"cognitive_load_balancing"`
	UserExperienceLevel     DifficultyLevel      `json:"user_experience_level"`
	CustomIntervals         []int64              `json:"custom_intervals,omitempty"`
}

// PlanItem is one scheduled study session. Durations are in seconds
type PlanItem struct {
	Date                    time.Time `json:"date"`
	ModuleTitle             string    `json:"module_title"`
	SectionTitle            string    `json:"section_title"`
	VideoIndices            []int     `json:"video_indices"`
	Completed               bool      `json:"completed"`
	TotalDuration           int64     `json:"total_duration"`
	EstimatedCompletionTime int64     `json:"estimated_completion_time"`
	OverflowWarnings        []string  `json:"overflow_warnings,omitempty"`
}

// CalculateProgress returns the number of completed sessions, the total
// number of sessions, and the completion percentage
func (p *Plan) CalculateProgress() (int, int, float64) {
	total := len(p.Items)
	if total == 0 {
		return 0, 0, 0
	}

	completed := 0
	for _, item := range p.Items {
		if item.Completed {
			completed++
		}
	}

	percentage := float64(completed) / float64(total) * 100
	return completed, total, percentage
}

// CreatePlanRequest is the payload for generating a plan for a course
type CreatePlanRequest struct {
	CourseID string       `json:"course_id"`
	Settings PlanSettings `json:"settings"`
}
