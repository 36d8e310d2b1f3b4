package planner

import (
	"fmt"
	"time"

	"github.com/coursepilot/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// estimatedCompletion adds a 25% buffer over raw watch time
func estimatedCompletion(duration int64) int64 {
	return duration + duration/4
}

// longSessionWarningMinutes flags unusually heavy mixed sessions
const longSessionWarningMinutes = 90

// clusteringPromotionThreshold upgrades auto-selected strategies when
// the structure quality is high enough to trust module boundaries
const clusteringPromotionThreshold = 0.7

// Scheduler generates study plans from a structured course
type Scheduler struct {
	logger *zap.Logger
}

// NewScheduler creates a plan scheduler
func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

// GeneratePlan validates the settings, resolves a distribution strategy,
// and produces a dated plan for the course
func (s *Scheduler) GeneratePlan(course *models.Course, settings models.PlanSettings) (*models.Plan, error) {
	if err := ValidatePlanSettings(settings); err != nil {
		return nil, err
	}
	if course.Structure == nil || len(course.Structure.Modules) == 0 {
		return nil, &ValidationError{Field: "course", Message: "course has no structure to schedule"}
	}

	strategy := s.resolveStrategy(course, settings)
	s.logger.Info("generating plan",
		zap.String("course_id", course.ID),
		zap.String("strategy", string(strategy)))

	capacity := NewCapacity(settings.SessionLengthMinutes)
	cursor := newDateCursor(settings)

	var items []models.PlanItem
	switch strategy {
	case models.StrategyModuleBased:
		items = s.planModuleBased(course.Structure, capacity, cursor)
	case models.StrategyTimeBased:
		items = s.planTimeBased(course.Structure, capacity, cursor)
	case models.StrategyHybrid:
		items = s.planHybrid(course.Structure, capacity, cursor)
	case models.StrategyDifficultyBased:
		items = s.planDifficultyBased(course.Structure, settings, cursor)
	case models.StrategySpacedRepetition:
		items = s.planSpacedRepetition(course.Structure, settings, cursor)
	case models.StrategyAdaptive:
		items = s.planAdaptive(course.Structure, settings, capacity, cursor)
	default:
		items = s.planHybrid(course.Structure, capacity, cursor)
	}

	return &models.Plan{
		ID:        uuid.New().String(),
		CourseID:  course.ID,
		Settings:  settings,
		Items:     items,
		CreatedAt: time.Now().Unix(),
	}, nil
}

// resolveStrategy picks the configured strategy or auto-selects one from
// the course shape. High-quality clustering upgrades time-based plans to
// hybrid so module boundaries are respected
func (s *Scheduler) resolveStrategy(course *models.Course, settings models.PlanSettings) models.DistributionStrategy {
	if adv := settings.AdvancedSettings; adv != nil && adv.Strategy.IsValid() {
		return adv.Strategy
	}

	structure := course.Structure
	totalVideos := structure.TotalVideos()

	var selected models.DistributionStrategy
	switch {
	case totalVideos <= settings.SessionsPerWeek*2:
		selected = models.StrategyModuleBased
	case hasBalancedDurations(structure):
		selected = models.StrategyHybrid
	default:
		selected = models.StrategyTimeBased
	}

	if selected == models.StrategyTimeBased && structure.ClusteringMetadata != nil &&
		structure.ClusteringMetadata.QualityScore > clusteringPromotionThreshold {
		selected = models.StrategyHybrid
	}
	return selected
}

// hasBalancedDurations reports whether module durations stay within a
// factor of two of each other
func hasBalancedDurations(structure *models.CourseStructure) bool {
	var minDur, maxDur int64 = -1, 0
	for _, module := range structure.Modules {
		if module.TotalDuration > maxDur {
			maxDur = module.TotalDuration
		}
		if minDur < 0 || module.TotalDuration < minDur {
			minDur = module.TotalDuration
		}
	}
	return minDur > 0 && maxDur <= minDur*2
}

func (s *Scheduler) planModuleBased(structure *models.CourseStructure, capacity Capacity, cursor *dateCursor) []models.PlanItem {
	var items []models.PlanItem
	for _, module := range structure.Modules {
		for _, session := range PackAll(moduleQueue(module), capacity) {
			items = append(items, buildPlanItem(cursor.next(), module.Title, groupedSessionTitle(session), session))
		}
	}
	return items
}

func (s *Scheduler) planTimeBased(structure *models.CourseStructure, capacity Capacity, cursor *dateCursor) []models.PlanItem {
	queue := flattenQueue(structure)
	var items []models.PlanItem
	for _, session := range PackAll(queue, capacity) {
		item := buildPlanItem(cursor.next(), mixedModuleTitle(session), mixedSessionTitle(session), session)
		if session.TotalDuration > longSessionWarningMinutes*60 {
			item.OverflowWarnings = append(item.OverflowWarnings,
				fmt.Sprintf("Long session: %.1f min of content", float64(session.TotalDuration)/60))
		}
		items = append(items, item)
	}
	return items
}

func (s *Scheduler) planHybrid(structure *models.CourseStructure, capacity Capacity, cursor *dateCursor) []models.PlanItem {
	var items []models.PlanItem
	for _, module := range structure.Modules {
		sessions := PackAll(moduleQueue(module), capacity)
		for _, session := range sessions {
			title := hybridSessionTitle(module, session, len(sessions))
			items = append(items, buildPlanItem(cursor.next(), module.Title, title, session))
		}
	}
	return items
}

// planDifficultyBased walks sections from easiest to hardest phase. Each
// phase tightens the packing buffer, the expert phase gets one video per
// session, and later phases start after an extra rest day
func (s *Scheduler) planDifficultyBased(structure *models.CourseStructure, settings models.PlanSettings, cursor *dateCursor) []models.PlanItem {
	phaseBuffers := []float64{0.7, 0.8, 0.85, 0.9}

	phases := make([][]VideoItem, 4)
	for _, module := range structure.Modules {
		for _, section := range module.Sections {
			level := ClassifyDifficulty(section.Title, section.Duration)
			phases[level.Phase()-1] = append(phases[level.Phase()-1], VideoItem{
				Index:       section.VideoIndex,
				Title:       section.Title,
				ModuleTitle: module.Title,
				Duration:    section.Duration,
			})
		}
	}

	strict := int64(settings.SessionLengthMinutes) * 60
	var items []models.PlanItem
	for phase, queue := range phases {
		if len(queue) == 0 {
			continue
		}
		if phase >= 2 {
			cursor.restDay()
		}

		capacity := Capacity{
			StrictLimit:    strict,
			EffectiveLimit: max(int64(float64(strict)*phaseBuffers[phase]), minEffectiveLimit),
		}
		onePerSession := phase == 3

		for len(queue) > 0 {
			var session Session
			if onePerSession {
				session = Session{Items: queue[:1], TotalDuration: queue[0].Duration}
				if capacity.ExceedsEffective(queue[0].Duration) {
					session.Warnings = []string{overflowWarning(queue[0], capacity)}
				}
				queue = queue[1:]
			} else {
				session, queue = PackNextSession(queue, capacity)
			}
			items = append(items, buildPlanItem(cursor.next(), session.Items[0].ModuleTitle, groupedSessionTitle(session), session))
		}
	}
	return items
}

// planSpacedRepetition schedules every section once at session cadence,
// then appends the review passes
func (s *Scheduler) planSpacedRepetition(structure *models.CourseStructure, settings models.PlanSettings, cursor *dateCursor) []models.PlanItem {
	var seeds []models.PlanItem
	for _, module := range structure.Modules {
		for _, section := range module.Sections {
			session := Session{
				Items: []VideoItem{{
					Index:       section.VideoIndex,
					Title:       section.Title,
					ModuleTitle: module.Title,
					Duration:    section.Duration,
				}},
				TotalDuration: section.Duration,
			}
			seeds = append(seeds, buildPlanItem(cursor.next(), module.Title, section.Title, session))
		}
	}

	intervals := DefaultReviewIntervals
	if adv := settings.AdvancedSettings; adv != nil && len(adv.CustomIntervals) > 0 {
		intervals = adv.CustomIntervals
	}
	items := ExpandWithReviews(seeds, intervals, settings.IncludeWeekends)

	// Reviews shrink to 60% of the first viewing, so seeds and reviews
	// alike can still exceed the limit and must be flagged
	capacity := NewCapacity(settings.SessionLengthMinutes)
	for i, item := range items {
		if capacity.ExceedsEffective(item.TotalDuration) {
			items[i].OverflowWarnings = []string{overflowWarning(
				VideoItem{Title: item.SectionTitle, Duration: item.TotalDuration}, capacity)}
		}
	}
	return items
}

func buildPlanItem(date time.Time, moduleTitle, sessionTitle string, session Session) models.PlanItem {
	indices := make([]int, 0, len(session.Items))
	for _, item := range session.Items {
		indices = append(indices, item.Index)
	}
	return models.PlanItem{
		Date:                    date,
		ModuleTitle:             moduleTitle,
		SectionTitle:            sessionTitle,
		VideoIndices:            indices,
		TotalDuration:           session.TotalDuration,
		EstimatedCompletionTime: estimatedCompletion(session.TotalDuration),
		OverflowWarnings:        session.Warnings,
	}
}

func moduleQueue(module models.Module) []VideoItem {
	queue := make([]VideoItem, 0, len(module.Sections))
	for _, section := range module.Sections {
		queue = append(queue, VideoItem{
			Index:       section.VideoIndex,
			Title:       section.Title,
			ModuleTitle: module.Title,
			Duration:    section.Duration,
		})
	}
	return queue
}

func flattenQueue(structure *models.CourseStructure) []VideoItem {
	var queue []VideoItem
	for _, module := range structure.Modules {
		queue = append(queue, moduleQueue(module)...)
	}
	return queue
}

func groupedSessionTitle(session Session) string {
	if len(session.Items) == 1 {
		return session.Items[0].Title
	}
	return fmt.Sprintf("%s (+%d more)", session.Items[0].Title, len(session.Items)-1)
}

func mixedSessionTitle(session Session) string {
	if len(session.Items) == 1 {
		return session.Items[0].Title
	}
	return fmt.Sprintf("Mixed Content (%d videos)", len(session.Items))
}

func mixedModuleTitle(session Session) string {
	first := session.Items[0].ModuleTitle
	for _, item := range session.Items[1:] {
		if item.ModuleTitle != first {
			return "Mixed Content"
		}
	}
	return first
}

// hybridSessionTitle names a session by its position within the module
func hybridSessionTitle(module models.Module, session Session, sessionCount int) string {
	title := hybridPositionTitle(module, session, sessionCount)
	if len(session.Warnings) > 0 {
		title += " (Extended Session)"
	}
	return title
}

func hybridPositionTitle(module models.Module, session Session, sessionCount int) string {
	if sessionCount == 1 {
		return "Complete Module"
	}
	first := sectionPosition(module, session.Items[0].Index)
	if len(session.Items) == 1 {
		return fmt.Sprintf("Section %d", first)
	}
	last := sectionPosition(module, session.Items[len(session.Items)-1].Index)
	return fmt.Sprintf("Sections %d-%d", first, last)
}

// sectionPosition is the 1-based position of a video within its module
func sectionPosition(module models.Module, videoIndex int) int {
	for i, section := range module.Sections {
		if section.VideoIndex == videoIndex {
			return i + 1
		}
	}
	return 1
}

// dateCursor walks session dates forward, honouring the weekend policy
type dateCursor struct {
	current         time.Time
	sessionsPerWeek int
	includeWeekends bool
	started         bool
}

func newDateCursor(settings models.PlanSettings) *dateCursor {
	start := settings.StartDate
	if !settings.IncludeWeekends {
		for !isWeekday(start) {
			start = start.AddDate(0, 0, 1)
		}
	}
	return &dateCursor{
		current:         start,
		sessionsPerWeek: settings.SessionsPerWeek,
		includeWeekends: settings.IncludeWeekends,
	}
}

// next returns the date for the upcoming session and advances the cursor
func (c *dateCursor) next() time.Time {
	if !c.started {
		c.started = true
		return c.current
	}
	c.current = NextSessionDate(c.current, c.sessionsPerWeek, c.includeWeekends)
	return c.current
}

// restDay pushes the next session at least one extra day out
func (c *dateCursor) restDay() {
	if !c.started {
		return
	}
	c.current = c.current.AddDate(0, 0, 1)
	if !c.includeWeekends {
		for !isWeekday(c.current) {
			c.current = c.current.AddDate(0, 0, 1)
		}
	}
}
