package planner

import (
	"sort"

	"github.com/coursepilot/backend/internal/models"
	"go.uber.org/zap"
)

// Quality thresholds for the adaptive strategy branches
const (
	adaptiveTopicAwareThreshold = 0.8
	adaptiveHybridThreshold     = 0.6
)

// planAdaptive branches on the clustering quality score: trustworthy
// topic clusters get a topic-aware module plan, medium quality falls back
// to hybrid, and poor clusters get a duration-optimized schedule that
// ignores module boundaries
func (s *Scheduler) planAdaptive(structure *models.CourseStructure, settings models.PlanSettings, capacity Capacity, cursor *dateCursor) []models.PlanItem {
	quality := 0.0
	if structure.ClusteringMetadata != nil {
		quality = structure.ClusteringMetadata.QualityScore
	}
	s.logger.Debug("adaptive strategy branch", zap.Float64("quality", quality))

	switch {
	case quality > adaptiveTopicAwareThreshold:
		return s.planTopicAware(structure, capacity, cursor)
	case quality > adaptiveHybridThreshold:
		return s.planHybrid(structure, capacity, cursor)
	default:
		return s.planDurationOptimized(structure, capacity, cursor)
	}
}

// planTopicAware runs a module-based plan over modules reordered from
// easiest to hardest, using the difficulty labels the clustering pass
// attached
func (s *Scheduler) planTopicAware(structure *models.CourseStructure, capacity Capacity, cursor *dateCursor) []models.PlanItem {
	ordered := append([]models.Module(nil), structure.Modules...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return modulePhase(ordered[i]) < modulePhase(ordered[j])
	})

	var items []models.PlanItem
	for _, module := range ordered {
		for _, session := range PackAll(moduleQueue(module), capacity) {
			items = append(items, buildPlanItem(cursor.next(), module.Title, groupedSessionTitle(session), session))
		}
	}
	return items
}

// planDurationOptimized packs longest videos first so heavy content does
// not pile up at the end of the course
func (s *Scheduler) planDurationOptimized(structure *models.CourseStructure, capacity Capacity, cursor *dateCursor) []models.PlanItem {
	queue := flattenQueue(structure)
	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].Duration > queue[j].Duration
	})

	var items []models.PlanItem
	for _, session := range PackAll(queue, capacity) {
		items = append(items, buildPlanItem(cursor.next(), mixedModuleTitle(session), mixedSessionTitle(session), session))
	}
	return items
}

// modulePhase resolves a module's difficulty phase, defaulting to the
// intermediate phase when the clustering pass attached no label
func modulePhase(module models.Module) int {
	if module.DifficultyLevel == nil {
		return models.DifficultyIntermediate.Phase()
	}
	return module.DifficultyLevel.Phase()
}
