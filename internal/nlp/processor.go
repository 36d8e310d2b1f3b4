package nlp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coursepilot/backend/internal/models"
	"go.uber.org/zap"
)

// ProgressFunc reports pipeline progress. stageProgress is in [0, 1]
type ProgressFunc func(stage models.ImportStage, stageProgress float64, message string)

// ProcessorConfig tunes the structuring pipeline
type ProcessorConfig struct {
	SimilarityThreshold float64
	KMeans              KMeansConfig
	Balancer            BalancerConfig
	FallbackChunkSize   int
}

// DefaultProcessorConfig returns the standard pipeline configuration
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SimilarityThreshold: 0.6,
		KMeans:              DefaultKMeansConfig(),
		Balancer:            DefaultBalancerConfig(),
		FallbackChunkSize:   5,
	}
}

// Processor turns raw titles into a course structure. The clustering
// path runs TF-IDF, K-Means, and duration balancing; short or sequential
// content takes an order-preserving path instead
type Processor struct {
	config ProcessorConfig
	logger *zap.Logger
}

// NewProcessor creates a structuring processor
func NewProcessor(config ProcessorConfig, logger *zap.Logger) *Processor {
	if config.FallbackChunkSize <= 0 {
		config.FallbackChunkSize = 5
	}
	return &Processor{config: config, logger: logger}
}

// BuildStructure produces a course structure for the given titles.
// durations are per-video seconds; missing durations are estimated from
// the titles. progress may be nil
func (p *Processor) BuildStructure(titles []string, durations []int64, progress ProgressFunc) (*models.CourseStructure, error) {
	report := func(stage models.ImportStage, frac float64, msg string) {
		if progress != nil {
			progress(stage, frac, msg)
		}
	}

	durations = p.ensureDurations(titles, durations)
	report(models.StageProcessing, 0.5, "normalizing titles")

	if IsSequentialContent(titles) {
		p.logger.Info("sequential content detected, preserving original order",
			zap.Int("titles", len(titles)))
		report(models.StageProcessing, 1, "sequential content detected")
		return p.sequentialStructure(titles, durations), nil
	}
	report(models.StageProcessing, 1, "titles normalized")

	start := time.Now()

	report(models.StageTfIdf, 0, "running TF-IDF analysis")
	analysis, err := Analyze(titles)
	if err != nil {
		return nil, err
	}
	report(models.StageTfIdf, 1, fmt.Sprintf("analyzed %d terms", len(analysis.Vocabulary)))

	clusterer := NewKMeansClusterer(p.config.KMeans)
	k := clusterer.OptimalClusterCount(analysis)
	report(models.StageClustering, 0.2, fmt.Sprintf("clustering into %d groups", k))
	clusters, err := clusterer.Cluster(analysis, k)
	if err != nil {
		return nil, err
	}
	report(models.StageClustering, 1, fmt.Sprintf("produced %d clusters", len(clusters)))

	report(models.StageOptimization, 0, "balancing module durations")
	balanced, err := Balance(analysis, clusters, durations, p.config.Balancer)
	if err != nil {
		return nil, err
	}
	report(models.StageOptimization, 1, "modules balanced")

	structure := p.assemble(analysis, balanced, titles, durations, time.Since(start))
	return structure, nil
}

// FallbackStructure builds an order-preserving chunked structure for
// content that cannot be clustered
func (p *Processor) FallbackStructure(titles []string, durations []int64) *models.CourseStructure {
	durations = p.ensureDurations(titles, durations)

	var modules []models.Module
	chunk := p.config.FallbackChunkSize
	for start := 0; start < len(titles); start += chunk {
		end := min(start+chunk, len(titles))
		title := "Course Content"
		if len(titles) > chunk {
			title = fmt.Sprintf("Session %d", len(modules)+1)
		}
		modules = append(modules, buildModule(title, titles, durations, rangeIndices(start, end)))
	}

	structure := &models.CourseStructure{Modules: modules}
	p.fillMetadata(structure, len(titles), true, "fallback_chunking")
	return structure
}

// IsFallbackError reports whether structuring failed in a way that the
// chunked fallback structure can recover from
func IsFallbackError(err error) bool {
	var insufficient *InsufficientContentError
	var convergence *ConvergenceFailedError
	var analysis *AnalysisFailedError
	return errors.As(err, &insufficient) || errors.As(err, &convergence) || errors.As(err, &analysis)
}

// IsSequentialContent reports whether most titles carry increasing
// numeric markers, indicating an authored episode order
func IsSequentialContent(titles []string) bool {
	if len(titles) < 3 {
		return false
	}

	numbered := 0
	last := -1
	increasing := 0
	for _, title := range titles {
		nums := ExtractNumbers(title)
		if len(nums) == 0 {
			continue
		}
		numbered++
		if nums[0] > last {
			increasing++
		}
		last = nums[0]
	}

	if float64(numbered) < float64(len(titles))*0.6 {
		return false
	}
	return float64(increasing) >= float64(numbered)*0.8
}

func (p *Processor) sequentialStructure(titles []string, durations []int64) *models.CourseStructure {
	chunk := p.config.FallbackChunkSize
	var modules []models.Module
	for start := 0; start < len(titles); start += chunk {
		end := min(start+chunk, len(titles))
		title := fmt.Sprintf("Part %d", len(modules)+1)
		modules = append(modules, buildModule(title, titles, durations, rangeIndices(start, end)))
	}

	structure := &models.CourseStructure{Modules: modules}
	p.fillMetadata(structure, len(titles), true, "sequential")
	return structure
}

func (p *Processor) assemble(analysis *ContentAnalysis, clusters []Cluster, titles []string, durations []int64, elapsed time.Duration) *models.CourseStructure {
	modules := make([]models.Module, 0, len(clusters))
	for _, cluster := range clusters {
		keywords := ClusterKeywords(analysis, cluster.Members)
		module := buildModule(ModuleTitle(keywords), titles, durations, cluster.Members)
		module.TopicKeywords = keywords
		score := cluster.SimilarityScore
		module.SimilarityScore = &score
		difficulty := difficultyByAverageDuration(module.TotalDuration, len(module.Sections))
		module.DifficultyLevel = &difficulty
		modules = append(modules, module)
	}

	quality := QualityScore(analysis, clusters)
	coherence := meanIntraSimilarity(clusters)

	structure := &models.CourseStructure{
		Modules: modules,
		ClusteringMetadata: &models.ClusteringMetadata{
			Algorithm:           "kmeans",
			QualityScore:        quality,
			SimilarityThreshold: p.config.SimilarityThreshold,
			NumClusters:         len(clusters),
			ProcessingTimeMs:    elapsed.Milliseconds(),
			GeneratedAt:         time.Now().Unix(),
		},
	}
	p.fillMetadata(structure, len(titles), false, "kmeans_clustering")
	structure.Metadata.StructureQualityScore = &quality
	structure.Metadata.ContentCoherenceScore = &coherence
	return structure
}

// fillMetadata aggregates totals after the modules are final
func (p *Processor) fillMetadata(structure *models.CourseStructure, totalVideos int, orderPreserved bool, strategy string) {
	totalDuration := structure.TotalDuration()
	contentType := "topical"
	if orderPreserved {
		contentType = "sequential"
	}

	structure.Metadata = models.StructureMetadata{
		TotalVideos:            totalVideos,
		TotalDuration:          totalDuration,
		EstimatedDurationHours: float64(totalDuration) / 3600,
		DifficultyLevel:        string(difficultyByAverageDuration(totalDuration, totalVideos)),
		ContentTypeDetected:    contentType,
		OriginalOrderPreserved: orderPreserved,
		ProcessingStrategyUsed: strategy,
	}
}

func (p *Processor) ensureDurations(titles []string, durations []int64) []int64 {
	if len(durations) >= len(titles) {
		return durations
	}
	result := make([]int64, len(titles))
	copy(result, durations)
	for i := len(durations); i < len(titles); i++ {
		result[i] = EstimateDuration(titles[i])
	}
	return result
}

// EstimateDuration guesses a video length in seconds from its title when
// no duration data is available
func EstimateDuration(title string) int64 {
	normalized := Normalize(title)
	switch {
	case containsAny(normalized, "complete", "full course", "masterclass", "deep dive"):
		return 25 * 60
	case containsAny(normalized, "introduction", "intro", "overview", "getting started"):
		return 8 * 60
	case containsAny(normalized, "quick", "tip", "shorts"):
		return 5 * 60
	default:
		return 12 * 60
	}
}

func containsAny(text string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}

func buildModule(title string, titles []string, durations []int64, members []int) models.Module {
	sections := make([]models.Section, 0, len(members))
	var total int64
	for _, i := range members {
		sections = append(sections, models.Section{
			Title:      titles[i],
			VideoIndex: i,
			Duration:   durations[i],
		})
		total += durations[i]
	}
	return models.Module{Title: title, Sections: sections, TotalDuration: total}
}

func difficultyByAverageDuration(totalDuration int64, videos int) models.DifficultyLevel {
	if videos == 0 {
		return models.DifficultyIntermediate
	}
	avgMinutes := totalDuration / int64(videos) / 60
	switch {
	case avgMinutes <= 10:
		return models.DifficultyBeginner
	case avgMinutes <= 25:
		return models.DifficultyIntermediate
	case avgMinutes <= 45:
		return models.DifficultyAdvanced
	default:
		return models.DifficultyExpert
	}
}

func meanIntraSimilarity(clusters []Cluster) float64 {
	if len(clusters) == 0 {
		return 0
	}
	var sum float64
	for _, cluster := range clusters {
		sum += cluster.SimilarityScore
	}
	return sum / float64(len(clusters))
}

func rangeIndices(start, end int) []int {
	indices := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		indices = append(indices, i)
	}
	return indices
}
