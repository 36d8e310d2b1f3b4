package models

// DifficultyLevel describes how demanding a video or module is
type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
	DifficultyExpert       DifficultyLevel = "expert"
)

// Phase returns the ordinal learning phase for the level, starting at 1
func (d DifficultyLevel) Phase() int {
	switch d {
	case DifficultyBeginner:
		return 1
	case DifficultyIntermediate:
		return 2
	case DifficultyAdvanced:
		return 3
	case DifficultyExpert:
		return 4
	default:
		return 2
	}
}

// Course represents an imported course with its raw video titles and
// the optional generated structure
type Course struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	CreatedAt int64            `json:"created_at"`
	RawTitles []string         `json:"raw_titles"`
	Structure *CourseStructure `json:"structure,omitempty"`
}

// CourseStructure is the generated module breakdown of a course
type CourseStructure struct {
	Modules            []Module            `json:"modules"`
	Metadata           StructureMetadata   `json:"metadata"`
	ClusteringMetadata *ClusteringMetadata `json:"clustering_metadata,omitempty"`
}

// StructureMetadata holds aggregated totals for a course structure
type StructureMetadata struct {
	TotalVideos            int      `json:"total_videos"`
	TotalDuration          int64    `json:"total_duration"`
	EstimatedDurationHours float64  `json:"estimated_duration_hours"`
	DifficultyLevel        string   `json:"difficulty_level"`
	StructureQualityScore  *float64 `json:"structure_quality_score,omitempty"`
	ContentCoherenceScore  *float64 `json:"content_coherence_score,omitempty"`
	ContentTypeDetected    string   `json:"content_type_detected"`
	OriginalOrderPreserved bool     `json:"original_order_preserved"`
	ProcessingStrategyUsed string   `json:"processing_strategy_used"`
}

// ClusteringMetadata records how the clustering pass produced the structure
type ClusteringMetadata struct {
	Algorithm           string  `json:"algorithm"`
	QualityScore        float64 `json:"quality_score"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	NumClusters         int     `json:"num_clusters"`
	ProcessingTimeMs    int64   `json:"processing_time_ms"`
	GeneratedAt         int64   `json:"generated_at"`
}

// Module groups related sections of a course
type Module struct {
	Title           string           `json:"title"`
	Sections        []Section        `json:"sections"`
	TotalDuration   int64            `json:"total_duration"`
	SimilarityScore *float64         `json:"similarity_score,omitempty"`
	TopicKeywords   []string         `json:"topic_keywords,omitempty"`
	DifficultyLevel *DifficultyLevel `json:"difficulty_level,omitempty"`
}

// Section is a single video within a module. VideoIndex points into
// the owning course's RawTitles; Duration is in seconds
type Section struct {
	Title      string `json:"title"`
	VideoIndex int    `json:"video_index"`
	Duration   int64  `json:"duration"`
}

// TotalVideos returns the number of sections across all modules
func (s *CourseStructure) TotalVideos() int {
	total := 0
	for _, m := range s.Modules {
		total += len(m.Sections)
	}
	return total
}

// TotalDuration returns the summed duration in seconds across all modules
func (s *CourseStructure) TotalDuration() int64 {
	var total int64
	for _, m := range s.Modules {
		total += m.TotalDuration
	}
	return total
}

// CreateCourseRequest is the payload for importing a new course
type CreateCourseRequest struct {
	Name      string   `json:"name"`
	Titles    []string `json:"titles"`
	Durations []int64  `json:"durations,omitempty"`
}

// RestructureCourseRequest asks for a fresh structure of an existing course
type RestructureCourseRequest struct {
	SimilarityThreshold *float64 `json:"similarity_threshold,omitempty"`
	MaxClusters         *int     `json:"max_clusters,omitempty"`
	Durations           []int64  `json:"durations,omitempty"`
}
