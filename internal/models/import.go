package models

// ImportStage identifies one phase of the course import pipeline
type ImportStage string

const (
	StageFetching     ImportStage = "fetching"
	StageProcessing   ImportStage = "processing"
	StageTfIdf        ImportStage = "tfidf_analysis"
	StageClustering   ImportStage = "kmeans_clustering"
	StageOptimization ImportStage = "optimization"
	StageSaving       ImportStage = "saving"
)

// StageWeights maps each import stage to its share of overall progress.
// The weights sum to 1.0
var StageWeights = map[ImportStage]float64{
	StageFetching:     0.15,
	StageProcessing:   0.15,
	StageTfIdf:        0.20,
	StageClustering:   0.20,
	StageOptimization: 0.15,
	StageSaving:       0.15,
}

// stageOrder fixes the pipeline sequence for progress accumulation
var stageOrder = []ImportStage{
	StageFetching,
	StageProcessing,
	StageTfIdf,
	StageClustering,
	StageOptimization,
	StageSaving,
}

// OverallProgress converts a stage plus its local progress into the
// weighted overall fraction in [0, 1]
func OverallProgress(stage ImportStage, stageProgress float64) float64 {
	if stageProgress < 0 {
		stageProgress = 0
	}
	if stageProgress > 1 {
		stageProgress = 1
	}

	overall := 0.0
	for _, s := range stageOrder {
		if s == stage {
			overall += StageWeights[s] * stageProgress
			break
		}
		overall += StageWeights[s]
	}
	return overall
}

// ImportStatus is the lifecycle state of an import job
type ImportStatus string

const (
	ImportPending   ImportStatus = "pending"
	ImportRunning   ImportStatus = "running"
	ImportCompleted ImportStatus = "completed"
	ImportFailed    ImportStatus = "failed"
	ImportCancelled ImportStatus = "cancelled"
)

// ImportJob tracks a background course import
type ImportJob struct {
	ID          string       `json:"id"`
	CourseName  string       `json:"course_name"`
	Status      ImportStatus `json:"status"`
	Stage       ImportStage  `json:"stage"`
	Progress    float64      `json:"progress"`
	Message     string       `json:"message"`
	Cancellable bool         `json:"cancellable"`
	Error       string       `json:"error,omitempty"`
	CourseID    string       `json:"course_id,omitempty"`
	CreatedAt   int64        `json:"created_at"`
	UpdatedAt   int64        `json:"updated_at"`
}

// ImportCourseRequest is the payload for starting a background import
type ImportCourseRequest struct {
	Name      string   `json:"name"`
	Titles    []string `json:"titles"`
	Durations []int64  `json:"durations,omitempty"`
}
