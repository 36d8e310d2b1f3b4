// Package nlp implements the content analysis pipeline that turns raw
// video titles into a clustered course structure
package nlp

import "fmt"

// InsufficientContentError is returned when there are too few titles
// for meaningful clustering
type InsufficientContentError struct {
	Count int
}

func (e *InsufficientContentError) Error() string {
	return fmt.Sprintf("insufficient content for clustering: %d titles, need at least %d", e.Count, MinTitlesForClustering)
}

// AnalysisFailedError is returned when TF-IDF analysis cannot produce
// usable feature vectors
type AnalysisFailedError struct {
	Reason string
}

func (e *AnalysisFailedError) Error() string {
	return fmt.Sprintf("content analysis failed: %s", e.Reason)
}

// ConvergenceFailedError is returned when K-Means exhausts its iteration
// budget without stabilizing
type ConvergenceFailedError struct {
	Iterations int
}

func (e *ConvergenceFailedError) Error() string {
	return fmt.Sprintf("clustering failed to converge after %d iterations", e.Iterations)
}

// InvalidDurationsError is returned when duration balancing is requested
// but duration data is missing or malformed
type InvalidDurationsError struct {
	Count int
}

func (e *InvalidDurationsError) Error() string {
	return fmt.Sprintf("invalid or missing durations for %d videos", e.Count)
}

// OptimizationTimeoutError is returned when cluster optimization exceeds
// its time budget; partial results may still be usable
type OptimizationTimeoutError struct {
	ElapsedMs int64
}

func (e *OptimizationTimeoutError) Error() string {
	return fmt.Sprintf("cluster optimization timed out after %dms", e.ElapsedMs)
}
