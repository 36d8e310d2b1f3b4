// Package planner implements study plan generation: session capacity
// modelling, bin packing, calendar advancement, and the distribution
// strategy catalogue
package planner

import "fmt"

// ValidationError reports invalid plan settings. It is surfaced to the
// caller and never retried
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
