package services

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// maxNameAttempts caps the numbered-suffix search before falling back to
// a UUID suffix
const maxNameAttempts = 1000

// GenerateUniqueName returns desired if it is unused, otherwise the first
// free "desired (N)" variant starting at 2. After maxNameAttempts the
// name gets a UUID suffix instead
func GenerateUniqueName(existing []string, desired string) string {
	if !slices.Contains(existing, desired) {
		return desired
	}

	for counter := 2; counter <= maxNameAttempts; counter++ {
		candidate := fmt.Sprintf("%s (%d)", desired, counter)
		if !slices.Contains(existing, candidate) {
			return candidate
		}
	}

	return fmt.Sprintf("%s (%s)", desired, uuid.New().String()[:8])
}
