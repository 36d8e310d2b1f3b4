package planner

import (
	"strings"

	"github.com/coursepilot/backend/internal/models"
)

var expertKeywords = []string{"advanced", "expert", "complex", "algorithm", "optimization"}
var advancedKeywords = []string{"intermediate", "deep", "detailed", "implementation"}
var beginnerKeywords = []string{"introduction", "basic", "getting started", "overview"}

// ClassifyDifficulty labels a video by title keywords, falling back to
// duration brackets. Keyword rules are checked hardest first
func ClassifyDifficulty(title string, duration int64) models.DifficultyLevel {
	lowered := strings.ToLower(title)

	if containsAnyKeyword(lowered, expertKeywords) {
		return models.DifficultyExpert
	}
	if containsAnyKeyword(lowered, advancedKeywords) {
		return models.DifficultyAdvanced
	}
	if containsAnyKeyword(lowered, beginnerKeywords) {
		return models.DifficultyBeginner
	}

	minutes := duration / 60
	switch {
	case minutes <= 10:
		return models.DifficultyBeginner
	case minutes <= 25:
		return models.DifficultyIntermediate
	case minutes <= 45:
		return models.DifficultyAdvanced
	default:
		return models.DifficultyExpert
	}
}

func containsAnyKeyword(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
