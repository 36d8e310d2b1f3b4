package nlp

import (
	"regexp"
	"strconv"
	"strings"
)

// numberPatterns match the common ways lesson numbers appear in titles.
// Initialized once and treated as a constant lookup table
var numberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:part|episode|lesson|chapter|video|lecture|session|module|day|week)\s*#?\s*(\d+)`),
	regexp.MustCompile(`#(\d+)`),
	regexp.MustCompile(`\b(\d+)\s*(?:of|/)\s*\d+\b`),
	regexp.MustCompile(`^\s*(\d+)[.:\)\-]`),
	regexp.MustCompile(`\b(\d+)\b`),
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize lowercases text, maps punctuation to spaces, and collapses
// whitespace runs. It is pure and idempotent
func Normalize(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	spaced := nonAlphanumeric.ReplaceAllString(lowered, " ")
	return strings.Join(strings.Fields(spaced), " ")
}

// ExtractNumbers pulls numeric markers out of a title in pattern priority
// order, deduplicated, preserving first-seen order
func ExtractNumbers(text string) []int {
	seen := make(map[int]bool)
	var numbers []int

	for _, pattern := range numberPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			n, err := strconv.Atoi(match[1])
			if err != nil {
				continue
			}
			if !seen[n] {
				seen[n] = true
				numbers = append(numbers, n)
			}
		}
	}

	return numbers
}
