package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "trims and lowercases",
			input:    "  Hello World  ",
			expected: "hello world",
		},
		{
			name:     "maps punctuation to spaces",
			input:    "Rust: Ownership & Borrowing!",
			expected: "rust ownership borrowing",
		},
		{
			name:     "collapses whitespace runs",
			input:    "one    two\t\tthree",
			expected: "one two three",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	input := "Part 3: Advanced K-Means (with examples)"
	once := Normalize(input)
	assert.Equal(t, once, Normalize(once))
}

func TestExtractNumbers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []int
	}{
		{
			name:     "part marker",
			input:    "Part 2: Advanced Topics",
			expected: []int{2},
		},
		{
			name:     "leading index",
			input:    "3. Error Handling",
			expected: []int{3},
		},
		{
			name:     "hash marker",
			input:    "Tutorial #7 Generics",
			expected: []int{7},
		},
		{
			name:     "x of y",
			input:    "Episode 4 of 12",
			expected: []int{4, 12},
		},
		{
			name:     "deduplicates across patterns",
			input:    "Lesson 5: Section 5",
			expected: []int{5},
		},
		{
			name:     "no numbers",
			input:    "Closures Explained",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractNumbers(tt.input))
		})
	}
}
