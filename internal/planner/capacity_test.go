package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCapacityLimits(t *testing.T) {
	capacity := NewCapacity(60)

	assert.Equal(t, int64(3600), capacity.StrictLimit)
	assert.Equal(t, int64(2880), capacity.EffectiveLimit)

	// A 50 minute video fits a 60 minute session outright
	assert.False(t, capacity.ExceedsStrict(50*60))
	// A 49 minute video is too long to share an effective session
	assert.True(t, capacity.ExceedsEffective(49*60))
	assert.False(t, capacity.ExceedsEffective(40*60))
}

func TestNewCapacityFloor(t *testing.T) {
	capacity := NewCapacity(1)
	assert.Equal(t, int64(60), capacity.EffectiveLimit)
}

func TestVideosPerSession(t *testing.T) {
	capacity := NewCapacity(60)

	tests := []struct {
		name     string
		avg      int64
		expected int
	}{
		{name: "average fits several times", avg: 600, expected: 4},
		{name: "average longer than session", avg: 4000, expected: 1},
		{name: "tiny average clamps to one minute", avg: 10, expected: 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, capacity.VideosPerSession(tt.avg))
		})
	}
}

func TestFallbackVideosPerSession(t *testing.T) {
	tests := []struct {
		minutes  int
		expected int
	}{
		{minutes: 30, expected: 3},
		{minutes: 60, expected: 4},
		{minutes: 90, expected: 4},
		{minutes: 120, expected: 5},
		{minutes: 15, expected: 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FallbackVideosPerSession(tt.minutes), "session length %d", tt.minutes)
	}
}
