package planner

// Capacity models how much content fits in one study session.
// All limits are in seconds
type Capacity struct {
	StrictLimit    int64
	EffectiveLimit int64
}

// minEffectiveLimit keeps very short sessions usable
const minEffectiveLimit = 60

// NewCapacity derives session limits from the configured session length.
// The effective limit reserves 20% of the session for breaks and note
// taking, and never drops below one minute
func NewCapacity(sessionLengthMinutes int) Capacity {
	strict := int64(sessionLengthMinutes) * 60
	effective := strict * 8 / 10
	if effective < minEffectiveLimit {
		effective = minEffectiveLimit
	}
	return Capacity{StrictLimit: strict, EffectiveLimit: effective}
}

// ExceedsStrict reports whether a video is longer than the full session
func (c Capacity) ExceedsStrict(duration int64) bool {
	return duration > c.StrictLimit
}

// ExceedsEffective reports whether a video is too long to share a session
func (c Capacity) ExceedsEffective(duration int64) bool {
	return duration > c.EffectiveLimit
}

// VideosPerSession estimates how many average-length videos fit into one
// session. Returns at least 1
func (c Capacity) VideosPerSession(avgDuration int64) int {
	if avgDuration < minEffectiveLimit {
		avgDuration = minEffectiveLimit
	}
	if avgDuration >= c.EffectiveLimit {
		return 1
	}
	n := int(c.EffectiveLimit / avgDuration)
	if n < 1 {
		return 1
	}
	return n
}

// FallbackAverageMinutes returns the assumed average video length when
// no duration data is available, by session length bracket
func FallbackAverageMinutes(sessionLengthMinutes int) int {
	switch {
	case sessionLengthMinutes <= 30:
		return 8
	case sessionLengthMinutes <= 60:
		return 12
	case sessionLengthMinutes <= 90:
		return 15
	default:
		return 18
	}
}

// FallbackVideosPerSession estimates session capacity without duration
// data. Returns at least 1
func FallbackVideosPerSession(sessionLengthMinutes int) int {
	avg := FallbackAverageMinutes(sessionLengthMinutes)
	n := int(float64(sessionLengthMinutes) * 0.8 / float64(avg))
	if n < 1 {
		return 1
	}
	return n
}
