package planner

import "fmt"

// VideoItem is one queued video awaiting scheduling
type VideoItem struct {
	Index       int
	Title       string
	ModuleTitle string
	Duration    int64
}

// Session is one packed study session
type Session struct {
	Items         []VideoItem
	TotalDuration int64
	Warnings      []string
}

// PackNextSession consumes items from the front of the queue and returns
// the next session plus the remaining queue. A video longer than the
// effective limit occupies a session alone and carries an overflow
// warning. The returned session is never empty for a non-empty queue
func PackNextSession(queue []VideoItem, capacity Capacity) (Session, []VideoItem) {
	if len(queue) == 0 {
		return Session{}, nil
	}

	head := queue[0]
	if capacity.ExceedsEffective(head.Duration) {
		session := Session{
			Items:         []VideoItem{head},
			TotalDuration: head.Duration,
			Warnings:      []string{overflowWarning(head, capacity)},
		}
		return session, queue[1:]
	}

	var session Session
	for len(queue) > 0 {
		next := queue[0]
		if capacity.ExceedsEffective(next.Duration) {
			break
		}
		if session.TotalDuration+next.Duration > capacity.EffectiveLimit {
			break
		}
		session.Items = append(session.Items, next)
		session.TotalDuration += next.Duration
		queue = queue[1:]
	}
	return session, queue
}

// overflowWarning describes a video that cannot fit into one session.
// Every over-limit item must carry it, whichever path built the session
func overflowWarning(item VideoItem, capacity Capacity) string {
	return fmt.Sprintf("Video '%s' (%.1f min) exceeds session limit (%d min)",
		item.Title, float64(item.Duration)/60, capacity.StrictLimit/60)
}

// PackAll drains the queue into consecutive sessions
func PackAll(queue []VideoItem, capacity Capacity) []Session {
	var sessions []Session
	for len(queue) > 0 {
		var session Session
		session, queue = PackNextSession(queue, capacity)
		sessions = append(sessions, session)
	}
	return sessions
}
