package models

import "time"

// VideoProgress records completion of one video inside one plan session
type VideoProgress struct {
	PlanID       string    `json:"plan_id"`
	SessionIndex int       `json:"session_index"`
	VideoIndex   int       `json:"video_index"`
	Completed    bool      `json:"completed"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UpdateProgressRequest is the payload for marking a video watched or unwatched
type UpdateProgressRequest struct {
	SessionIndex int  `json:"session_index"`
	VideoIndex   int  `json:"video_index"`
	Completed    bool `json:"completed"`
}

// VideoProgressResponse reports the completion state of one video
type VideoProgressResponse struct {
	PlanID       string `json:"plan_id"`
	SessionIndex int    `json:"session_index"`
	VideoIndex   int    `json:"video_index"`
	Completed    bool   `json:"completed"`
}

// SessionProgressResponse reports how much of a session has been completed
type SessionProgressResponse struct {
	PlanID       string  `json:"plan_id"`
	SessionIndex int     `json:"session_index"`
	Progress     float64 `json:"progress"`
}

// PlanProgressResponse reports overall plan completion
type PlanProgressResponse struct {
	PlanID     string  `json:"plan_id"`
	Completed  int     `json:"completed"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}
