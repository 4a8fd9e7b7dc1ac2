package model

import "time"

// AttemptState is the whole state of one in-progress playthrough. It lives in
// Redis between question boundaries and is the only mutable per-session value;
// finalization consumes it atomically so an attempt can never be scored twice.
type AttemptState struct {
	UserID uint `json:"userId"`
	QuizID uint `json:"quizId"`
	// RawScore accumulates per-question point deltas before any multiplier.
	RawScore int `json:"rawScore"`
	// CurrentOrder is the 1-based ordinal of the question currently served.
	CurrentOrder int       `json:"currentOrder"`
	Answered     int       `json:"answered"`
	StartedAt    time.Time `json:"startedAt"`
}
