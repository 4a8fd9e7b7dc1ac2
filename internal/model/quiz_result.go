package model

import "time"

// QuizResult is one completed playthrough. Rows are immutable once created;
// replaying a quiz appends a new row, and the row count per (user, quiz) pair
// is what drives the repeat-attempt penalty.
// swagger:model QuizResult
type QuizResult struct {
	BaseModel
	UserID      uint      `gorm:"index:idx_results_user_quiz" json:"userId"`
	QuizID      uint      `gorm:"index:idx_results_user_quiz" json:"quizId"`
	Score       int       `gorm:"not null" json:"score"`
	Multiplier  float64   `json:"multiplier"`
	CompletedAt time.Time `json:"completedAt"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}
