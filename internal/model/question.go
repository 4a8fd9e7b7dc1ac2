package model

// swagger:model Question
type Question struct {
	BaseModel
	QuizID uint   `gorm:"index;not null" json:"quizId"`
	Text   string `gorm:"type:text;not null" json:"text"`
	Image  string `gorm:"size:255" json:"image"`
	// TimeLimit is in seconds.
	TimeLimit int `gorm:"default:30" json:"timeLimit"`
	// Order is 1-based and contiguous within a quiz; play walks it sequentially.
	// "order" is reserved in MySQL, hence the column name.
	Order int `gorm:"column:question_order;not null" json:"order"`

	Answers []Answer `gorm:"constraint:OnDelete:CASCADE" json:"answers,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}
