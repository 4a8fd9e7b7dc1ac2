package model

// Answer is one choice on a question. Exactly one answer per question has
// IsCorrect set; the authoring layer enforces that before a quiz is playable.
// Player-facing endpoints must serialize answers through view types that omit
// IsCorrect.
// swagger:model Answer
type Answer struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Text       string `gorm:"size:300;not null" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
}

func (Answer) TableName() string {
	return "answers"
}
