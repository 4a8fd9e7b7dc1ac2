package model

import "time"

// swagger:model Quiz
type Quiz struct {
	BaseModel
	Title              string     `gorm:"size:200;not null" json:"title"`
	Slug               string     `gorm:"size:200;uniqueIndex" json:"slug"`
	Description        string     `gorm:"type:text" json:"description"`
	Category           string     `gorm:"size:100" json:"category"`
	Image              string     `gorm:"size:255" json:"image"`
	CreatedByID        uint       `gorm:"index" json:"createdById"`
	IsPublished        bool       `gorm:"default:false;index" json:"isPublished"`
	ScheduledPublishAt *time.Time `json:"scheduledPublishAt,omitempty"`

	Questions []Question `gorm:"constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}
