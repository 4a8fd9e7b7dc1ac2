package model

// UserProfile carries a user's durable progression state. Every user row has
// exactly one profile row, created in the same transaction as the user.
// XP is the remainder toward the next level, never the lifetime total: after
// every award it is normalized back into [0, required XP for Level).
// swagger:model UserProfile
type UserProfile struct {
	BaseModel
	UserID uint   `gorm:"uniqueIndex;not null" json:"userId"`
	Avatar string `gorm:"size:255" json:"avatar"`
	XP     int    `gorm:"default:0" json:"xp"`
	Level  int    `gorm:"default:1" json:"level"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
