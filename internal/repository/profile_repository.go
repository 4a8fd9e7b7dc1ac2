package repository

import (
	"lumen_quiz_backend/internal/gamification"
	"lumen_quiz_backend/internal/model"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

func (r *ProfileRepository) FindByUserID(userID uint) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := r.DB.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// CompareAndSwapProgress writes the new (xp, level) pair only if the row still
// holds the old pair, reporting whether it matched. Two concurrent awards for
// the same user cannot both match, so the loser retries on a fresh read
// instead of silently losing its update.
func (r *ProfileRepository) CompareAndSwapProgress(userID uint, old, next gamification.Progress) (bool, error) {
	res := r.DB.Model(&model.UserProfile{}).
		Where("user_id = ? AND xp = ? AND level = ?", userID, old.XP, old.Level).
		Updates(map[string]interface{}{"xp": next.XP, "level": next.Level})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ProfileRepository) UpdateAvatar(userID uint, avatar string) error {
	return r.DB.Model(&model.UserProfile{}).
		Where("user_id = ?", userID).
		Update("avatar", avatar).
		Error
}

// RankedProfile is one leaderboard row.
type RankedProfile struct {
	UserID uint   `json:"userId"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	XP     int    `json:"xp"`
	Level  int    `json:"level"`
}

func (r *ProfileRepository) TopProgress(limit int) ([]RankedProfile, error) {
	var rows []RankedProfile
	err := r.DB.Model(&model.UserProfile{}).
		Select("user_profiles.user_id, users.name, user_profiles.avatar, user_profiles.xp, user_profiles.level").
		Joins("JOIN users ON users.id = user_profiles.user_id").
		Order("user_profiles.level DESC, user_profiles.xp DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
