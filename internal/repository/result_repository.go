package repository

import (
	"lumen_quiz_backend/internal/model"

	"gorm.io/gorm"
)

type ResultRepository struct {
	DB *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: db}
}

func (r *ResultRepository) Create(result *model.QuizResult) error {
	return r.DB.Create(result).Error
}

// CountByUserAndQuiz counts completed playthroughs, which is exactly the
// priorAttemptCount fed into the repeat penalty when it is taken before the
// new result row is inserted.
func (r *ResultRepository) CountByUserAndQuiz(userID, quizID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizResult{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Count(&count).Error
	return count, err
}

func (r *ResultRepository) RecentByUser(userID uint, limit int) ([]model.QuizResult, error) {
	var results []model.QuizResult
	err := r.DB.
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Limit(limit).
		Find(&results).Error
	return results, err
}

func (r *ResultRepository) BestByQuiz(quizID uint, limit int) ([]model.QuizResult, error) {
	var results []model.QuizResult
	err := r.DB.
		Where("quiz_id = ?", quizID).
		Order("score DESC, completed_at ASC").
		Limit(limit).
		Find(&results).Error
	return results, err
}
