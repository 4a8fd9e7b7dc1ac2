package repository

import (
	"time"

	"lumen_quiz_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

// Create inserts the quiz together with its nested questions and answers.
func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := r.DB.First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizRepository) FindBySlug(slug string) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := r.DB.Where("slug = ?", slug).First(&quiz).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

// FindByIDWithQuestions loads the quiz with questions in play order and their
// answers.
func (r *QuizRepository) FindByIDWithQuestions(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_order ASC")
		}).
		Preload("Questions.Answers").
		First(&quiz, id).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

// FindPublished lists published quizzes newest first.
func (r *QuizRepository) FindPublished(page, limit int) ([]model.Quiz, int64, error) {
	return r.findPage(r.DB.Model(&model.Quiz{}).Where("is_published = ?", true), page, limit)
}

// FindAll lists every quiz, drafts included. Admin only.
func (r *QuizRepository) FindAll(page, limit int) ([]model.Quiz, int64, error) {
	return r.findPage(r.DB.Model(&model.Quiz{}), page, limit)
}

func (r *QuizRepository) findPage(query *gorm.DB, page, limit int) ([]model.Quiz, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var quizzes []model.Quiz
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&quizzes).Error
	return quizzes, total, err
}

func (r *QuizRepository) Update(quiz *model.Quiz) error {
	return r.DB.Save(quiz).Error
}

// Delete removes the quiz and cascades to questions and answers.
func (r *QuizRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id IN (?)",
			tx.Model(&model.Question{}).Select("id").Where("quiz_id = ?", id),
		).Delete(&model.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Quiz{}, id).Error
	})
}

func (r *QuizRepository) SetPublished(id uint, published bool) error {
	return r.DB.Model(&model.Quiz{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_published": published, "scheduled_publish_at": nil}).
		Error
}

// FindDuePublishes returns drafts whose scheduled publish time has passed.
func (r *QuizRepository) FindDuePublishes(now time.Time) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.
		Where("scheduled_publish_at IS NOT NULL AND scheduled_publish_at <= ? AND is_published = ?", now, false).
		Find(&quizzes).Error
	return quizzes, err
}

// FindQuestionByOrder fetches one question of a quiz by its 1-based ordinal,
// answers included.
func (r *QuizRepository) FindQuestionByOrder(quizID uint, order int) (*model.Question, error) {
	var question model.Question
	err := r.DB.
		Preload("Answers").
		Where("quiz_id = ? AND question_order = ?", quizID, order).
		First(&question).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *QuizRepository) CountQuestions(quizID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Where("quiz_id = ?", quizID).Count(&count).Error
	return count, err
}
