package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lumen_quiz_backend/internal/model"
	"lumen_quiz_backend/internal/repository"
	"lumen_quiz_backend/internal/util"
	"lumen_quiz_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	catalogueCacheKey = "quizzes:published:first"
	catalogueCacheTTL = time.Minute
	DefaultPageLimit  = 20
)

type QuizService struct {
	QuizRepo *repository.QuizRepository
	Redis    *redis.Client
}

func NewQuizService(quizRepo *repository.QuizRepository, rdb *redis.Client) *QuizService {
	return &QuizService{QuizRepo: quizRepo, Redis: rdb}
}

type AnswerInput struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

type QuestionInput struct {
	Text      string        `json:"text" binding:"required"`
	Image     string        `json:"image"`
	TimeLimit int           `json:"timeLimit"`
	Answers   []AnswerInput `json:"answers" binding:"required,min=2"`
}

type QuizInput struct {
	Title              string          `json:"title" binding:"required"`
	Description        string          `json:"description"`
	Category           string          `json:"category"`
	Image              string          `json:"image"`
	IsPublished        bool            `json:"isPublished"`
	ScheduledPublishAt *time.Time      `json:"scheduledPublishAt"`
	Questions          []QuestionInput `json:"questions"`
}

// validate enforces the authoring invariants the play flow relies on: a quiz
// exposed to players has at least one question, and every question has exactly
// one correct answer.
func (in *QuizInput) validate() error {
	if in.IsPublished && len(in.Questions) == 0 {
		return util.ErrQuizNeedsQuestions
	}
	for _, q := range in.Questions {
		correct := 0
		for _, a := range q.Answers {
			if a.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return util.ErrOneCorrectAnswer
		}
	}
	return nil
}

func (in *QuizInput) toModel(creatorID uint) *model.Quiz {
	quiz := &model.Quiz{
		Title:              in.Title,
		Description:        in.Description,
		Category:           in.Category,
		Image:              in.Image,
		CreatedByID:        creatorID,
		IsPublished:        in.IsPublished,
		ScheduledPublishAt: in.ScheduledPublishAt,
	}
	for i, q := range in.Questions {
		timeLimit := q.TimeLimit
		if timeLimit <= 0 {
			timeLimit = 30
		}
		question := model.Question{
			Text:      q.Text,
			Image:     q.Image,
			TimeLimit: timeLimit,
			// Orders are normalized to the submitted position so they stay
			// 1-based and contiguous no matter what the client sent.
			Order: i + 1,
		}
		for _, a := range q.Answers {
			question.Answers = append(question.Answers, model.Answer{
				Text:      a.Text,
				IsCorrect: a.IsCorrect,
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz
}

func (s *QuizService) CreateQuiz(creatorID uint, in QuizInput) (*model.Quiz, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	quiz := in.toModel(creatorID)

	slug, err := s.uniqueSlug(in.Title)
	if err != nil {
		return nil, err
	}
	quiz.Slug = slug

	if err := s.QuizRepo.Create(quiz); err != nil {
		return nil, err
	}
	s.invalidateCatalogue()
	return quiz, nil
}

// UpdateQuiz replaces the quiz metadata and its whole question set. Results
// referencing the quiz are untouched; an attempt in flight against the old
// questions will fail its next lookup and has to be restarted.
func (s *QuizService) UpdateQuiz(id uint, in QuizInput) (*model.Quiz, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	existing, err := s.QuizRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	updated := in.toModel(existing.CreatedByID)
	updated.ID = existing.ID
	updated.Slug = existing.Slug
	updated.CreatedAt = existing.CreatedAt

	err = s.QuizRepo.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id IN (?)",
			tx.Model(&model.Question{}).Select("id").Where("quiz_id = ?", id),
		).Delete(&model.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		return tx.Save(updated).Error
	})
	if err != nil {
		return nil, err
	}
	s.invalidateCatalogue()
	return updated, nil
}

func (s *QuizService) DeleteQuiz(id uint) error {
	if err := s.QuizRepo.Delete(id); err != nil {
		return err
	}
	s.invalidateCatalogue()
	return nil
}

func (s *QuizService) SetPublished(id uint, published bool) error {
	quiz, err := s.QuizRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuizNotFound
		}
		return err
	}
	if published {
		count, err := s.QuizRepo.CountQuestions(quiz.ID)
		if err != nil {
			return err
		}
		if count == 0 {
			return util.ErrQuizNeedsQuestions
		}
	}
	if err := s.QuizRepo.SetPublished(id, published); err != nil {
		return err
	}
	s.invalidateCatalogue()
	return nil
}

// ListQuizzes returns the catalogue. Admins see drafts too; everyone else gets
// the published set, with the first page served from a short-lived Redis cache.
func (s *QuizService) ListQuizzes(isAdmin bool, page, limit int) ([]model.Quiz, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = DefaultPageLimit
	}

	if isAdmin {
		return s.QuizRepo.FindAll(page, limit)
	}

	cacheable := page == 1 && limit == DefaultPageLimit && s.Redis != nil
	if cacheable {
		if quizzes, total, ok := s.cachedCatalogue(); ok {
			return quizzes, total, nil
		}
	}

	quizzes, total, err := s.QuizRepo.FindPublished(page, limit)
	if err != nil {
		return nil, 0, err
	}
	if cacheable {
		s.cacheCatalogue(quizzes, total)
	}
	return quizzes, total, nil
}

func (s *QuizService) GetQuizDetail(id uint) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByIDWithQuestions(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	return quiz, nil
}

// ProcessScheduledPublishes flips drafts whose publish time has arrived. Runs
// from the app's background ticker.
func (s *QuizService) ProcessScheduledPublishes() error {
	due, err := s.QuizRepo.FindDuePublishes(time.Now())
	if err != nil {
		return err
	}
	for _, quiz := range due {
		if err := s.SetPublished(quiz.ID, true); err != nil {
			logger.Log.Error("scheduled publish failed",
				zap.Uint("quizId", quiz.ID),
				zap.Error(err))
			continue
		}
		logger.Log.Info("quiz published on schedule", zap.Uint("quizId", quiz.ID), zap.String("title", quiz.Title))
	}
	return nil
}

func (s *QuizService) uniqueSlug(title string) (string, error) {
	base := util.Slugify(title)
	if base == "" {
		base = "quiz"
	}
	slug := base
	for i := 2; ; i++ {
		_, err := s.QuizRepo.FindBySlug(slug)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return slug, nil
		}
		if err != nil {
			return "", err
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

type cachedCatalogue struct {
	Quizzes []model.Quiz `json:"quizzes"`
	Total   int64        `json:"total"`
}

func (s *QuizService) cachedCatalogue() ([]model.Quiz, int64, bool) {
	raw, err := s.Redis.Get(context.Background(), catalogueCacheKey).Bytes()
	if err != nil {
		return nil, 0, false
	}
	var cached cachedCatalogue
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, 0, false
	}
	return cached.Quizzes, cached.Total, true
}

func (s *QuizService) cacheCatalogue(quizzes []model.Quiz, total int64) {
	raw, err := json.Marshal(cachedCatalogue{Quizzes: quizzes, Total: total})
	if err != nil {
		return
	}
	s.Redis.Set(context.Background(), catalogueCacheKey, raw, catalogueCacheTTL)
}

func (s *QuizService) invalidateCatalogue() {
	if s.Redis == nil {
		return
	}
	s.Redis.Del(context.Background(), catalogueCacheKey)
}
