package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"lumen_quiz_backend/internal/config"
	"lumen_quiz_backend/internal/model"
	"lumen_quiz_backend/internal/repository"
	"lumen_quiz_backend/internal/util"
	"lumen_quiz_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// openTDBCategories maps our catalogue categories to Open Trivia DB ids.
var openTDBCategories = map[string]int{
	"History":          23,
	"Geography":        22,
	"Science & Nature": 17,
	"Computers":        18,
	"Film":             11,
	"Music":            12,
	"Video Games":      15,
	"Mythology":        20,
}

const importBatchSize = 10

// ImportService pulls question batches from the Open Trivia Database and
// files them as published quizzes owned by the import bot account.
type ImportService struct {
	UserRepo *repository.UserRepository
	Quizzes  *QuizService
	Cfg      *config.Config
	Client   *http.Client
	rng      *rand.Rand
}

func NewImportService(userRepo *repository.UserRepository, quizzes *QuizService, cfg *config.Config) *ImportService {
	return &ImportService{
		UserRepo: userRepo,
		Quizzes:  quizzes,
		Cfg:      cfg,
		Client:   &http.Client{Timeout: 15 * time.Second},
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Categories lists the importable category names.
func (s *ImportService) Categories() []string {
	names := make([]string, 0, len(openTDBCategories))
	for name := range openTDBCategories {
		names = append(names, name)
	}
	return names
}

type openTDBResponse struct {
	ResponseCode int             `json:"response_code"`
	Results      []openTDBTrivia `json:"results"`
}

type openTDBTrivia struct {
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// ImportCategory fetches one batch for the named category and creates a
// published quiz from it. Unknown category names are rejected.
func (s *ImportService) ImportCategory(category string) (*model.Quiz, error) {
	categoryID, ok := openTDBCategories[category]
	if !ok {
		return nil, fmt.Errorf("unknown import category %q", category)
	}

	trivia, err := s.fetch(categoryID)
	if err != nil {
		return nil, err
	}

	bot, err := s.botUser()
	if err != nil {
		return nil, err
	}

	input := QuizInput{
		Title:       fmt.Sprintf("%s Trivia %s", category, time.Now().Format("2006-01-02")),
		Description: fmt.Sprintf("%d community trivia questions about %s.", len(trivia), category),
		Category:    category,
		IsPublished: true,
	}
	for _, t := range trivia {
		question := QuestionInput{Text: html.UnescapeString(t.Question)}
		question.Answers = append(question.Answers, AnswerInput{
			Text:      html.UnescapeString(t.CorrectAnswer),
			IsCorrect: true,
		})
		for _, wrong := range t.IncorrectAnswers {
			question.Answers = append(question.Answers, AnswerInput{Text: html.UnescapeString(wrong)})
		}
		// The feed always puts the correct answer first; shuffle so its
		// position gives nothing away.
		s.rng.Shuffle(len(question.Answers), func(i, j int) {
			question.Answers[i], question.Answers[j] = question.Answers[j], question.Answers[i]
		})
		input.Questions = append(input.Questions, question)
	}

	quiz, err := s.Quizzes.CreateQuiz(bot.ID, input)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("imported quiz",
		zap.String("category", category),
		zap.Uint("quizId", quiz.ID),
		zap.Int("questions", len(quiz.Questions)))
	return quiz, nil
}

// ImportAll runs every known category, logging and skipping the ones that
// fail so one flaky fetch does not abort the whole run.
func (s *ImportService) ImportAll() ([]model.Quiz, error) {
	var quizzes []model.Quiz
	var lastErr error
	for name := range openTDBCategories {
		quiz, err := s.ImportCategory(name)
		if err != nil {
			logger.Log.Warn("category import failed", zap.String("category", name), zap.Error(err))
			lastErr = err
			continue
		}
		quizzes = append(quizzes, *quiz)
	}
	if len(quizzes) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return quizzes, nil
}

func (s *ImportService) fetch(categoryID int) ([]openTDBTrivia, error) {
	query := url.Values{}
	query.Set("amount", fmt.Sprintf("%d", importBatchSize))
	query.Set("category", fmt.Sprintf("%d", categoryID))
	query.Set("type", "multiple")

	resp, err := s.Client.Get(s.Cfg.Import.OpenTDBURL + "?" + query.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trivia source returned status %d", resp.StatusCode)
	}

	var parsed openTDBResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if parsed.ResponseCode != 0 || len(parsed.Results) == 0 {
		return nil, util.ErrNoQuestionsFound
	}
	return parsed.Results, nil
}

// botUser returns the import bot account, creating it on first use. The bot
// gets a random password it never uses; nobody logs in as it.
func (s *ImportService) botUser() (*model.User, error) {
	bot, err := s.UserRepo.FindByEmail(s.Cfg.Import.BotEmail)
	if err == nil {
		return bot, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(model.GenerateUUID()), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	bot = &model.User{
		Name:     s.Cfg.Import.BotName,
		Email:    s.Cfg.Import.BotEmail,
		Password: string(hashed),
		Role:     model.Admin,
	}
	if err := s.UserRepo.CreateWithProfile(bot); err != nil {
		return nil, err
	}
	return bot, nil
}
