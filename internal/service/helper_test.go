package service

import (
	"fmt"
	"testing"

	"lumen_quiz_backend/internal/model"
	"lumen_quiz_backend/internal/repository"
	"lumen_quiz_backend/pkg/database"
	"lumen_quiz_backend/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

// newTestDB opens a uniquely named shared in-memory database so every test
// gets isolated state while the connection pool still sees one schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", model.GenerateUUID())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func seedUser(t *testing.T, db *gorm.DB, name string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Name:     name,
		Email:    name + "@test.local",
		Password: "irrelevant",
		Role:     role,
	}
	require.NoError(t, repository.NewUserRepository(db).CreateWithProfile(user))
	return user
}

// seedQuiz creates a quiz with the given number of questions, each carrying
// one correct and two wrong answers.
func seedQuiz(t *testing.T, db *gorm.DB, creatorID uint, title string, published bool, questions int) *model.Quiz {
	t.Helper()
	quiz := &model.Quiz{
		Title:       title,
		Slug:        fmt.Sprintf("%s-%s", title, model.GenerateUUID()[:8]),
		CreatedByID: creatorID,
		IsPublished: published,
	}
	for i := 1; i <= questions; i++ {
		quiz.Questions = append(quiz.Questions, model.Question{
			Text:      fmt.Sprintf("Question %d", i),
			TimeLimit: 30,
			Order:     i,
			Answers: []model.Answer{
				{Text: "right", IsCorrect: true},
				{Text: "wrong A"},
				{Text: "wrong B"},
			},
		})
	}
	require.NoError(t, repository.NewQuizRepository(db).Create(quiz))
	return quiz
}

// answerID returns the id of a correct or incorrect answer for the question at
// the given play order.
func answerID(t *testing.T, db *gorm.DB, quizID uint, order int, correct bool) uint {
	t.Helper()
	question, err := repository.NewQuizRepository(db).FindQuestionByOrder(quizID, order)
	require.NoError(t, err)
	for _, a := range question.Answers {
		if a.IsCorrect == correct {
			return a.ID
		}
	}
	t.Fatalf("no answer with correct=%v on question %d", correct, order)
	return 0
}
