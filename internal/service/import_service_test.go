package service

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"lumen_quiz_backend/internal/config"
	"lumen_quiz_backend/internal/repository"
	"lumen_quiz_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const triviaFixture = `{
	"response_code": 0,
	"results": [
		{
			"category": "History",
			"question": "Who painted the &quot;Mona Lisa&quot;?",
			"correct_answer": "Leonardo da Vinci",
			"incorrect_answers": ["Raphael", "Michelangelo", "Donatello"]
		},
		{
			"category": "History",
			"question": "In which year did WW2 end?",
			"correct_answer": "1945",
			"incorrect_answers": ["1944", "1946", "1939"]
		}
	]
}`

func newImportService(t *testing.T, handler http.HandlerFunc) (*ImportService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.Import.OpenTDBURL = server.URL
	cfg.Import.BotName = "LumenBot"
	cfg.Import.BotEmail = "bot@lumen.local"

	userRepo := repository.NewUserRepository(db)
	quizService := NewQuizService(repository.NewQuizRepository(db), nil)
	return NewImportService(userRepo, quizService, cfg), db
}

func TestImportCategoryCreatesPublishedQuiz(t *testing.T) {
	svc, db := newImportService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("amount"))
		assert.Equal(t, "23", r.URL.Query().Get("category"))
		assert.Equal(t, "multiple", r.URL.Query().Get("type"))
		w.Write([]byte(triviaFixture))
	})

	quiz, err := svc.ImportCategory("History")
	require.NoError(t, err)

	assert.True(t, quiz.IsPublished)
	assert.Equal(t, "History", quiz.Category)
	require.Len(t, quiz.Questions, 2)

	// HTML entities from the feed are decoded.
	assert.Equal(t, `Who painted the "Mona Lisa"?`, quiz.Questions[0].Text)
	assert.Equal(t, 1, quiz.Questions[0].Order)
	assert.Equal(t, 2, quiz.Questions[1].Order)

	// Every imported question keeps exactly one correct answer.
	for _, q := range quiz.Questions {
		require.Len(t, q.Answers, 4)
		correct := 0
		for _, a := range q.Answers {
			if a.IsCorrect {
				correct++
			}
		}
		assert.Equal(t, 1, correct)
	}

	// The bot account owns the quiz and has a profile like any other user.
	bot, err := repository.NewUserRepository(db).FindByEmail("bot@lumen.local")
	require.NoError(t, err)
	assert.Equal(t, bot.ID, quiz.CreatedByID)
	_, err = repository.NewProfileRepository(db).FindByUserID(bot.ID)
	require.NoError(t, err)
}

func TestImportReusesTheBotAccount(t *testing.T) {
	svc, db := newImportService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(triviaFixture))
	})

	_, err := svc.ImportCategory("History")
	require.NoError(t, err)
	_, err = svc.ImportCategory("Geography")
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Table("users").Where("email = ?", "bot@lumen.local").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestImportAllSkipsFailingCategories(t *testing.T) {
	svc, db := newImportService(t, func(w http.ResponseWriter, r *http.Request) {
		// One category is down; the others keep importing.
		if r.URL.Query().Get("category") == "23" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(triviaFixture))
	})

	quizzes, err := svc.ImportAll()
	require.NoError(t, err)
	assert.Len(t, quizzes, len(svc.Categories())-1)

	var count int64
	require.NoError(t, db.Table("quizzes").Count(&count).Error)
	assert.Equal(t, int64(len(quizzes)), count)
}

func TestImportRejectsUnknownCategory(t *testing.T) {
	svc, _ := newImportService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(triviaFixture))
	})

	_, err := svc.ImportCategory("Underwater Basket Weaving")
	assert.Error(t, err)
}

func TestImportFailsWhenSourceHasNoQuestions(t *testing.T) {
	svc, _ := newImportService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response_code": 1, "results": []}`))
	})

	_, err := svc.ImportCategory("History")
	assert.ErrorIs(t, err, util.ErrNoQuestionsFound)
}

func TestImportFailsOnUpstreamError(t *testing.T) {
	svc, _ := newImportService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := svc.ImportCategory("History")
	assert.Error(t, err)
}
