package service

import (
	"testing"
	"time"

	"lumen_quiz_backend/internal/repository"
	"lumen_quiz_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newQuizService(t *testing.T) (*QuizService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewQuizService(repository.NewQuizRepository(db), nil), db
}

func validInput(questions int) QuizInput {
	in := QuizInput{Title: "Daily Mix", Category: "Music"}
	for i := 0; i < questions; i++ {
		in.Questions = append(in.Questions, QuestionInput{
			Text: "What?",
			Answers: []AnswerInput{
				{Text: "yes", IsCorrect: true},
				{Text: "no"},
			},
		})
	}
	return in
}

func TestCreateQuizGeneratesUniqueSlugs(t *testing.T) {
	svc, _ := newQuizService(t)

	first, err := svc.CreateQuiz(1, validInput(1))
	require.NoError(t, err)
	assert.Equal(t, "daily-mix", first.Slug)

	second, err := svc.CreateQuiz(1, validInput(1))
	require.NoError(t, err)
	assert.Equal(t, "daily-mix-2", second.Slug)
}

func TestCreateQuizNormalizesQuestionOrder(t *testing.T) {
	svc, _ := newQuizService(t)

	quiz, err := svc.CreateQuiz(1, validInput(3))
	require.NoError(t, err)

	for i, q := range quiz.Questions {
		assert.Equal(t, i+1, q.Order)
		assert.Equal(t, 30, q.TimeLimit)
	}
}

func TestCreateQuizRejectsBadQuestionSets(t *testing.T) {
	svc, _ := newQuizService(t)

	published := validInput(0)
	published.IsPublished = true
	_, err := svc.CreateQuiz(1, published)
	assert.ErrorIs(t, err, util.ErrQuizNeedsQuestions)

	twoCorrect := validInput(1)
	twoCorrect.Questions[0].Answers[1].IsCorrect = true
	_, err = svc.CreateQuiz(1, twoCorrect)
	assert.ErrorIs(t, err, util.ErrOneCorrectAnswer)

	noCorrect := validInput(1)
	noCorrect.Questions[0].Answers[0].IsCorrect = false
	_, err = svc.CreateQuiz(1, noCorrect)
	assert.ErrorIs(t, err, util.ErrOneCorrectAnswer)
}

func TestPublishRequiresQuestions(t *testing.T) {
	svc, _ := newQuizService(t)

	empty, err := svc.CreateQuiz(1, validInput(0))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.SetPublished(empty.ID, true), util.ErrQuizNeedsQuestions)

	filled, err := svc.CreateQuiz(1, validInput(2))
	require.NoError(t, err)
	require.NoError(t, svc.SetPublished(filled.ID, true))

	reloaded, err := svc.GetQuizDetail(filled.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsPublished)
}

func TestUpdateQuizReplacesQuestionSet(t *testing.T) {
	svc, db := newQuizService(t)

	quiz, err := svc.CreateQuiz(1, validInput(3))
	require.NoError(t, err)
	originalSlug := quiz.Slug

	updated, err := svc.UpdateQuiz(quiz.ID, validInput(2))
	require.NoError(t, err)
	assert.Equal(t, originalSlug, updated.Slug)

	reloaded, err := svc.GetQuizDetail(quiz.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Questions, 2)

	// No orphaned questions survive the replacement.
	count, err := repository.NewQuizRepository(db).CountQuestions(quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestListQuizzesVisibility(t *testing.T) {
	svc, _ := newQuizService(t)

	published := validInput(1)
	published.IsPublished = true
	_, err := svc.CreateQuiz(1, published)
	require.NoError(t, err)

	_, err = svc.CreateQuiz(1, validInput(1))
	require.NoError(t, err)

	forPlayers, total, err := svc.ListQuizzes(false, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, forPlayers, 1)

	_, total, err = svc.ListQuizzes(true, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestCatalogueCacheServesAndInvalidates(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(repository.NewQuizRepository(db), newTestRedis(t))

	published := validInput(1)
	published.IsPublished = true
	_, err := svc.CreateQuiz(1, published)
	require.NoError(t, err)

	_, total, err := svc.ListQuizzes(false, 1, DefaultPageLimit)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)

	// A write that bypasses the service is invisible while the cache lives.
	seedQuiz(t, db, 1, "Bypass", true, 1)
	_, total, err = svc.ListQuizzes(false, 1, DefaultPageLimit)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	svc.invalidateCatalogue()
	_, total, err = svc.ListQuizzes(false, 1, DefaultPageLimit)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestScheduledPublishFlipsDueDrafts(t *testing.T) {
	svc, _ := newQuizService(t)

	past := time.Now().Add(-time.Minute)
	due := validInput(1)
	due.ScheduledPublishAt = &past
	quiz, err := svc.CreateQuiz(1, due)
	require.NoError(t, err)

	future := time.Now().Add(time.Hour)
	notYet := validInput(1)
	notYet.ScheduledPublishAt = &future
	later, err := svc.CreateQuiz(1, notYet)
	require.NoError(t, err)

	require.NoError(t, svc.ProcessScheduledPublishes())

	flipped, err := svc.GetQuizDetail(quiz.ID)
	require.NoError(t, err)
	assert.True(t, flipped.IsPublished)
	assert.Nil(t, flipped.ScheduledPublishAt)

	waiting, err := svc.GetQuizDetail(later.ID)
	require.NoError(t, err)
	assert.False(t, waiting.IsPublished)
}

func TestDeleteQuizRemovesQuestions(t *testing.T) {
	svc, db := newQuizService(t)

	quiz, err := svc.CreateQuiz(1, validInput(2))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteQuiz(quiz.ID))

	_, err = svc.GetQuizDetail(quiz.ID)
	assert.ErrorIs(t, err, util.ErrQuizNotFound)

	count, err := repository.NewQuizRepository(db).CountQuestions(quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
