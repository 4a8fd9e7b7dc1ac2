package service

import (
	"context"
	"testing"
	"time"

	"lumen_quiz_backend/internal/gamification"
	"lumen_quiz_backend/internal/model"
	"lumen_quiz_backend/internal/repository"
	"lumen_quiz_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type playFixture struct {
	db   *gorm.DB
	svc  *PlayService
	user *model.User
	quiz *model.Quiz
}

func newPlayFixture(t *testing.T, policy gamification.PenaltyPolicy, questions int) *playFixture {
	t.Helper()
	db := newTestDB(t)
	rdb := newTestRedis(t)

	svc := NewPlayService(
		repository.NewQuizRepository(db),
		repository.NewResultRepository(db),
		repository.NewProfileRepository(db),
		repository.NewAttemptStateStore(rdb, time.Hour),
		policy,
	)

	user := seedUser(t, db, "alice", model.Player)
	quiz := seedQuiz(t, db, user.ID, "Capitals", true, questions)

	return &playFixture{db: db, svc: svc, user: user, quiz: quiz}
}

// playThrough answers every question, correct or not per the flags, and
// returns the finishing outcome.
func (f *playFixture) playThrough(t *testing.T, correct ...bool) *AnswerOutcome {
	t.Helper()
	ctx := context.Background()

	_, err := f.svc.StartAttempt(ctx, f.user.ID, f.quiz.ID, false)
	require.NoError(t, err)

	var outcome *AnswerOutcome
	for i, ok := range correct {
		outcome, err = f.svc.SubmitAnswer(ctx, f.user.ID, f.quiz.ID, answerID(t, f.db, f.quiz.ID, i+1, ok))
		require.NoError(t, err)
	}
	return outcome
}

func (f *playFixture) profile(t *testing.T) *model.UserProfile {
	t.Helper()
	profile, err := repository.NewProfileRepository(f.db).FindByUserID(f.user.ID)
	require.NoError(t, err)
	return profile
}

func TestPlayThroughScoresTenPerCorrect(t *testing.T) {
	f := newPlayFixture(t, gamification.PenaltyHalving, 3)

	outcome := f.playThrough(t, true, false, true)

	require.True(t, outcome.Finished)
	require.NotNil(t, outcome.Result)
	assert.Equal(t, 20, outcome.Result.RawScore)
	assert.Equal(t, 20, outcome.Result.FinalScore)
	assert.Equal(t, 1.0, outcome.Result.Multiplier)
	assert.Equal(t, 0, outcome.Result.PriorAttempts)

	profile := f.profile(t)
	assert.Equal(t, 20, profile.XP)
	assert.Equal(t, 1, profile.Level)
}

func TestIntermediateAnswersAdvanceTheAttempt(t *testing.T) {
	f := newPlayFixture(t, gamification.PenaltyHalving, 3)
	ctx := context.Background()

	_, err := f.svc.StartAttempt(ctx, f.user.ID, f.quiz.ID, false)
	require.NoError(t, err)

	outcome, err := f.svc.SubmitAnswer(ctx, f.user.ID, f.quiz.ID, answerID(t, f.db, f.quiz.ID, 1, true))
	require.NoError(t, err)
	assert.True(t, outcome.Correct)
	assert.Equal(t, 10, outcome.PointsDelta)
	assert.Equal(t, 10, outcome.RawScore)
	assert.Equal(t, 2, outcome.NextOrder)
	assert.False(t, outcome.Finished)

	served, err := f.svc.CurrentQuestion(ctx, f.user.ID, f.quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, served.Question.Order)
	assert.Equal(t, int64(3), served.Total)
}

func TestReplayHalvesTheScore(t *testing.T) {
	f := newPlayFixture(t, gamification.PenaltyHalving, 3)

	first := f.playThrough(t, true, true, true)
	assert.Equal(t, 30, first.Result.FinalScore)

	second := f.playThrough(t, true, true, true)
	assert.Equal(t, 30, second.Result.RawScore)
	assert.Equal(t, 15, second.Result.FinalScore)
	assert.Equal(t, 0.5, second.Result.Multiplier)
	assert.Equal(t, 1, second.Result.PriorAttempts)

	assert.Equal(t, 45, f.profile(t).XP)
}

func TestLinearPolicyAppliesDecay(t *testing.T) {
	f := newPlayFixture(t, gamification.PenaltyLinear, 3)

	first := f.playThrough(t, true, true, true)
	assert.Equal(t, 30, first.Result.FinalScore)

	second := f.playThrough(t, true, true, true)
	assert.Equal(t, 24, second.Result.FinalScore)
	assert.Equal(t, 0.8, second.Result.Multiplier)
}

func TestFinalizationIsIdempotent(t *testing.T) {
	f := newPlayFixture(t, gamification.PenaltyHalving, 2)
	ctx := context.Background()

	f.playThrough(t, true, true)

	// The attempt state was consumed; replaying the last submission must not
	// produce a second result or award.
	_, err := f.svc.SubmitAnswer(ctx, f.user.ID, f.quiz.ID, answerID(t, f.db, f.quiz.ID, 2, true))
	assert.ErrorIs(t, err, util.ErrNoActiveAttempt)

	count, err := repository.NewResultRepository(f.db).CountByUserAndQuiz(f.user.ID, f.quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 20, f.profile(t).XP)
}

func TestForeignAnswerLeavesAttemptUnchanged(t *testing.T) {
	f := newPlayFixture(t, gamification.PenaltyHalving, 2)
	ctx := context.Background()

	_, err := f.svc.StartAttempt(ctx, f.user.ID, f.quiz.ID, false)
	require.NoError(t, err)

	// An answer id belonging to question 2 is rejected while question 1 is live.
	_, err = f.svc.SubmitAnswer(ctx, f.user.ID, f.quiz.ID, answerID(t, f.db, f.quiz.ID, 2, true))
	assert.ErrorIs(t, err, gamification.ErrAnswerNotInQuestion)

	served, err := f.svc.CurrentQuestion(ctx, f.user.ID, f.quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, served.Question.Order)
	assert.Equal(t, 0, served.State.RawScore)

	// The attempt continues normally afterwards.
	outcome, err := f.svc.SubmitAnswer(ctx, f.user.ID, f.quiz.ID, answerID(t, f.db, f.quiz.ID, 1, true))
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.NextOrder)
}

func TestStartRequiresAPlayableQuiz(t *testing.T) {
	f := newPlayFixture(t, gamification.PenaltyHalving, 2)
	ctx := context.Background()

	draft := seedQuiz(t, f.db, f.user.ID, "Draft", false, 2)

	_, err := f.svc.StartAttempt(ctx, f.user.ID, draft.ID, false)
	assert.ErrorIs(t, err, util.ErrQuizNotPlayable)

	// Admins may preview drafts.
	_, err = f.svc.StartAttempt(ctx, f.user.ID, draft.ID, true)
	assert.NoError(t, err)

	_, err = f.svc.StartAttempt(ctx, f.user.ID, 9999, false)
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}

func TestLevelUpOnFinalize(t *testing.T) {
	f := newPlayFixture(t, gamification.PenaltyHalving, 3)

	// 95 XP into level 1; 30 more crosses the 100 XP threshold.
	require.NoError(t, f.db.Model(&model.UserProfile{}).
		Where("user_id = ?", f.user.ID).
		Update("xp", 95).Error)

	outcome := f.playThrough(t, true, true, true)

	require.NotNil(t, outcome.Result)
	assert.Equal(t, 1, outcome.Result.LevelsGained)
	assert.Equal(t, 2, outcome.Result.Level)
	assert.Equal(t, 25, outcome.Result.XP)

	profile := f.profile(t)
	assert.Equal(t, 2, profile.Level)
	assert.Equal(t, 25, profile.XP)
}

func TestAbandonDropsTheAttempt(t *testing.T) {
	f := newPlayFixture(t, gamification.PenaltyHalving, 2)
	ctx := context.Background()

	_, err := f.svc.StartAttempt(ctx, f.user.ID, f.quiz.ID, false)
	require.NoError(t, err)

	require.NoError(t, f.svc.AbandonAttempt(ctx, f.user.ID, f.quiz.ID))

	_, err = f.svc.SubmitAnswer(ctx, f.user.ID, f.quiz.ID, answerID(t, f.db, f.quiz.ID, 1, true))
	assert.ErrorIs(t, err, util.ErrNoActiveAttempt)

	count, err := repository.NewResultRepository(f.db).CountByUserAndQuiz(f.user.ID, f.quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestRestartDiscardsAccumulatedScore(t *testing.T) {
	f := newPlayFixture(t, gamification.PenaltyHalving, 2)
	ctx := context.Background()

	_, err := f.svc.StartAttempt(ctx, f.user.ID, f.quiz.ID, false)
	require.NoError(t, err)
	_, err = f.svc.SubmitAnswer(ctx, f.user.ID, f.quiz.ID, answerID(t, f.db, f.quiz.ID, 1, true))
	require.NoError(t, err)

	served, err := f.svc.StartAttempt(ctx, f.user.ID, f.quiz.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 0, served.State.RawScore)
	assert.Equal(t, 1, served.Question.Order)
}

func TestNextMultiplierPreview(t *testing.T) {
	f := newPlayFixture(t, gamification.PenaltyHalving, 2)

	mult, err := f.svc.NextMultiplier(f.user.ID, f.quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, mult)

	f.playThrough(t, true, true)

	mult, err = f.svc.NextMultiplier(f.user.ID, f.quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.5, mult)
}

func TestSetPolicyRejectsUnknownValues(t *testing.T) {
	f := newPlayFixture(t, gamification.PenaltyHalving, 2)

	f.svc.SetPolicy(gamification.PenaltyPolicy("nonsense"))
	assert.Equal(t, gamification.PenaltyHalving, f.svc.Policy())

	f.svc.SetPolicy(gamification.PenaltyLinear)
	assert.Equal(t, gamification.PenaltyLinear, f.svc.Policy())
}
