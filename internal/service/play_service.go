package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"lumen_quiz_backend/internal/gamification"
	"lumen_quiz_backend/internal/model"
	"lumen_quiz_backend/internal/repository"
	"lumen_quiz_backend/internal/util"
	"lumen_quiz_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// awardRetries bounds the optimistic-concurrency loop on profile updates.
// Concurrent awards for one user are rare (one per finished attempt), so a
// handful of retries is plenty before giving up loudly.
const awardRetries = 5

// PlayService drives a playthrough: serving questions in order, accumulating
// the raw score in the attempt state, and converting the finished attempt into
// a persisted result plus an XP award.
type PlayService struct {
	QuizRepo    *repository.QuizRepository
	ResultRepo  *repository.ResultRepository
	ProfileRepo *repository.ProfileRepository
	States      *repository.AttemptStateStore

	mu     sync.RWMutex
	policy gamification.PenaltyPolicy
}

func NewPlayService(quizRepo *repository.QuizRepository, resultRepo *repository.ResultRepository, profileRepo *repository.ProfileRepository, states *repository.AttemptStateStore, policy gamification.PenaltyPolicy) *PlayService {
	return &PlayService{
		QuizRepo:    quizRepo,
		ResultRepo:  resultRepo,
		ProfileRepo: profileRepo,
		States:      states,
		policy:      policy,
	}
}

func (s *PlayService) Policy() gamification.PenaltyPolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy
}

// SetPolicy swaps the repeat penalty policy; called on config hot reload.
// In-flight attempts pick up the new policy at finalization.
func (s *PlayService) SetPolicy(policy gamification.PenaltyPolicy) {
	if !policy.Valid() {
		return
	}
	s.mu.Lock()
	s.policy = policy
	s.mu.Unlock()
}

// ServedQuestion is one step of a playthrough as shown to the player.
type ServedQuestion struct {
	State    *model.AttemptState
	Question *model.Question
	Total    int64
}

// FinalResult is what a finished attempt reports back.
type FinalResult struct {
	RawScore           int     `json:"rawScore"`
	FinalScore         int     `json:"finalScore"`
	Multiplier         float64 `json:"multiplier"`
	PriorAttempts      int     `json:"priorAttempts"`
	LevelsGained       int     `json:"levelsGained"`
	XP                 int     `json:"xp"`
	Level              int     `json:"level"`
	ProgressPercentage float64 `json:"progressPercentage"`
}

// AnswerOutcome reports a single answer submission; Result is set only on the
// submission that completed the quiz.
type AnswerOutcome struct {
	Correct       bool         `json:"correct"`
	PointsDelta   int          `json:"pointsDelta"`
	RawScore      int          `json:"rawScore"`
	QuestionOrder int          `json:"questionOrder"`
	NextOrder     int          `json:"nextOrder,omitempty"`
	Finished      bool         `json:"finished"`
	Result        *FinalResult `json:"result,omitempty"`
}

// StartAttempt opens (or restarts) an attempt and serves the first question.
// Starting over a live attempt discards its accumulated score, mirroring the
// old behavior of re-entering a quiz at question one.
func (s *PlayService) StartAttempt(ctx context.Context, userID, quizID uint, isAdmin bool) (*ServedQuestion, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if !quiz.IsPublished && !isAdmin {
		return nil, util.ErrQuizNotPlayable
	}

	total, err := s.QuizRepo.CountQuestions(quizID)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, util.ErrQuizNotPlayable
	}

	question, err := s.QuizRepo.FindQuestionByOrder(quizID, 1)
	if err != nil {
		return nil, err
	}

	state := &model.AttemptState{
		UserID:       userID,
		QuizID:       quizID,
		CurrentOrder: 1,
		StartedAt:    time.Now(),
	}
	if err := s.States.Save(ctx, state); err != nil {
		return nil, err
	}

	return &ServedQuestion{State: state, Question: question, Total: total}, nil
}

// CurrentQuestion re-serves the question the attempt is waiting on, e.g. after
// a rejected answer or a page reload.
func (s *PlayService) CurrentQuestion(ctx context.Context, userID, quizID uint) (*ServedQuestion, error) {
	state, err := s.States.Get(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, util.ErrNoActiveAttempt
	}

	question, err := s.QuizRepo.FindQuestionByOrder(quizID, state.CurrentOrder)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The quiz was edited under the attempt; the player has to restart.
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	total, err := s.QuizRepo.CountQuestions(quizID)
	if err != nil {
		return nil, err
	}
	return &ServedQuestion{State: state, Question: question, Total: total}, nil
}

// SubmitAnswer scores the chosen answer against the attempt's current
// question. A rejected answer (wrong question, stale id) leaves the state
// untouched so the same question is simply served again. Answering the last
// question finalizes the attempt in the same call.
func (s *PlayService) SubmitAnswer(ctx context.Context, userID, quizID, answerID uint) (*AnswerOutcome, error) {
	state, err := s.States.Get(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, util.ErrNoActiveAttempt
	}

	question, err := s.QuizRepo.FindQuestionByOrder(quizID, state.CurrentOrder)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	delta, err := gamification.ScoreAnswer(question, answerID)
	if err != nil {
		return nil, err
	}

	state.RawScore += delta
	state.Answered++

	outcome := &AnswerOutcome{
		Correct:       delta > 0,
		PointsDelta:   delta,
		RawScore:      state.RawScore,
		QuestionOrder: state.CurrentOrder,
	}

	next := state.CurrentOrder + 1
	_, err = s.QuizRepo.FindQuestionByOrder(quizID, next)
	switch {
	case err == nil:
		state.CurrentOrder = next
		if err := s.States.Save(ctx, state); err != nil {
			return nil, err
		}
		outcome.NextOrder = next
		return outcome, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		result, err := s.finalize(ctx, state)
		if err != nil {
			return nil, err
		}
		outcome.Finished = true
		outcome.Result = result
		return outcome, nil
	default:
		return nil, err
	}
}

// AbandonAttempt drops a live attempt without scoring it.
func (s *PlayService) AbandonAttempt(ctx context.Context, userID, quizID uint) error {
	return s.States.Delete(ctx, userID, quizID)
}

// NextMultiplier previews the multiplier the user's next completed attempt of
// this quiz would get.
func (s *PlayService) NextMultiplier(userID, quizID uint) (float64, error) {
	prior, err := s.ResultRepo.CountByUserAndQuiz(userID, quizID)
	if err != nil {
		return 0, err
	}
	return s.Policy().Multiplier(int(prior)), nil
}

// finalize consumes the attempt state and turns it into a result row plus an
// XP award. Consuming the state first (an atomic take on the Redis key) makes
// finalization idempotent: whoever loses the race, or replays the request,
// finds no active attempt and nothing is scored or awarded twice.
func (s *PlayService) finalize(ctx context.Context, state *model.AttemptState) (*FinalResult, error) {
	taken, err := s.States.Take(ctx, state.UserID, state.QuizID)
	if err != nil {
		return nil, err
	}
	if taken == nil {
		return nil, util.ErrNoActiveAttempt
	}

	prior, err := s.ResultRepo.CountByUserAndQuiz(state.UserID, state.QuizID)
	if err != nil {
		return nil, err
	}

	policy := s.Policy()
	final, multiplier, err := gamification.FinalizeAttempt(state.RawScore, int(prior), policy)
	if err != nil {
		return nil, err
	}

	result := &model.QuizResult{
		UserID:      state.UserID,
		QuizID:      state.QuizID,
		Score:       final,
		Multiplier:  multiplier,
		CompletedAt: time.Now(),
	}
	if err := s.ResultRepo.Create(result); err != nil {
		return nil, err
	}

	progress, gained, err := s.award(state.UserID, final)
	if err != nil {
		return nil, err
	}

	monitoring.AttemptsFinished.WithLabelValues(string(policy)).Inc()
	monitoring.XPAwarded.Add(float64(final))

	return &FinalResult{
		RawScore:           state.RawScore,
		FinalScore:         final,
		Multiplier:         multiplier,
		PriorAttempts:      int(prior),
		LevelsGained:       gained,
		XP:                 progress.XP,
		Level:              progress.Level,
		ProgressPercentage: progress.Percentage(),
	}, nil
}

// award applies the XP to the user's profile with optimistic concurrency:
// read, compute the new progression, then compare-and-swap against the values
// read. A lost race rereads and recomputes, so concurrent awards for the same
// user can never clobber each other.
func (s *PlayService) award(userID uint, amount int) (gamification.Progress, int, error) {
	for i := 0; i < awardRetries; i++ {
		profile, err := s.ProfileRepo.FindByUserID(userID)
		if err != nil {
			return gamification.Progress{}, 0, err
		}

		current := gamification.Progress{XP: profile.XP, Level: profile.Level}
		next := current
		gained := next.Award(amount)
		if next == current {
			return current, 0, nil
		}

		ok, err := s.ProfileRepo.CompareAndSwapProgress(userID, current, next)
		if err != nil {
			return gamification.Progress{}, 0, err
		}
		if ok {
			return next, gained, nil
		}
	}
	return gamification.Progress{}, 0, util.ErrProgressConflict
}
