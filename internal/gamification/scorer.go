// Package gamification holds the scoring and progression rules. Everything in
// here is pure computation: no I/O, no clock, no storage. Services feed it
// persisted counts and session state and write back whatever it returns.
package gamification

import (
	"errors"
	"math"

	"lumen_quiz_backend/internal/model"
)

// PointsPerCorrect is the fixed award for a correctly answered question.
const PointsPerCorrect = 10

var (
	ErrAnswerNotInQuestion  = errors.New("answer does not belong to question")
	ErrNegativeRawScore     = errors.New("raw score must not be negative")
	ErrNegativeAttemptCount = errors.New("prior attempt count must not be negative")
	ErrUnknownPenaltyPolicy = errors.New("unknown repeat penalty policy")
)

// ScoreAnswer returns the point delta for choosing answerID on question.
// The answer id must belong to the given question; a stale or cross-question
// id is rejected without touching anything, which keeps the running raw score
// intact when a client resubmits an old form.
func ScoreAnswer(question *model.Question, answerID uint) (int, error) {
	for i := range question.Answers {
		if question.Answers[i].ID == answerID {
			if question.Answers[i].IsCorrect {
				return PointsPerCorrect, nil
			}
			return 0, nil
		}
	}
	return 0, ErrAnswerNotInQuestion
}

// PenaltyPolicy controls how the score multiplier decays on repeat attempts
// of the same quiz.
type PenaltyPolicy string

const (
	// PenaltyHalving halves the multiplier on every replay: 1, 0.5, 0.25, ...
	PenaltyHalving PenaltyPolicy = "halving"
	// PenaltyLinear decays by 0.2 per replay down to a 0.1 floor.
	PenaltyLinear PenaltyPolicy = "linear"
)

func (p PenaltyPolicy) Valid() bool {
	return p == PenaltyHalving || p == PenaltyLinear
}

// Multiplier returns the scalar in (0, 1] applied to a raw score after
// priorAttempts previously completed playthroughs of the same quiz.
func (p PenaltyPolicy) Multiplier(priorAttempts int) float64 {
	if priorAttempts < 0 {
		priorAttempts = 0
	}
	if p == PenaltyLinear {
		return float64(linearTenths(priorAttempts)) / 10
	}
	return 1 / math.Pow(2, float64(priorAttempts))
}

// linearTenths is the linear-decay multiplier expressed in integer tenths,
// so the final score can be computed without float truncation surprises.
func linearTenths(priorAttempts int) int {
	tenths := 10 - 2*priorAttempts
	if tenths < 1 {
		tenths = 1
	}
	return tenths
}

// FinalizeAttempt converts the accumulated raw score of one playthrough into
// the final score, applying the repeat-attempt penalty. priorAttempts counts
// previously completed attempts by the same user on the same quiz, excluding
// the current one. The final score is floor(rawScore * multiplier), always in
// [0, rawScore]. The multiplier is returned as well so it can be shown to the
// player even when it grinds the score down to zero.
func FinalizeAttempt(rawScore, priorAttempts int, policy PenaltyPolicy) (int, float64, error) {
	if rawScore < 0 {
		return 0, 0, ErrNegativeRawScore
	}
	if priorAttempts < 0 {
		return 0, 0, ErrNegativeAttemptCount
	}
	if !policy.Valid() {
		return 0, 0, ErrUnknownPenaltyPolicy
	}

	// Both policies reduce to exact integer arithmetic: a right shift for
	// halving, tenths for linear decay. Truncating float64 products here
	// would occasionally lose a point to representation error, e.g.
	// int(100 * (1.0 - 0.2*4)) == 19.
	var final int
	if policy == PenaltyLinear {
		final = rawScore * linearTenths(priorAttempts) / 10
	} else {
		final = rawScore >> uint(priorAttempts)
	}
	return final, policy.Multiplier(priorAttempts), nil
}
