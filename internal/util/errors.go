package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrQuizNotPlayable    = errors.New("quiz not published or has no questions")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrNoActiveAttempt    = errors.New("no active attempt for this quiz")
	ErrQuizNeedsQuestions = errors.New("a published quiz needs at least one question")
	ErrOneCorrectAnswer   = errors.New("each question needs exactly one correct answer")
	ErrProgressConflict   = errors.New("progress update conflicted too many times")
	ErrNoQuestionsFound   = errors.New("trivia source returned no questions")
)
