package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lumen_quiz_backend/internal/model"

	"github.com/go-redis/redis/v8"
)

// AttemptStateStore keeps in-progress attempt state in Redis. One key per
// (user, quiz) pair means a user has at most one live attempt per quiz, and
// all answer submissions for it serialize through read-modify-write on that
// single key.
type AttemptStateStore struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewAttemptStateStore(rdb *redis.Client, ttl time.Duration) *AttemptStateStore {
	return &AttemptStateStore{Redis: rdb, TTL: ttl}
}

func (s *AttemptStateStore) key(userID, quizID uint) string {
	return fmt.Sprintf("attempt:%d:%d", userID, quizID)
}

// Get returns the live state, or nil when there is no active attempt.
func (s *AttemptStateStore) Get(ctx context.Context, userID, quizID uint) (*model.AttemptState, error) {
	raw, err := s.Redis.Get(ctx, s.key(userID, quizID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.decode(raw)
}

func (s *AttemptStateStore) Save(ctx context.Context, state *model.AttemptState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.Redis.Set(ctx, s.key(state.UserID, state.QuizID), raw, s.TTL).Err()
}

// Take atomically removes and returns the state. Finalization goes through
// Take so an attempt can only ever be consumed once: a concurrent or repeated
// finalize finds nothing and cannot re-score or re-award.
func (s *AttemptStateStore) Take(ctx context.Context, userID, quizID uint) (*model.AttemptState, error) {
	raw, err := s.Redis.GetDel(ctx, s.key(userID, quizID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.decode(raw)
}

func (s *AttemptStateStore) Delete(ctx context.Context, userID, quizID uint) error {
	return s.Redis.Del(ctx, s.key(userID, quizID)).Err()
}

func (s *AttemptStateStore) decode(raw []byte) (*model.AttemptState, error) {
	var state model.AttemptState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return &state, nil
}
