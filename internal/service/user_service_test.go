package service

import (
	"testing"
	"time"

	"lumen_quiz_backend/internal/model"
	"lumen_quiz_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUserService(t *testing.T) (*UserService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewUserService(
		repository.NewUserRepository(db),
		repository.NewProfileRepository(db),
		repository.NewResultRepository(db),
		nil,
	)
	return svc, db
}

func TestProfilePage(t *testing.T) {
	svc, db := newUserService(t)
	user := seedUser(t, db, "carol", model.Player)

	require.NoError(t, db.Model(&model.UserProfile{}).
		Where("user_id = ?", user.ID).
		Updates(map[string]interface{}{"xp": 141, "level": 2}).Error)

	quiz := seedQuiz(t, db, user.ID, "Trivia", true, 1)
	result := &model.QuizResult{UserID: user.ID, QuizID: quiz.ID, Score: 30, Multiplier: 1, CompletedAt: time.Now()}
	require.NoError(t, repository.NewResultRepository(db).Create(result))

	page, err := svc.GetProfilePage(user.ID)
	require.NoError(t, err)

	assert.Equal(t, "carol", page.Name)
	assert.Equal(t, 141, page.XP)
	assert.Equal(t, 2, page.Level)
	// Level 2 needs trunc(100 * 2^1.5) = 282 XP; 141 is halfway there.
	assert.Equal(t, 282, page.XPRequired)
	assert.InDelta(t, 50.0, page.ProgressPercentage, 0.001)
	require.Len(t, page.RecentResults, 1)
	assert.Equal(t, 30, page.RecentResults[0].Score)
}

func TestLeaderboardOrdersByLevelThenXP(t *testing.T) {
	svc, db := newUserService(t)

	set := func(name string, xp, level int) {
		user := seedUser(t, db, name, model.Player)
		require.NoError(t, db.Model(&model.UserProfile{}).
			Where("user_id = ?", user.ID).
			Updates(map[string]interface{}{"xp": xp, "level": level}).Error)
	}
	set("low", 90, 1)
	set("mid", 10, 3)
	set("high", 200, 3)

	ranked, err := svc.Leaderboard(10)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, "high", ranked[0].Name)
	assert.Equal(t, "mid", ranked[1].Name)
	assert.Equal(t, "low", ranked[2].Name)
}
