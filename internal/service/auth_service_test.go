package service

import (
	"testing"
	"time"

	"lumen_quiz_backend/internal/config"
	"lumen_quiz_backend/internal/model"
	"lumen_quiz_backend/internal/repository"
	"lumen_quiz_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	cfg := &config.Config{}
	cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
	cfg.JWT.ExpireTime = time.Hour
	return NewAuthService(repository.NewUserRepository(db), cfg), db
}

func TestRegisterCreatesUserWithProfile(t *testing.T) {
	svc, db := newAuthService(t)

	user := &model.User{Name: "bob", Email: "bob@test.local", Password: "s3cretpass", Role: model.Player}
	require.NoError(t, svc.Register(user))

	// The profile exists as soon as the user does.
	profile, err := repository.NewProfileRepository(db).FindByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.Level)
	assert.Equal(t, 0, profile.XP)

	// The stored password is hashed.
	stored, err := repository.NewUserRepository(db).FindByEmail("bob@test.local")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cretpass", stored.Password)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(t)

	first := &model.User{Name: "bob", Email: "bob@test.local", Password: "s3cretpass"}
	require.NoError(t, svc.Register(first))

	second := &model.User{Name: "bobby", Email: "bob@test.local", Password: "different1"}
	assert.ErrorIs(t, svc.Register(second), util.ErrEmailRegistered)
}

func TestLogin(t *testing.T) {
	svc, db := newAuthService(t)

	user := &model.User{Name: "bob", Email: "bob@test.local", Password: "s3cretpass"}
	require.NoError(t, svc.Register(user))

	token, err := svc.Login("bob@test.local", "s3cretpass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := util.ParseJWT(token, "0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, err = svc.Login("bob@test.local", "wrongpass")
	assert.Error(t, err)

	_, err = svc.Login("nobody@test.local", "s3cretpass")
	assert.Error(t, err)

	// Disabled accounts cannot log in.
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", user.ID).Update("disabled", true).Error)
	_, err = svc.Login("bob@test.local", "s3cretpass")
	assert.Error(t, err)
}
