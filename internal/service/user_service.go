package service

import (
	"context"
	"io"
	"path/filepath"

	"lumen_quiz_backend/internal/gamification"
	"lumen_quiz_backend/internal/model"
	"lumen_quiz_backend/internal/repository"
)

type UserService struct {
	UserRepo    *repository.UserRepository
	ProfileRepo *repository.ProfileRepository
	ResultRepo  *repository.ResultRepository
	Storage     *StorageService
}

func NewUserService(userRepo *repository.UserRepository, profileRepo *repository.ProfileRepository, resultRepo *repository.ResultRepository, storage *StorageService) *UserService {
	return &UserService{
		UserRepo:    userRepo,
		ProfileRepo: profileRepo,
		ResultRepo:  resultRepo,
		Storage:     storage,
	}
}

// ProfilePage is everything the profile screen shows: current progression,
// how far into the current level the user is, and recent playthroughs.
type ProfilePage struct {
	UserID             int                `json:"userId"`
	Name               string             `json:"name"`
	Avatar             string             `json:"avatar"`
	XP                 int                `json:"xp"`
	Level              int                `json:"level"`
	XPRequired         int                `json:"xpRequired"`
	ProgressPercentage float64            `json:"progressPercentage"`
	RecentResults      []model.QuizResult `json:"recentResults"`
}

func (s *UserService) GetProfilePage(userID uint) (*ProfilePage, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.ProfileRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	results, err := s.ResultRepo.RecentByUser(userID, 10)
	if err != nil {
		return nil, err
	}

	progress := gamification.Progress{XP: profile.XP, Level: profile.Level}
	return &ProfilePage{
		UserID:             int(userID),
		Name:               user.Name,
		Avatar:             profile.Avatar,
		XP:                 profile.XP,
		Level:              profile.Level,
		XPRequired:         gamification.XPRequiredForLevel(profile.Level),
		ProgressPercentage: progress.Percentage(),
		RecentResults:      results,
	}, nil
}

func (s *UserService) Leaderboard(limit int) ([]repository.RankedProfile, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.ProfileRepo.TopProgress(limit)
}

// UploadAvatar stores the image and records its URL on the profile.
func (s *UserService) UploadAvatar(ctx context.Context, userID uint, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	stored := "avatars/" + model.GenerateUUID() + filepath.Ext(filename)
	url, err := s.Storage.Upload(ctx, stored, reader, size, contentType)
	if err != nil {
		return "", err
	}
	if err := s.ProfileRepo.UpdateAvatar(userID, url); err != nil {
		return "", err
	}
	return url, nil
}
