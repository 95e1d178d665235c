// internal/profile/service.go

package profile

import (
	"context"
	"errors"
	"mime/multipart"
	"time"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidTimezone = errors.New("unknown timezone")
	ErrInvalidWeight   = errors.New("preference weights must be between 0 and 1")
)

type Service interface {
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	UpdateProfile(ctx context.Context, userID int64, dto *UpdateProfileDTO) (*Profile, error)
	UploadAvatar(ctx context.Context, userID int64, file multipart.File, header *multipart.FileHeader) (string, error)

	GetPreferences(ctx context.Context, userID int64) (*Preferences, error)
	UpdatePreferences(ctx context.Context, userID int64, dto *UpdatePreferencesDTO) (*Preferences, error)
}

type service struct {
	repo    Repository
	uploads UploadService
}

func NewService(repo Repository, uploads UploadService) Service {
	return &service{repo: repo, uploads: uploads}
}

func (s *service) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID int64, dto *UpdateProfileDTO) (*Profile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if dto.DisplayName != nil {
		profile.DisplayName = *dto.DisplayName
	}
	if dto.Timezone != nil {
		if _, err := time.LoadLocation(*dto.Timezone); err != nil {
			return nil, ErrInvalidTimezone
		}
		profile.Timezone = *dto.Timezone
	}

	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *service) UploadAvatar(ctx context.Context, userID int64, file multipart.File, header *multipart.FileHeader) (string, error) {
	url, err := s.uploads.UploadFile(ctx, file, header, "avatars")
	if err != nil {
		return "", err
	}

	// Drop the old avatar after the new one is live.
	old, err := s.repo.GetProfile(ctx, userID)
	if err == nil && old.AvatarURL != nil && *old.AvatarURL != "" {
		_ = s.uploads.DeleteFile(ctx, *old.AvatarURL)
	}

	if err := s.repo.UpdateAvatar(ctx, userID, url); err != nil {
		return "", err
	}
	return url, nil
}

func (s *service) GetPreferences(ctx context.Context, userID int64) (*Preferences, error) {
	return s.repo.GetPreferences(ctx, userID)
}

// UpdatePreferences lets users edit weights directly. Explicit edits carry
// the same meaning as learned weights, so they share the [0,1] range; a
// weight of exactly 0 removes the key.
func (s *service) UpdatePreferences(ctx context.Context, userID int64, dto *UpdatePreferencesDTO) (*Preferences, error) {
	for _, weights := range []map[string]float64{dto.CategoryWeights, dto.AttributeWeights} {
		for _, w := range weights {
			if w < 0 || w > 1 {
				return nil, ErrInvalidWeight
			}
		}
	}

	prefs, err := s.repo.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	applyEdits(prefs.CategoryWeights, dto.CategoryWeights)
	applyEdits(prefs.AttributeWeights, dto.AttributeWeights)

	if err := s.repo.SavePreferences(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

func applyEdits(current, edits map[string]float64) {
	for k, w := range edits {
		if w == 0 {
			delete(current, k)
			continue
		}
		current[k] = w
	}
}
