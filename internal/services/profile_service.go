package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kinohub/kinohub/internal/dto"
	"github.com/kinohub/kinohub/internal/models"
	"github.com/kinohub/kinohub/internal/storage"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrProfileExists = errors.New("user already has a profile")
	ErrUserInactive  = errors.New("user not found or not active")
	ErrAvatarUpload  = errors.New("failed to upload avatar")
)

type ProfileService struct {
	db      *gorm.DB
	avatars storage.AvatarStorage
}

func NewProfileService(db *gorm.DB, avatars storage.AvatarStorage) *ProfileService {
	return &ProfileService{db: db, avatars: avatars}
}

// Create stores the avatar in object storage, then creates the profile row.
// A user gets at most one profile.
func (s *ProfileService) Create(
	ctx context.Context,
	userID uuid.UUID,
	req *dto.ProfileCreateRequest,
	avatarName string,
	avatarData []byte,
	avatarContentType string,
) (*dto.ProfileResponse, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil || !user.IsActive {
		return nil, ErrUserInactive
	}

	var existing models.Profile
	if err := s.db.Where("user_id = ?", userID).First(&existing).Error; err == nil {
		return nil, ErrProfileExists
	}

	birthDate, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("invalid date_of_birth: %w", err)
	}

	avatarKey := fmt.Sprintf("avatars/%s_%s", userID, avatarName)
	if err := s.avatars.Upload(ctx, avatarKey, avatarData, avatarContentType); err != nil {
		slog.Error("avatar upload failed", "action", "profile_create", "user_id", userID.String(), "error", err.Error())
		return nil, ErrAvatarUpload
	}

	profile := models.Profile{
		UserID:      userID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Gender:      req.Gender,
		DateOfBirth: datatypes.Date(birthDate),
		Info:        req.Info,
		Avatar:      avatarKey,
	}
	if err := s.db.Create(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	avatarURL, err := s.avatars.PresignedURL(ctx, profile.Avatar)
	if err != nil {
		slog.Error("avatar URL resolution failed", "action", "profile_create", "error", err.Error())
	}

	return &dto.ProfileResponse{
		ID:          profile.ID,
		UserID:      profile.UserID,
		FirstName:   profile.FirstName,
		LastName:    profile.LastName,
		Gender:      profile.Gender,
		DateOfBirth: req.DateOfBirth,
		Info:        profile.Info,
		Avatar:      avatarURL,
	}, nil
}

// RequesterMayEdit reports whether requester may create or edit the profile
// of target: either it is their own, or they hold a moderator/admin role.
func (s *ProfileService) RequesterMayEdit(requesterID, targetID uuid.UUID) (bool, error) {
	if requesterID == targetID {
		return true, nil
	}
	var requester models.User
	if err := s.db.First(&requester, "id = ?", requesterID).Error; err != nil {
		return false, err
	}
	return requester.IsModerator(), nil
}
