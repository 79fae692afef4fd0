package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/kinohub/kinohub/internal/dto"
	"github.com/kinohub/kinohub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memoryAvatarStorage keeps uploads in a map so tests can assert on keys.
type memoryAvatarStorage struct {
	objects map[string][]byte
	fail    bool
}

func newMemoryAvatarStorage() *memoryAvatarStorage {
	return &memoryAvatarStorage{objects: map[string][]byte{}}
}

func (m *memoryAvatarStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if m.fail {
		return assert.AnError
	}
	m.objects[key] = data
	return nil
}

func (m *memoryAvatarStorage) PresignedURL(ctx context.Context, key string) (string, error) {
	return "https://storage.test/" + key, nil
}

func seedProfileUser(t *testing.T, db *gorm.DB, active bool) uuid.UUID {
	t.Helper()
	user := models.User{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@example.com",
		Password: "hash",
		Role:     models.RoleUser,
		IsActive: active,
	}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func profileRequest() *dto.ProfileCreateRequest {
	return &dto.ProfileCreateRequest{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Gender:      "woman",
		DateOfBirth: "1990-12-10",
		Info:        "Likes movies.",
	}
}

func TestProfileCreate(t *testing.T) {
	db := newTestDB(t)
	store := newMemoryAvatarStorage()
	svc := NewProfileService(db, store)
	userID := seedProfileUser(t, db, true)

	resp, err := svc.Create(context.Background(), userID, profileRequest(), "me.png", []byte("png-bytes"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, userID, resp.UserID)
	assert.Equal(t, "Ada", resp.FirstName)
	assert.Equal(t, "1990-12-10", resp.DateOfBirth)
	assert.Contains(t, resp.Avatar, "https://storage.test/avatars/")

	// The object lands under a per-user key.
	key := "avatars/" + userID.String() + "_me.png"
	assert.Equal(t, []byte("png-bytes"), store.objects[key])

	var stored models.Profile
	require.NoError(t, db.First(&stored, "user_id = ?", userID).Error)
	assert.Equal(t, key, stored.Avatar)
}

func TestProfileCreate_SecondProfileRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db, newMemoryAvatarStorage())
	userID := seedProfileUser(t, db, true)

	_, err := svc.Create(context.Background(), userID, profileRequest(), "a.png", nil, "image/png")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), userID, profileRequest(), "b.png", nil, "image/png")
	assert.ErrorIs(t, err, ErrProfileExists)
}

func TestProfileCreate_InactiveUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db, newMemoryAvatarStorage())
	userID := seedProfileUser(t, db, false)

	_, err := svc.Create(context.Background(), userID, profileRequest(), "a.png", nil, "image/png")
	assert.ErrorIs(t, err, ErrUserInactive)

	_, err = svc.Create(context.Background(), uuid.New(), profileRequest(), "a.png", nil, "image/png")
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestProfileCreate_UploadFailureLeavesNoRow(t *testing.T) {
	db := newTestDB(t)
	store := newMemoryAvatarStorage()
	store.fail = true
	svc := NewProfileService(db, store)
	userID := seedProfileUser(t, db, true)

	_, err := svc.Create(context.Background(), userID, profileRequest(), "a.png", nil, "image/png")
	assert.ErrorIs(t, err, ErrAvatarUpload)

	var count int64
	require.NoError(t, db.Model(&models.Profile{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRequesterMayEdit(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db, newMemoryAvatarStorage())

	owner := seedProfileUser(t, db, true)
	other := seedProfileUser(t, db, true)

	moderator := models.User{
		ID:       uuid.New(),
		Email:    "mod@example.com",
		Password: "hash",
		Role:     models.RoleModerator,
		IsActive: true,
	}
	require.NoError(t, db.Create(&moderator).Error)

	ok, err := svc.RequesterMayEdit(owner, owner)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.RequesterMayEdit(other, owner)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.RequesterMayEdit(moderator.ID, owner)
	require.NoError(t, err)
	assert.True(t, ok)
}
