package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kinohub/kinohub/internal/config"
	"github.com/kinohub/kinohub/internal/dto"
	"github.com/kinohub/kinohub/internal/models"
	"github.com/kinohub/kinohub/internal/notifications"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is not activated")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer notifications.EmailSender
}

func NewAuthService(db *gorm.DB, cfg *config.Config, mailer notifications.EmailSender) *AuthService {
	return &AuthService{db: db, cfg: cfg, mailer: mailer}
}

// Register creates an inactive user and emails an activation link. The user
// cannot log in until the activation token is redeemed.
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.UserResponse, error) {
	var existing models.User
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:       uuid.New(),
		Email:    req.Email,
		Password: string(hash),
		Role:     models.RoleUser,
	}

	rawToken, err := randomToken()
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		token := models.ActivationToken{
			ID:        uuid.New(),
			UserID:    user.ID,
			TokenHash: hashToken(rawToken),
			ExpiresAt: time.Now().Add(s.cfg.ActivationExpiry),
		}
		if err := tx.Create(&token).Error; err != nil {
			return fmt.Errorf("failed to store activation token: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	link := fmt.Sprintf("%s/accounts/activate/?email=%s&token=%s", s.cfg.SiteURL, user.Email, rawToken)
	if err := s.mailer.SendActivationEmail(user.Email, link); err != nil {
		slog.Error("activation email failed", "action", "register", "error", err.Error())
	}

	return &dto.UserResponse{ID: user.ID, Email: user.Email, Role: user.Role, IsActive: user.IsActive}, nil
}

// Activate redeems an activation token and marks the account active.
func (s *AuthService) Activate(req *dto.ActivateRequest) error {
	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return ErrInvalidToken
	}

	var token models.ActivationToken
	if err := s.db.Where("user_id = ? AND token_hash = ?", user.ID, hashToken(req.Token)).First(&token).Error; err != nil {
		return ErrInvalidToken
	}
	if time.Now().After(token.ExpiresAt) {
		return ErrInvalidToken
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("is_active", true).Error; err != nil {
			return err
		}
		return tx.Delete(&token).Error
	})
}

func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	return s.generateTokenPair(&user)
}

// Refresh rotates the refresh token: the presented token is revoked and a
// fresh pair is issued.
func (s *AuthService) Refresh(req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ? AND revoked = false", tokenHash).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	if time.Now().After(stored.ExpiresAt) {
		s.db.Model(&stored).Update("revoked", true)
		return nil, ErrInvalidToken
	}

	s.db.Model(&stored).Update("revoked", true)

	var user models.User
	if err := s.db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) Logout(req *dto.LogoutRequest) error {
	return s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ?", hashToken(req.RefreshToken)).
		Update("revoked", true).Error
}

// RequestPasswordReset issues a reset token when the email belongs to an
// active account. It reports success either way so the endpoint cannot be
// used to probe for registered emails.
func (s *AuthService) RequestPasswordReset(req *dto.PasswordResetRequest) error {
	var user models.User
	if err := s.db.Where("email = ? AND is_active = true", req.Email).First(&user).Error; err != nil {
		return nil
	}

	rawToken, err := randomToken()
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		tx.Where("user_id = ?", user.ID).Delete(&models.PasswordResetToken{})
		token := models.PasswordResetToken{
			ID:        uuid.New(),
			UserID:    user.ID,
			TokenHash: hashToken(rawToken),
			ExpiresAt: time.Now().Add(s.cfg.PasswordResetExpiry),
		}
		if err := tx.Create(&token).Error; err != nil {
			return fmt.Errorf("failed to store reset token: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/accounts/password-reset/complete/?email=%s&token=%s", s.cfg.SiteURL, user.Email, rawToken)
	if err := s.mailer.SendPasswordResetEmail(user.Email, link); err != nil {
		slog.Error("password reset email failed", "action", "password_reset", "error", err.Error())
	}
	return nil
}

func (s *AuthService) ConfirmPasswordReset(req *dto.PasswordResetConfirmRequest) error {
	var user models.User
	if err := s.db.Where("email = ? AND is_active = true", req.Email).First(&user).Error; err != nil {
		return ErrInvalidToken
	}

	var token models.PasswordResetToken
	if err := s.db.Where("user_id = ? AND token_hash = ?", user.ID, hashToken(req.Token)).First(&token).Error; err != nil {
		return ErrInvalidToken
	}
	if time.Now().After(token.ExpiresAt) {
		return ErrInvalidToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("password", string(hash)).Error; err != nil {
			return err
		}
		if err := tx.Delete(&token).Error; err != nil {
			return err
		}
		// Changing the password invalidates every open session.
		return tx.Model(&models.RefreshToken{}).
			Where("user_id = ?", user.ID).
			Update("revoked", true).Error
	})
	if err != nil {
		return err
	}

	if err := s.mailer.SendPasswordChanged(user.Email); err != nil {
		slog.Error("password change email failed", "action", "password_reset", "error", err.Error())
	}
	return nil
}

func (s *AuthService) generateTokenPair(user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: dto.UserResponse{
			ID:       user.ID,
			Email:    user.Email,
			Role:     user.Role,
			IsActive: user.IsActive,
		},
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(user *models.User) (string, error) {
	rawToken, err := randomToken()
	if err != nil {
		return "", err
	}

	record := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func randomToken() (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(rawBytes), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
