package services

import (
	"testing"

	"github.com/kinohub/kinohub/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.ActivationToken{},
		&models.PasswordResetToken{},
		&models.Profile{},
		&models.Genre{},
		&models.Director{},
		&models.Star{},
		&models.Certification{},
		&models.Movie{},
		&models.Cart{},
		&models.CartItem{},
	))
	return db
}

// recordingMailer captures notifications so tests can pull tokens out of the
// generated links.
type recordingMailer struct {
	activationLinks []string
	resetLinks      []string
	changedEmails   []string
	cartRemovals    []string
}

func (m *recordingMailer) SendActivationEmail(email, activationLink string) error {
	m.activationLinks = append(m.activationLinks, activationLink)
	return nil
}

func (m *recordingMailer) SendPasswordResetEmail(email, resetLink string) error {
	m.resetLinks = append(m.resetLinks, resetLink)
	return nil
}

func (m *recordingMailer) SendPasswordChanged(email string) error {
	m.changedEmails = append(m.changedEmails, email)
	return nil
}

func (m *recordingMailer) SendCartItemRemoved(email, movieName string, cartID uint) error {
	m.cartRemovals = append(m.cartRemovals, movieName)
	return nil
}
