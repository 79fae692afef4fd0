package notifications

import (
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/kinohub/kinohub/internal/config"
)

// EmailSender delivers account and cart notifications. Handlers treat it as
// an external collaborator; failures are logged, never surfaced to clients.
type EmailSender interface {
	SendActivationEmail(email, activationLink string) error
	SendPasswordResetEmail(email, resetLink string) error
	SendPasswordChanged(email string) error
	SendCartItemRemoved(email, movieName string, cartID uint) error
}

// NewSender returns an SMTP-backed sender when SMTP_HOST is configured and a
// log-only sender otherwise (local development, tests).
func NewSender(cfg *config.Config) EmailSender {
	if cfg.SMTPHost == "" {
		return &LogSender{}
	}
	return &SMTPSender{cfg: cfg}
}

// LogSender writes every notification to the structured log instead of
// delivering it.
type LogSender struct{}

func (s *LogSender) SendActivationEmail(email, activationLink string) error {
	slog.Info("activation email", "to", email, "link", activationLink)
	return nil
}

func (s *LogSender) SendPasswordResetEmail(email, resetLink string) error {
	slog.Info("password reset email", "to", email, "link", resetLink)
	return nil
}

func (s *LogSender) SendPasswordChanged(email string) error {
	slog.Info("password changed email", "to", email)
	return nil
}

func (s *LogSender) SendCartItemRemoved(email, movieName string, cartID uint) error {
	slog.Info("cart item removed email", "to", email, "movie", movieName, "cart_id", cartID)
	return nil
}

type SMTPSender struct {
	cfg *config.Config
}

func (s *SMTPSender) SendActivationEmail(email, activationLink string) error {
	return s.send(email, "Activate your account",
		"Follow this link to activate your account: "+activationLink)
}

func (s *SMTPSender) SendPasswordResetEmail(email, resetLink string) error {
	return s.send(email, "Reset your password",
		"Follow this link to reset your password: "+resetLink)
}

func (s *SMTPSender) SendPasswordChanged(email string) error {
	return s.send(email, "Your password was changed",
		"Your account password was just changed. If this wasn't you, reset it immediately.")
}

func (s *SMTPSender) SendCartItemRemoved(email, movieName string, cartID uint) error {
	return s.send(email, "Movie removed from your cart",
		fmt.Sprintf("The movie %q was removed from your cart (#%d).", movieName, cartID))
}

func (s *SMTPSender) send(to, subject, body string) error {
	msg := []byte("From: " + s.cfg.EmailFrom + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	if err := smtp.SendMail(addr, auth, s.cfg.EmailFrom, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
