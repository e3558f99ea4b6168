package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"shokolad-be/internal/config"
	"shokolad-be/internal/logger"

	"go.uber.org/zap"
)

// Mailer sends transactional mail. Kept to a single method so tests can swap
// in a fake.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, token string) error
}

type smtpMailer struct {
	host        string
	port        string
	email       string
	password    string
	frontendURL string
}

func NewSMTPMailer(cfg *config.Config) Mailer {
	return &smtpMailer{
		host:        cfg.SMTPHost,
		port:        cfg.SMTPPort,
		email:       cfg.SMTPEmail,
		password:    cfg.SMTPPassword,
		frontendURL: cfg.FrontendURL,
	}
}

func (m *smtpMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	log := logger.FromCtx(ctx).With(zap.String("to", to))

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", m.frontendURL, token)

	msg := []byte("From: Shokolad Support <" + m.email + ">\r\n" +
		"To: " + to + "\r\n" +
		"Subject: Password reset\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		"<h2>Password reset</h2>" +
		"<p>Follow the link below to reset your password:</p>" +
		"<a href=\"" + resetURL + "\">" + resetURL + "</a>" +
		"<p>The link is valid for 1 hour.</p>\r\n")

	auth := smtp.PlainAuth("", m.email, m.password, m.host)
	addr := m.host + ":" + m.port

	if err := smtp.SendMail(addr, auth, m.email, []string{to}, msg); err != nil {
		log.Error("failed to send password reset mail", zap.Error(err))
		return fmt.Errorf("send password reset mail: %w", err)
	}

	log.Info("password reset mail sent")
	return nil
}
