package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

var ErrEmailNotConfigured = errors.New("email service not configured (missing RESEND_API_KEY)")

type EmailService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
}

func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
	}
}

// ActivationURL is the link a new user follows to activate the account.
func (s *EmailService) ActivationURL(userID, token string) string {
	return fmt.Sprintf("%s/users/activate/%s/%s/", s.appURL, userID, token)
}

// PasswordResetURL is the link a user follows to choose a new password.
func (s *EmailService) PasswordResetURL(userID, token string) string {
	return fmt.Sprintf("%s/users/password-reset-activate/%s/%s/", s.appURL, userID, token)
}

func (s *EmailService) SendActivationEmail(ctx context.Context, email, username, userID, token string) error {
	activateURL := s.ActivationURL(userID, token)
	subject, body := accountActivationEmailTemplate(username, activateURL, s.appName)
	return s.send(ctx, "account_activation", email, subject, body, activateURL)
}

func (s *EmailService) SendPasswordResetEmail(ctx context.Context, email, username, userID, token string) error {
	resetURL := s.PasswordResetURL(userID, token)
	subject, body := passwordResetEmailTemplate(username, resetURL, s.appName)
	return s.send(ctx, "password_reset", email, subject, body, resetURL)
}

func (s *EmailService) SendPasswordChangedEmail(ctx context.Context, email, username string) error {
	subject, body := passwordChangedEmailTemplate(username, s.appName)
	return s.send(ctx, "password_changed", email, subject, body, "")
}

func (s *EmailService) send(ctx context.Context, kind, to, subject, body, link string) error {
	if s.isDev {
		slog.Info("email sent (dev mode)", "type", kind, "to", to, "subject", subject, "url", link)
		return nil
	}

	if s.client == nil {
		return ErrEmailNotConfigured
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err == nil {
		slog.Info("email sent", "type", kind, "to", to)
	}
	return err
}
