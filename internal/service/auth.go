package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fitlg/fitlg/internal/model"
	"github.com/fitlg/fitlg/internal/repository"
	"github.com/fitlg/fitlg/internal/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidLink        = errors.New("invalid or expired link")
	ErrNoAccountForEmail  = errors.New("no account for this email")
)

// AuthOptions are the secrets and lifetimes of the auth flows.
type AuthOptions struct {
	Secret        string
	SecureCookies bool

	SessionTTL      time.Duration // signed in session
	ResetSessionTTL time.Duration // between following a reset link and posting the new password
	ActivationTTL   time.Duration // activation link
	ResetLinkTTL    time.Duration // password reset link
}

type RegisterInput struct {
	Username      string
	Email         string
	Password      string
	PasswordCheck string
}

// AuthService runs registration, activation, login and password reset.
type AuthService struct {
	users  repository.UserRepository
	tokens repository.TokenRepository
	email  *EmailService
	opts   AuthOptions
}

func NewAuthService(users repository.UserRepository, tokens repository.TokenRepository, email *EmailService, opts AuthOptions) *AuthService {
	return &AuthService{users: users, tokens: tokens, email: email, opts: opts}
}

// Login checks the credentials. Unknown usernames and wrong passwords give
// the same error, an inactive account is only reported after the password matched.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.ByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !checkPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return user, nil
}

// Register creates an inactive account and mails its activation link.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if err := validation.ValidatePasswordPair(in.Password, in.PasswordCheck); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	err = s.users.Create(ctx, user)
	switch {
	case errors.Is(err, repository.ErrDuplicateUsername):
		return nil, ErrUsernameTaken
	case errors.Is(err, repository.ErrDuplicateEmail):
		return nil, ErrEmailAlreadyExists
	case err != nil:
		return nil, fmt.Errorf("create user: %w", err)
	}

	link, err := s.issueToken(ctx, user.ID, model.TokenTypeAccountActivate, s.opts.ActivationTTL)
	if err == nil {
		err = s.email.SendActivationEmail(ctx, user.Email, user.Username, user.ID, link)
		if err != nil {
			err = fmt.Errorf("send activation email: %w", err)
		}
	}
	if err != nil {
		// An account nobody can activate would block a retry with the same names.
		if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
			slog.Error("failed to remove unactivated user", "user_id", user.ID, "error", delErr)
		}
		return nil, err
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Activate consumes an activation link and activates the account.
func (s *AuthService) Activate(ctx context.Context, userID, token string) (*model.User, error) {
	if _, err := s.tokens.Consume(ctx, userID, model.TokenTypeAccountActivate, token); err != nil {
		return nil, ErrInvalidLink
	}

	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	user.IsActive = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("activate user: %w", err)
	}

	slog.Info("user activated", "user_id", user.ID)
	return user, nil
}

// SendPasswordReset mails a reset link to the account owning email. Links
// sent before and not followed yet stop working.
func (s *AuthService) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return ErrInvalidEmail
	}

	user, err := s.users.ByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrNoAccountForEmail
	}
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	if err := s.tokens.DeleteUnused(ctx, user.ID, model.TokenTypePasswordReset); err != nil {
		slog.Warn("failed to drop previous reset links", "user_id", user.ID, "error", err)
	}

	link, err := s.issueToken(ctx, user.ID, model.TokenTypePasswordReset, s.opts.ResetLinkTTL)
	if err != nil {
		return err
	}
	if err := s.email.SendPasswordResetEmail(ctx, user.Email, user.Username, user.ID, link); err != nil {
		return fmt.Errorf("send password reset email: %w", err)
	}

	slog.Info("password reset link sent", "user_id", user.ID)
	return nil
}

// VerifyPasswordReset consumes a reset link and returns a short lived JWT
// that authorizes setting a new password.
func (s *AuthService) VerifyPasswordReset(ctx context.Context, userID, token string) (string, time.Time, error) {
	if _, err := s.tokens.Consume(ctx, userID, model.TokenTypePasswordReset, token); err != nil {
		return "", time.Time{}, ErrInvalidLink
	}
	if _, err := s.users.ByID(ctx, userID); err != nil {
		return "", time.Time{}, ErrInvalidLink
	}

	expiry := time.Now().Add(s.opts.ResetSessionTTL)
	signed, err := s.sign(userID, purposePasswordReset, expiry)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiry, nil
}

// ResetPassword sets a new password for the user named by a reset JWT.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, password, passwordCheck string) (*model.User, error) {
	userID, err := s.verify(resetToken, purposePasswordReset)
	if err != nil {
		return nil, ErrInvalidLink
	}
	if err := validation.ValidatePasswordPair(password, passwordCheck); err != nil {
		return nil, err
	}

	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalidLink
	}

	user.PasswordHash, err = hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}

	slog.Info("password reset", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) issueToken(ctx context.Context, userID string, tokenType model.TokenType, ttl time.Duration) (string, error) {
	value, err := randomToken()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	err = s.tokens.Create(ctx, &model.Token{
		UserID:    userID,
		Type:      tokenType,
		Token:     value,
		ExpiresAt: time.Now().UTC().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return value, nil
}
