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

var ErrInvalidCurrentPassword = errors.New("current password is incorrect")

type UserService struct {
	userRepository repository.UserRepository
	emailService   *EmailService
}

func NewUserService(userRepository repository.UserRepository, emailService *EmailService) *UserService {
	return &UserService{
		userRepository: userRepository,
		emailService:   emailService,
	}
}

func (s *UserService) ByID(ctx context.Context, id string) (*model.User, error) {
	return s.userRepository.ByID(ctx, id)
}

// ChangePassword replaces the password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword, newPasswordCheck string) error {
	user, err := s.userRepository.ByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !checkPassword(user.PasswordHash, currentPassword) {
		return ErrInvalidCurrentPassword
	}

	err = validation.ValidatePasswordPair(newPassword, newPasswordCheck)
	if err != nil {
		return err
	}

	user.PasswordHash, err = hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.userRepository.Update(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	err = s.emailService.SendPasswordChangedEmail(ctx, user.Email, user.Username)
	if err != nil {
		slog.Warn("failed to send password changed email", "user_id", user.ID, "error", err)
	}

	return nil
}

// EnsureSuperuser returns the admin named username, creating an active admin
// account if none exists yet.
func (s *UserService) EnsureSuperuser(ctx context.Context, username, email, password string) (*model.User, bool, error) {
	username = strings.TrimSpace(username)

	user, err := s.userRepository.ByUsername(ctx, username)
	if err == nil {
		if !user.IsAdmin {
			return nil, false, fmt.Errorf("user %q exists and is not an admin", username)
		}
		return user, false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, false, fmt.Errorf("failed to get user: %w", err)
	}

	err = validation.ValidateUsername(username)
	if err != nil {
		return nil, false, err
	}
	email = strings.TrimSpace(strings.ToLower(email))
	err = validation.ValidateEmail(email)
	if err != nil {
		return nil, false, ErrInvalidEmail
	}
	err = validation.ValidatePassword(password)
	if err != nil {
		return nil, false, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}

	user = &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      true,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	err = s.userRepository.Create(ctx, user)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create superuser: %w", err)
	}

	slog.Info("superuser created", "user_id", user.ID, "username", user.Username)
	return user, true, nil
}
