// Package auth implements the authentication gate: scrypt password hashing,
// account lockout behind a swappable store and HS256 session tokens.
package auth

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/adscenter/reports/internal/apperror"
	"github.com/adscenter/reports/internal/domain/models"
)

// UserRepository defines the user persistence the service depends on.
type UserRepository interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}

const passwordMinLength = 8

// Service provides login, session validation, password change and the admin
// bootstrap.
type Service struct {
	users   UserRepository
	lockout LockoutStore
	tokens  *TokenIssuer
	logger  *zap.Logger
}

// NewService wires the authentication service.
func NewService(users UserRepository, lockout LockoutStore, tokens *TokenIssuer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{users: users, lockout: lockout, tokens: tokens, logger: logger}
}

// Login verifies credentials and returns the user plus a session token.
// Failures are counted per username; too many in a row lock the account.
// The error message never reveals whether the username exists.
func (s *Service) Login(ctx context.Context, username, password string) (models.User, string, error) {
	status, err := s.lockout.Check(ctx, username)
	if err != nil {
		return models.User{}, "", err
	}
	if status.Locked {
		minutes := int(math.Ceil(status.RetryAfter.Minutes()))
		return models.User{}, "", apperror.NewUnauthorized(
			fmt.Sprintf("Account temporarily locked. Try again in %d minutes.", minutes)).
			WithDetail("retryAfterMinutes", minutes)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if apperror.IsNotFound(err) {
			return models.User{}, "", s.failLogin(ctx, username)
		}
		return models.User{}, "", err
	}

	match, err := ComparePassword(password, user.Password)
	if err != nil {
		return models.User{}, "", fmt.Errorf("compare password: %w", err)
	}
	if !match {
		return models.User{}, "", s.failLogin(ctx, username)
	}

	if err := s.lockout.Clear(ctx, username); err != nil {
		s.logger.Warn("failed clearing login attempts", zap.String("username", username), zap.Error(err))
	}

	token, _, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return models.User{}, "", err
	}

	s.logger.Info("user logged in", zap.String("username", username))
	return user, token, nil
}

func (s *Service) failLogin(ctx context.Context, username string) error {
	if err := s.lockout.RecordFailure(ctx, username); err != nil {
		s.logger.Warn("failed recording login failure", zap.String("username", username), zap.Error(err))
	}
	return apperror.NewUnauthorized("Invalid username or password")
}

// Authenticate validates a session token and resolves the current user.
func (s *Service) Authenticate(ctx context.Context, token string) (models.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return models.User{}, apperror.NewUnauthorized("Unauthorized").WithCause(err)
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if apperror.IsNotFound(err) || apperror.IsInvalidID(err) {
			return models.User{}, apperror.NewUnauthorized("Unauthorized")
		}
		return models.User{}, err
	}
	return user, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *Service) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	if len(newPassword) < passwordMinLength {
		return apperror.NewValidation(
			fmt.Sprintf("New password must be at least %d characters long", passwordMinLength))
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	match, err := ComparePassword(currentPassword, user.Password)
	if err != nil {
		return fmt.Errorf("compare password: %w", err)
	}
	if !match {
		return apperror.NewUnauthorized("Current password is incorrect")
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	s.logger.Info("password changed", zap.String("username", username))
	return nil
}

// EnsureAdminUser creates the admin account on first start when it does not
// exist yet.
func (s *Service) EnsureAdminUser(ctx context.Context, username, password string) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	_, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		s.logger.Info("admin user already exists", zap.String("username", username))
		return nil
	}
	if !apperror.IsNotFound(err) {
		return err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := s.users.Create(ctx, models.User{Username: username, Password: hash}); err != nil {
		return err
	}

	s.logger.Info("admin user created", zap.String("username", username))
	return nil
}
